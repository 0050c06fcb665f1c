package destination

import "time"

const (
	DefaultTimeout = 5 * time.Second

	DefaultMetaBaseURL      = "https://graph.facebook.com/v18.0"
	DefaultAnalyticsBaseURL = "https://www.google-analytics.com"
	DefaultAdsBaseURL       = "https://googleads.googleapis.com/v14"
	DefaultCurrencyCode     = "BRL"
)

// Config holds process-wide credentials. It is read-only after startup.
type Config struct {
	Timeout   time.Duration
	Meta      MetaConfig
	Analytics AnalyticsConfig
	Ads       AdsConfig
}

type MetaConfig struct {
	BaseURL     string
	AccessToken string
}

func (c MetaConfig) Enabled() bool {
	return c.AccessToken != ""
}

type AnalyticsConfig struct {
	BaseURL   string
	APISecret string
}

func (c AnalyticsConfig) Enabled() bool {
	return c.APISecret != ""
}

type AdsConfig struct {
	BaseURL        string
	CustomerID     string
	AccessToken    string
	DeveloperToken string
	// LoginCustomerID is the manager account, sent only when set.
	LoginCustomerID string
	CurrencyCode    string
}

func (c AdsConfig) Enabled() bool {
	return c.CustomerID != "" && c.AccessToken != "" && c.DeveloperToken != ""
}

// WithDefaults fills unset base URLs, timeout and currency.
func (c Config) WithDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Meta.BaseURL == "" {
		c.Meta.BaseURL = DefaultMetaBaseURL
	}
	if c.Analytics.BaseURL == "" {
		c.Analytics.BaseURL = DefaultAnalyticsBaseURL
	}
	if c.Ads.BaseURL == "" {
		c.Ads.BaseURL = DefaultAdsBaseURL
	}
	if c.Ads.CurrencyCode == "" {
		c.Ads.CurrencyCode = DefaultCurrencyCode
	}
	return c
}
