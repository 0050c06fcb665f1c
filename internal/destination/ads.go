package destination

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/leshachaplin/eventrelay/internal/domain"
)

const (
	AdsName = "Google Ads"

	// adsDateTimeLayout is the conversionDateTime format, always rendered in UTC.
	adsDateTimeLayout = "2006-01-02 15:04:05-07:00"
)

type AdsPayload struct {
	Conversions    []AdsConversion `json:"conversions"`
	PartialFailure bool            `json:"partialFailure"`
}

type AdsConversion struct {
	ConversionAction   string              `json:"conversionAction"`
	Gclid              string              `json:"gclid"`
	ConversionDateTime string              `json:"conversionDateTime"`
	ConversionValue    float64             `json:"conversionValue"`
	CurrencyCode       string              `json:"currencyCode"`
	OrderID            string              `json:"orderId"`
	UserIdentifiers    []AdsUserIdentifier `json:"userIdentifiers"`
}

type AdsUserIdentifier struct {
	HashedEmail       string `json:"hashedEmail,omitempty"`
	HashedPhoneNumber string `json:"hashedPhoneNumber,omitempty"`
}

func NewAdsPayload(cfg AdsConfig, rec domain.Record, conversionLabel string) AdsPayload {
	identifiers := make([]AdsUserIdentifier, 0, 2)
	if rec.HashedEmail != nil {
		identifiers = append(identifiers, AdsUserIdentifier{HashedEmail: *rec.HashedEmail})
	}
	if rec.HashedPhone != nil {
		identifiers = append(identifiers, AdsUserIdentifier{HashedPhoneNumber: *rec.HashedPhone})
	}

	var gclid string
	if rec.CookieGclid != nil {
		gclid = *rec.CookieGclid
	}

	return AdsPayload{
		Conversions: []AdsConversion{{
			ConversionAction:   fmt.Sprintf("customers/%s/conversionActions/%s", cfg.CustomerID, conversionLabel),
			Gclid:              gclid,
			ConversionDateTime: rec.Time.UTC().Format(adsDateTimeLayout),
			ConversionValue:    1,
			CurrencyCode:       cfg.CurrencyCode,
			OrderID:            rec.EventID,
			UserIdentifiers:    identifiers,
		}},
		PartialFailure: true,
	}
}

// NewAdsRequest targets uploadClickConversions of the configured customer.
func NewAdsRequest(cfg AdsConfig, payload AdsPayload) Request {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+cfg.AccessToken)
	header.Set("developer-token", cfg.DeveloperToken)
	if cfg.LoginCustomerID != "" {
		header.Set("login-customer-id", cfg.LoginCustomerID)
	}

	return Request{
		Destination: AdsName,
		URL:         fmt.Sprintf("%s/customers/%s:uploadClickConversions", cfg.BaseURL, url.PathEscape(cfg.CustomerID)),
		Header:      header,
		Body:        payload,
	}
}
