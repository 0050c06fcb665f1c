package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/leshachaplin/eventrelay/internal/destination"
	"github.com/leshachaplin/eventrelay/internal/worker"
)

type DispatchMode string

const (
	// ModeSync answers with the result of every destination.
	ModeSync DispatchMode = "sync"
	// ModeBackground acknowledges at once and dispatches on the worker pool.
	ModeBackground DispatchMode = "background"
)

// Config is the main config for the application
type Config struct {
	Addr         string
	LogLevel     string
	LogFormat    string
	Mode         DispatchMode
	Destinations destination.Config
	Worker       worker.Config
}

// Load reads the configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables take precedence.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, errors.Wrap(err, "load .env")
	}

	timeout, err := getEnvDuration("DISPATCH_TIMEOUT", destination.DefaultTimeout)
	if err != nil {
		return Config{}, err
	}
	numWorkers, err := getEnvInt("WORKER_NUM_WORKERS", 16)
	if err != nil {
		return Config{}, err
	}
	queueSize, err := getEnvInt("WORKER_QUEUE_SIZE", 256)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Addr:      getEnv(":8080", "ADDR"),
		LogLevel:  strings.ToUpper(getEnv("INFO", "LOG_LEVEL")),
		LogFormat: strings.ToLower(getEnv("json", "LOG_FORMAT")),
		Mode:      DispatchMode(strings.ToLower(getEnv(string(ModeSync), "DISPATCH_MODE"))),
		Destinations: destination.Config{
			Timeout: timeout,
			Meta: destination.MetaConfig{
				BaseURL:     getEnv(destination.DefaultMetaBaseURL, "META_BASE_URL"),
				AccessToken: getEnv("", "META_ACCESS_TOKEN", "FB_ACCESS_TOKEN"),
			},
			Analytics: destination.AnalyticsConfig{
				BaseURL:   getEnv(destination.DefaultAnalyticsBaseURL, "GA_BASE_URL"),
				APISecret: getEnv("", "GA_SECRET_KEY", "GA_ACCESS_TOKEN"),
			},
			Ads: destination.AdsConfig{
				BaseURL:         getEnv(destination.DefaultAdsBaseURL, "GADS_BASE_URL"),
				CustomerID:      getEnv("", "GADS_CUSTOMER_ID"),
				AccessToken:     getEnv("", "GADS_ACCESS_TOKEN"),
				DeveloperToken:  getEnv("", "GADS_DEVELOPER_TOKEN"),
				LoginCustomerID: getEnv("", "GADS_LOGIN_CUSTOMER_ID"),
				CurrencyCode:    getEnv(destination.DefaultCurrencyCode, "GADS_CURRENCY_CODE"),
			},
		},
		Worker: worker.Config{
			NumWorkers: numWorkers,
			QueueSize:  queueSize,
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Mode {
	case ModeSync, ModeBackground:
	default:
		return errors.Errorf("DISPATCH_MODE must be %q or %q, got %q", ModeSync, ModeBackground, c.Mode)
	}
	return nil
}

// getEnv returns the first non-empty variable among keys, or fallback.
func getEnv(fallback string, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := getEnv("", key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "parse %s", key)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := getEnv("", key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.Wrapf(err, "parse %s", key)
	}
	return d, nil
}
