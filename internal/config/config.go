package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/meribel-snow-monitor/internal/weather"
)

type AppConfig struct {
	Port     string
	LogLevel string

	// Upstream endpoints; empty values mean the public Open-Meteo URLs.
	ForecastURL string
	ArchiveURL  string

	// Timezone drives all calendar-day arithmetic.
	Timezone string

	DefaultLocation string
	DefaultWindow   weather.Window

	HTTPTimeout  time.Duration
	CycleTimeout time.Duration

	RetryMax             int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	BreakerTimeout       time.Duration

	// RefreshInterval is the period of the background refresh. 0 disables it.
	RefreshInterval time.Duration

	// DotenvErr is set when no .env file could be read. It is informational.
	DotenvErr error
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := godotenv.Load(); err != nil {
		cfg.DotenvErr = err
	}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.ForecastURL = os.Getenv("OPENMETEO_FORECAST_URL")
	cfg.ArchiveURL = os.Getenv("OPENMETEO_ARCHIVE_URL")
	cfg.Timezone = getenvDefault("TIMEZONE", weather.DefaultTimezone)
	cfg.DefaultLocation = getenvDefault("DEFAULT_LOCATION", "meribel-centre")

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	w, err := weather.ParseWindow(getenvDefault("DEFAULT_WINDOW", "7"))
	if err != nil {
		collect(fmt.Errorf("invalid DEFAULT_WINDOW: %w", err))
	}
	cfg.DefaultWindow = w

	cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second)
	collect(err)
	cfg.CycleTimeout, err = getenvDuration("CYCLE_TIMEOUT", 30*time.Second)
	collect(err)
	cfg.RetryMax, err = getenvInt("RETRY_MAX", 3)
	collect(err)
	cfg.RetryInitialInterval, err = getenvDuration("RETRY_INITIAL_INTERVAL", 500*time.Millisecond)
	collect(err)
	cfg.RetryMaxInterval, err = getenvDuration("RETRY_MAX_INTERVAL", 5*time.Second)
	collect(err)
	cfg.BreakerTimeout, err = getenvDuration("BREAKER_TIMEOUT", 2*time.Minute)
	collect(err)
	cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", 15*time.Minute)
	collect(err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) validate() error {
	switch {
	case c.HTTPTimeout <= 0:
		return errors.New("HTTP_TIMEOUT must be positive")
	case c.CycleTimeout <= 0:
		return errors.New("CYCLE_TIMEOUT must be positive")
	case c.RetryMax < 0:
		return errors.New("RETRY_MAX must not be negative")
	case c.RetryInitialInterval <= 0:
		return errors.New("RETRY_INITIAL_INTERVAL must be positive")
	case c.RefreshInterval < 0:
		return errors.New("REFRESH_INTERVAL must not be negative")
	}
	if _, err := weather.LoadTimezone(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
