package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/meribel-snow-monitor/internal/weather"
)

const (
	DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"
	DefaultArchiveURL  = "https://archive-api.open-meteo.com/v1/archive"

	dailyFields   = "temperature_2m_max,temperature_2m_min,snowfall_sum,precipitation_sum"
	currentFields = "temperature_2m,wind_speed_10m,snowfall,weather_code"
)

// OpenMeteoConfig configures the Open-Meteo client. Empty URLs fall back to
// the public endpoints.
type OpenMeteoConfig struct {
	ForecastURL    string
	ArchiveURL     string
	HTTP           HTTPClientConfig
	BreakerTimeout time.Duration
}

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
type OpenMeteoProvider struct {
	name        string
	forecastURL string
	archiveURL  string
	httpCfg     HTTPClientConfig
	forecastCB  *gobreaker.CircuitBreaker
	archiveCB   *gobreaker.CircuitBreaker
	logger      *zap.Logger
}

func NewOpenMeteoProvider(cfg OpenMeteoConfig, logger *zap.Logger) *OpenMeteoProvider {
	if cfg.ForecastURL == "" {
		cfg.ForecastURL = DefaultForecastURL
	}
	if cfg.ArchiveURL == "" {
		cfg.ArchiveURL = DefaultArchiveURL
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 2 * time.Minute
	}
	if cfg.HTTP.Client == nil {
		cfg.HTTP.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.HTTP.Backoff == (BackoffConfig{}) {
		cfg.HTTP.Backoff = BackoffConfig{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		}
	}

	logger = logger.With(zap.String("provider", "openmeteo"))
	return &OpenMeteoProvider{
		name:        "openmeteo",
		forecastURL: cfg.ForecastURL,
		archiveURL:  cfg.ArchiveURL,
		httpCfg:     cfg.HTTP,
		forecastCB:  newBreaker("openmeteo-forecast", cfg.BreakerTimeout, logger),
		archiveCB:   newBreaker("openmeteo-archive", cfg.BreakerTimeout, logger),
		logger:      logger,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// Forecast fetches current conditions and the next q.Days days.
func (p *OpenMeteoProvider) Forecast(ctx context.Context, q weather.ForecastQuery) (*weather.ForecastPayload, error) {
	values := coordinates(q.Location)
	values.Set("current", currentFields)
	values.Set("daily", dailyFields)
	values.Set("timezone", q.Timezone)
	if q.Days > 0 {
		values.Set("forecast_days", strconv.Itoa(q.Days))
	}

	var payload weather.ForecastPayload
	if err := p.get(ctx, "forecast", p.forecastURL, values, p.forecastCB, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Archive fetches daily history for the inclusive range q.Range.
func (p *OpenMeteoProvider) Archive(ctx context.Context, q weather.ArchiveQuery) (*weather.ArchivePayload, error) {
	values := coordinates(q.Location)
	values.Set("start_date", q.Range.StartDate())
	values.Set("end_date", q.Range.EndDate())
	values.Set("daily", dailyFields)
	values.Set("timezone", q.Timezone)

	var payload weather.ArchivePayload
	if err := p.get(ctx, "archive", p.archiveURL, values, p.archiveCB, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (p *OpenMeteoProvider) get(
	ctx context.Context,
	endpoint, baseURL string,
	values url.Values,
	cb *gobreaker.CircuitBreaker,
	out any,
) error {
	u := fmt.Sprintf("%s?%s", baseURL, values.Encode())
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	started := time.Now()
	body, err := doRequestWithResilience(ctx, endpoint, p.httpCfg, cb, p.logger, buildRequest)
	if err != nil {
		return err
	}
	p.logger.Debug("upstream request completed",
		zap.String("endpoint", endpoint),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", time.Since(started)))

	if err := json.Unmarshal(body, out); err != nil {
		return &weather.MalformedResponseError{Endpoint: endpoint, Reason: "decode json", Err: err}
	}
	return nil
}

func coordinates(loc weather.Location) url.Values {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	return values
}
