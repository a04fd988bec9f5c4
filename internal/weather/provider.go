package weather

import (
	"context"
)

// DailySeries is the "daily" object returned by both endpoints: parallel
// arrays indexed by day offset. Nulls decode to nil entries.
type DailySeries struct {
	Time             []string   `json:"time"`
	Temperature2MMax []*float64 `json:"temperature_2m_max"`
	Temperature2MMin []*float64 `json:"temperature_2m_min"`
	SnowfallSum      []*float64 `json:"snowfall_sum"`
	PrecipitationSum []*float64 `json:"precipitation_sum"`
}

// CurrentValues is the "current" object of the forecast endpoint.
type CurrentValues struct {
	Time          string   `json:"time"`
	Temperature2M *float64 `json:"temperature_2m"`
	WindSpeed10M  *float64 `json:"wind_speed_10m"`
	Snowfall      *float64 `json:"snowfall"`
	WeatherCode   *int     `json:"weather_code"`
}

// ForecastPayload is the raw forecast endpoint response.
type ForecastPayload struct {
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Timezone  string         `json:"timezone"`
	Current   *CurrentValues `json:"current"`
	Daily     *DailySeries   `json:"daily"`
}

// ArchivePayload is the raw archive endpoint response.
type ArchivePayload struct {
	Latitude  float64      `json:"latitude"`
	Longitude float64      `json:"longitude"`
	Timezone  string       `json:"timezone"`
	Daily     *DailySeries `json:"daily"`
}

// ForecastQuery describes request A: current conditions plus upcoming days.
type ForecastQuery struct {
	Location Location
	Timezone string
	Days     int
}

// ArchiveQuery describes request B: the historical archive for a date range.
type ArchiveQuery struct {
	Location Location
	Timezone string
	Range    DateRange
}

// Provider abstracts the upstream weather API (Open-Meteo).
// Implementations return NetworkError, UpstreamError or MalformedResponseError.
type Provider interface {
	Name() string
	Forecast(ctx context.Context, q ForecastQuery) (*ForecastPayload, error)
	Archive(ctx context.Context, q ArchiveQuery) (*ArchivePayload, error)
}
