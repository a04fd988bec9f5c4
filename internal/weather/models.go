package weather

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format used by the upstream API.
const DateLayout = "2006-01-02"

// LabelLayout is the short display label of a day, e.g. "Jan 2".
const LabelLayout = "Jan 2"

// Location is a fixed point for which weather is tracked.
// Locations are immutable and come from a static list.
type Location struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	ElevationM int     `json:"elevationM,omitempty"`
}

// Window is the number of past days of history to fetch.
type Window int

const (
	Window7Days  Window = 7
	Window14Days Window = 14
)

// Valid reports whether w is one of the supported lookback windows.
func (w Window) Valid() bool {
	return w == Window7Days || w == Window14Days
}

// ParseWindow parses "7" or "14" (an optional "days" suffix is accepted).
func ParseWindow(s string) (Window, error) {
	n, err := strconv.Atoi(strings.TrimSuffix(s, "days"))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWindow, s)
	}
	w := Window(n)
	if !w.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidWindow, n)
	}
	return w, nil
}

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Days returns the number of calendar days covered, both bounds included.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24+0.5) + 1
}

// Contains reports whether the calendar date d lies in the range.
func (r DateRange) Contains(d time.Time) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// DailyRecord is one normalized day of historical weather.
// Temperatures are nil when the archive has no value for that day.
type DailyRecord struct {
	Date          string  `json:"fullDate"`
	Label         string  `json:"date"`
	TempMax       *int    `json:"tempMax"`
	TempMin       *int    `json:"tempMin"`
	Snowfall      float64 `json:"snowfall"`      // cm
	Precipitation float64 `json:"precipitation"` // mm
}

// DailyForecast is one upcoming day from the forecast endpoint.
type DailyForecast struct {
	Date          string  `json:"date"`
	TempMax       *int    `json:"tempMax"`
	TempMin       *int    `json:"tempMin"`
	Snowfall      float64 `json:"snowfall"`
	Precipitation float64 `json:"precipitation"`
}

// CurrentConditions holds the instantaneous readings plus the short forecast.
type CurrentConditions struct {
	Time        string          `json:"time"`
	Temperature *float64        `json:"temperature"`
	WindSpeed   *float64        `json:"windSpeed"` // km/h
	Snowfall    float64         `json:"snowfall"`  // cm
	WeatherCode *int            `json:"weatherCode,omitempty"`
	Weather     string          `json:"weather,omitempty"`
	Today       *DailyForecast  `json:"today,omitempty"`
	Forecast    []DailyForecast `json:"forecast"`
}

// CycleResult is the complete, consistent output of one fetch cycle.
type CycleResult struct {
	Cycle     uint64            `json:"cycle"`
	Location  Location          `json:"location"`
	Window    Window            `json:"window"`
	Range     DateRange         `json:"range"`
	Current   CurrentConditions `json:"current"`
	Records   []DailyRecord     `json:"records"`
	FetchedAt time.Time         `json:"fetchedAt"`
}

// Clone returns a deep copy so callers can't mutate shared state.
func (r *CycleResult) Clone() *CycleResult {
	if r == nil {
		return nil
	}
	out := *r
	out.Records = make([]DailyRecord, len(r.Records))
	for i, rec := range r.Records {
		rec.TempMax = cloneInt(rec.TempMax)
		rec.TempMin = cloneInt(rec.TempMin)
		out.Records[i] = rec
	}
	out.Current = r.Current.clone()
	return &out
}

func (c CurrentConditions) clone() CurrentConditions {
	out := c
	out.Temperature = cloneFloat(c.Temperature)
	out.WindSpeed = cloneFloat(c.WindSpeed)
	out.WeatherCode = cloneInt(c.WeatherCode)
	if c.Today != nil {
		today := c.Today.clone()
		out.Today = &today
	}
	out.Forecast = make([]DailyForecast, len(c.Forecast))
	for i, d := range c.Forecast {
		out.Forecast[i] = d.clone()
	}
	return out
}

func (d DailyForecast) clone() DailyForecast {
	d.TempMax = cloneInt(d.TempMax)
	d.TempMin = cloneInt(d.TempMin)
	return d
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
