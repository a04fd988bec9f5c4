package weather

import (
	"fmt"
	"math"
	"time"

	"github.com/i474232898/meribel-snow-monitor/internal/common"
)

const (
	endpointForecast = "forecast"
	endpointArchive  = "archive"
)

// NormalizeArchive zips the archive's parallel daily arrays into one record
// per day, in the order returned by the provider.
//
// Temperatures are rounded half away from zero. Null or absent snowfall and
// precipitation become 0. Arrays of unequal length, a missing time axis, a
// date outside r or dates not strictly ascending are reported as
// *MalformedResponseError.
func NormalizeArchive(p *ArchivePayload, r DateRange) ([]DailyRecord, error) {
	if p == nil {
		return nil, malformed(endpointArchive, "empty payload")
	}
	if err := checkSeries(endpointArchive, p.Daily); err != nil {
		return nil, err
	}

	tz := r.Start.Location()
	d := p.Daily
	records := make([]DailyRecord, 0, len(d.Time))
	var prev time.Time
	for i, raw := range d.Time {
		day, err := time.ParseInLocation(DateLayout, raw, tz)
		if err != nil {
			return nil, &MalformedResponseError{Endpoint: endpointArchive, Reason: fmt.Sprintf("daily.time[%d]", i), Err: err}
		}
		if !r.Contains(day) {
			return nil, malformed(endpointArchive, "daily.time[%d]=%s outside requested range %s..%s", i, raw, r.StartDate(), r.EndDate())
		}
		if i > 0 && !day.After(prev) {
			return nil, malformed(endpointArchive, "daily.time[%d]=%s not after %s", i, raw, prev.Format(DateLayout))
		}
		prev = day

		records = append(records, DailyRecord{
			Date:          raw,
			Label:         day.Format(LabelLayout),
			TempMax:       roundTemp(d.Temperature2MMax[i]),
			TempMin:       roundTemp(d.Temperature2MMin[i]),
			Snowfall:      valueAt(d.SnowfallSum, i),
			Precipitation: valueAt(d.PrecipitationSum, i),
		})
	}
	return records, nil
}

// NormalizeForecast maps the forecast payload to CurrentConditions. Today is
// the first forecast day when the daily series is not empty.
func NormalizeForecast(p *ForecastPayload) (CurrentConditions, error) {
	if p == nil {
		return CurrentConditions{}, malformed(endpointForecast, "empty payload")
	}
	if p.Current == nil {
		return CurrentConditions{}, malformed(endpointForecast, "missing current object")
	}
	if err := checkSeries(endpointForecast, p.Daily); err != nil {
		return CurrentConditions{}, err
	}

	cur := p.Current
	out := CurrentConditions{
		Time:        cur.Time,
		Temperature: cur.Temperature2M,
		WindSpeed:   cur.WindSpeed10M,
		Snowfall:    common.OrZero(cur.Snowfall),
		WeatherCode: cur.WeatherCode,
		Forecast:    make([]DailyForecast, 0, len(p.Daily.Time)),
	}
	if cur.WeatherCode != nil {
		out.Weather = DescribeWeatherCode(*cur.WeatherCode)
	}

	d := p.Daily
	for i, raw := range d.Time {
		if _, err := time.Parse(DateLayout, raw); err != nil {
			return CurrentConditions{}, &MalformedResponseError{Endpoint: endpointForecast, Reason: fmt.Sprintf("daily.time[%d]", i), Err: err}
		}
		out.Forecast = append(out.Forecast, DailyForecast{
			Date:          raw,
			TempMax:       roundTemp(d.Temperature2MMax[i]),
			TempMin:       roundTemp(d.Temperature2MMin[i]),
			Snowfall:      valueAt(d.SnowfallSum, i),
			Precipitation: valueAt(d.PrecipitationSum, i),
		})
	}
	if len(out.Forecast) > 0 {
		today := out.Forecast[0].clone()
		out.Today = &today
	}
	return out, nil
}

// checkSeries enforces the parallel-array invariant. Temperature arrays are
// required; snowfall and precipitation may be absent entirely (read as 0)
// but, when present, must line up with daily.time.
func checkSeries(endpoint string, d *DailySeries) error {
	if d == nil {
		return malformed(endpoint, "missing daily object")
	}
	if d.Time == nil {
		return malformed(endpoint, "missing daily.time")
	}
	n := len(d.Time)

	required := []struct {
		name string
		vals []*float64
	}{
		{"temperature_2m_max", d.Temperature2MMax},
		{"temperature_2m_min", d.Temperature2MMin},
	}
	for _, f := range required {
		if f.vals == nil {
			return malformed(endpoint, "missing daily.%s", f.name)
		}
		if len(f.vals) != n {
			return malformed(endpoint, "daily.%s has %d entries, daily.time has %d", f.name, len(f.vals), n)
		}
	}

	optional := []struct {
		name string
		vals []*float64
	}{
		{"snowfall_sum", d.SnowfallSum},
		{"precipitation_sum", d.PrecipitationSum},
	}
	for _, f := range optional {
		if f.vals != nil && len(f.vals) != n {
			return malformed(endpoint, "daily.%s has %d entries, daily.time has %d", f.name, len(f.vals), n)
		}
	}
	return nil
}

// RoundTemperature rounds to the nearest integer, ties away from zero.
func RoundTemperature(v float64) int {
	return int(math.Round(v))
}

func roundTemp(p *float64) *int {
	if p == nil {
		return nil
	}
	v := RoundTemperature(*p)
	return &v
}

func valueAt(vals []*float64, i int) float64 {
	if i >= len(vals) {
		return 0
	}
	return common.OrZero(vals[i])
}
