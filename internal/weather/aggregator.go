package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ForecastDays is the number of upcoming days requested from the forecast endpoint.
const ForecastDays = 7

// Fetcher runs one fetch cycle for a location and lookback window.
type Fetcher interface {
	Fetch(ctx context.Context, loc Location, w Window) (*CycleResult, error)
}

// Aggregator issues the forecast and archive requests of a fetch cycle and
// normalizes both payloads.
type Aggregator struct {
	provider Provider
	tz       *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewAggregator creates an Aggregator doing calendar arithmetic in tz.
func NewAggregator(provider Provider, tz *time.Location, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		provider: provider,
		tz:       tz,
		logger:   logger.With(zap.String("component", "weather-aggregator")),
		now:      time.Now,
	}
}

// Fetch runs both requests concurrently and waits for both. It returns a
// complete result or an error, never a mix of fresh and stale data.
func (a *Aggregator) Fetch(ctx context.Context, loc Location, w Window) (*CycleResult, error) {
	if !w.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWindow, w)
	}

	dateRange := DateRangeFor(a.now(), w, a.tz)
	a.logger.Debug("fetch cycle started",
		zap.String("location", loc.ID),
		zap.Int("window", int(w)),
		zap.String("start_date", dateRange.StartDate()),
		zap.String("end_date", dateRange.EndDate()))

	var (
		wg          sync.WaitGroup
		current     CurrentConditions
		records     []DailyRecord
		forecastErr error
		archiveErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()

		payload, err := a.provider.Forecast(ctx, ForecastQuery{
			Location: loc,
			Timezone: a.tz.String(),
			Days:     ForecastDays,
		})
		if err != nil {
			forecastErr = fmt.Errorf("forecast request: %w", err)
			return
		}
		current, forecastErr = NormalizeForecast(payload)
	}()

	go func() {
		defer wg.Done()

		payload, err := a.provider.Archive(ctx, ArchiveQuery{
			Location: loc,
			Timezone: a.tz.String(),
			Range:    dateRange,
		})
		if err != nil {
			archiveErr = fmt.Errorf("archive request: %w", err)
			return
		}
		records, archiveErr = NormalizeArchive(payload, dateRange)
	}()

	wg.Wait()

	if err := errors.Join(forecastErr, archiveErr); err != nil {
		return nil, err
	}

	if len(records) != dateRange.Days() {
		a.logger.Warn("archive returned a partial range",
			zap.String("location", loc.ID),
			zap.Int("expected_days", dateRange.Days()),
			zap.Int("got_days", len(records)))
	}

	return &CycleResult{
		Location:  loc,
		Window:    w,
		Range:     dateRange,
		Current:   current,
		Records:   records,
		FetchedAt: a.now().UTC(),
	}, nil
}
