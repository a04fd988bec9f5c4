package scheduler

import (
	"errors"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/meribel-snow-monitor/internal/weather"
)

// Refresher starts a fetch cycle for the current selection.
type Refresher interface {
	Refresh() (*weather.Cycle, error)
}

// Scheduler periodically refreshes the dashboard.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	interval  time.Duration
	logger    *zap.Logger
}

// New creates a new Scheduler. An interval <= 0 disables it.
func New(refresher Refresher, interval time.Duration, logger *zap.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		refresher: refresher,
		interval:  interval,
		logger:    logger.With(zap.String("component", "scheduler")),
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens one interval after Start.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("periodic refresh disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().SingletonMode().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("periodic refresh scheduled", zap.Duration("interval", s.interval))
	return nil
}

func (s *Scheduler) run() {
	cycle, err := s.refresher.Refresh()
	if err != nil {
		s.logger.Error("scheduled refresh not started", zap.Error(err))
		return
	}

	// Superseded cycles are expected when a user changes the selection
	// while the scheduled refresh is in flight.
	if err := cycle.Wait(); err != nil && !errors.Is(err, weather.ErrSuperseded) {
		s.logger.Warn("scheduled refresh failed",
			zap.Uint64("cycle", cycle.ID),
			zap.String("error_kind", weather.ErrorKind(err)),
			zap.Error(err))
		return
	}
	s.logger.Debug("scheduled refresh completed", zap.Uint64("cycle", cycle.ID))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
