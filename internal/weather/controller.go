package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrClosed is returned when a cycle is requested after Close.
var ErrClosed = errors.New("controller closed")

// Status is the state of the most recently started fetch cycle.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusFetching  Status = "fetching"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Snapshot is a read-only copy of the controller state.
// Data is the last successful cycle and may describe a different location or
// window than the current selection while a cycle is in flight or after a
// failure.
type Snapshot struct {
	Location    Location     `json:"location"`
	Window      Window       `json:"window"`
	Status      Status       `json:"status"`
	Cycle       uint64       `json:"cycle"`
	Data        *CycleResult `json:"data"`
	LastError   string       `json:"lastError,omitempty"`
	LastErrorAt *time.Time   `json:"lastErrorAt,omitempty"`
}

// Cycle is a handle on a started fetch cycle.
type Cycle struct {
	ID   uint64
	done chan struct{}
	err  error
}

// Done is closed once the cycle has completed and its outcome is applied.
func (c *Cycle) Done() <-chan struct{} { return c.done }

// Wait blocks until the cycle completes. It returns nil when the result was
// applied, ErrSuperseded when a newer cycle replaced it, or the fetch error.
func (c *Cycle) Wait() error {
	<-c.done
	return c.err
}

// Controller owns the dashboard view state. State only changes through fetch
// cycles, and only the latest issued cycle may apply its outcome.
type Controller struct {
	fetcher   Fetcher
	locations map[string]Location
	order     []Location
	timeout   time.Duration
	logger    *zap.Logger

	baseCtx context.Context
	stop    context.CancelFunc
	wg      sync.WaitGroup

	mu             sync.RWMutex
	closed         bool
	location       Location
	window         Window
	status         Status
	cycle          uint64
	cancelInFlight context.CancelFunc
	data           *CycleResult
	lastErr        error
	lastErrAt      time.Time
}

// NewController creates a controller selecting initialID and w. No cycle is
// started until Refresh or a selection change.
func NewController(
	fetcher Fetcher,
	locations []Location,
	initialID string,
	w Window,
	timeout time.Duration,
	logger *zap.Logger,
) (*Controller, error) {
	if !w.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWindow, w)
	}

	byID := make(map[string]Location, len(locations))
	for _, loc := range locations {
		byID[loc.ID] = loc
	}
	initial, ok := byID[initialID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLocation, initialID)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		fetcher:   fetcher,
		locations: byID,
		order:     append([]Location(nil), locations...),
		timeout:   timeout,
		logger:    logger.With(zap.String("component", "weather-controller")),
		baseCtx:   ctx,
		stop:      cancel,
		location:  initial,
		window:    w,
		status:    StatusIdle,
	}, nil
}

// Locations returns the selectable locations in catalog order.
func (c *Controller) Locations() []Location {
	return append([]Location(nil), c.order...)
}

// SelectLocation switches the location and starts a new cycle.
func (c *Controller) SelectLocation(id string) (*Cycle, error) {
	return c.start("select_location", func() error {
		loc, ok := c.locations[id]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownLocation, id)
		}
		c.location = loc
		return nil
	})
}

// SelectWindow switches the lookback window and starts a new cycle.
func (c *Controller) SelectWindow(w Window) (*Cycle, error) {
	return c.start("select_window", func() error {
		if !w.Valid() {
			return fmt.Errorf("%w: %d", ErrInvalidWindow, w)
		}
		c.window = w
		return nil
	})
}

// Refresh starts a new cycle for the current selection.
func (c *Controller) Refresh() (*Cycle, error) {
	return c.start("refresh", nil)
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		Location: c.location,
		Window:   c.window,
		Status:   c.status,
		Cycle:    c.cycle,
		Data:     c.data.Clone(),
	}
	if c.lastErr != nil {
		at := c.lastErrAt
		snap.LastError = c.lastErr.Error()
		snap.LastErrorAt = &at
	}
	return snap
}

// Close cancels any in-flight cycle and waits for it to return.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.stop()
	c.wg.Wait()
}

func (c *Controller) start(trigger string, mutate func() error) (*Cycle, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if mutate != nil {
		if err := mutate(); err != nil {
			c.mu.Unlock()
			return nil, err
		}
	}

	c.cycle++
	cycle := &Cycle{ID: c.cycle, done: make(chan struct{})}
	if c.cancelInFlight != nil {
		c.cancelInFlight()
	}
	ctx, cancel := context.WithTimeout(c.baseCtx, c.timeout)
	c.cancelInFlight = cancel
	c.status = StatusFetching
	loc, w := c.location, c.window
	c.wg.Add(1)
	c.mu.Unlock()

	c.logger.Info("fetch cycle issued",
		zap.Uint64("cycle", cycle.ID),
		zap.String("trigger", trigger),
		zap.String("location", loc.ID),
		zap.Int("window", int(w)))

	go func() {
		defer c.wg.Done()
		defer cancel()

		started := time.Now()
		res, err := c.fetcher.Fetch(ctx, loc, w)
		cycle.err = c.complete(cycle.ID, res, err, time.Since(started))
		close(cycle.done)
	}()

	return cycle, nil
}

// complete applies a cycle outcome if, and only if, id is still the latest.
func (c *Controller) complete(id uint64, res *CycleResult, fetchErr error, took time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id != c.cycle {
		c.logger.Debug("discarding superseded fetch cycle",
			zap.Uint64("cycle", id),
			zap.Uint64("latest", c.cycle),
			zap.Duration("duration", took))
		return ErrSuperseded
	}
	c.cancelInFlight = nil

	if fetchErr == nil && res == nil {
		fetchErr = errors.New("fetcher returned no result")
	}
	if fetchErr != nil {
		c.status = StatusFailed
		c.lastErr = fetchErr
		c.lastErrAt = time.Now().UTC()
		c.logger.Error("fetch cycle failed; keeping previous data",
			zap.Uint64("cycle", id),
			zap.String("error_kind", ErrorKind(fetchErr)),
			zap.Duration("duration", took),
			zap.Error(fetchErr))
		return fetchErr
	}

	res.Cycle = id
	c.data = res
	c.status = StatusSucceeded
	c.lastErr = nil
	c.logger.Info("fetch cycle succeeded",
		zap.Uint64("cycle", id),
		zap.String("location", res.Location.ID),
		zap.Int("records", len(res.Records)),
		zap.Duration("duration", took))
	return nil
}
