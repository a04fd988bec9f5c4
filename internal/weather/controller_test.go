package weather

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

var sommet = Location{ID: "sommet", Name: "Sommet (Saulire)", Latitude: 45.389, Longitude: 6.571, ElevationM: 2700}

var testLocations = []Location{centre, sommet}

// gatedFetcher blocks each fetch until its location's gate is released and
// ignores cancellation, so late results can be delivered on purpose.
type gatedFetcher struct {
	mu      sync.Mutex
	gates   map[string]chan struct{}
	ctxs    map[string]context.Context
	started chan string
}

func newGatedFetcher(ids ...string) *gatedFetcher {
	f := &gatedFetcher{
		gates:   map[string]chan struct{}{},
		ctxs:    map[string]context.Context{},
		started: make(chan string, 16),
	}
	for _, id := range ids {
		f.gates[id] = make(chan struct{})
	}
	return f
}

func (f *gatedFetcher) Fetch(ctx context.Context, loc Location, w Window) (*CycleResult, error) {
	f.mu.Lock()
	gate := f.gates[loc.ID]
	f.ctxs[loc.ID] = ctx
	f.mu.Unlock()

	f.started <- loc.ID
	<-gate
	return &CycleResult{Location: loc, Window: w}, nil
}

func (f *gatedFetcher) ctx(id string) context.Context {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ctxs[id]
}

func (f *gatedFetcher) waitStarted(t *testing.T, id string) {
	t.Helper()
	select {
	case got := <-f.started:
		if got != id {
			t.Fatalf("started fetch for %q, want %q", got, id)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("fetch for %q never started", id)
	}
}

func newTestController(t *testing.T, f Fetcher) *Controller {
	t.Helper()
	c, err := NewController(f, testLocations, centre.ID, Window7Days, 5*time.Second, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func waitCycle(t *testing.T, c *Cycle) error {
	t.Helper()
	select {
	case <-c.Done():
		return c.Wait()
	case <-time.After(2 * time.Second):
		t.Fatalf("cycle %d did not complete", c.ID)
		return nil
	}
}

func TestControllerLastCycleWins(t *testing.T) {
	tests := []struct {
		name         string
		releaseFirst string
	}{
		{"newer cycle completes first", sommet.ID},
		{"older cycle completes first", centre.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGatedFetcher(centre.ID, sommet.ID)
			c := newTestController(t, f)

			first, err := c.Refresh()
			if err != nil {
				t.Fatalf("Refresh: %v", err)
			}
			f.waitStarted(t, centre.ID)

			second, err := c.SelectLocation(sommet.ID)
			if err != nil {
				t.Fatalf("SelectLocation: %v", err)
			}
			f.waitStarted(t, sommet.ID)

			if second.ID <= first.ID {
				t.Fatalf("cycle ids must increase: %d then %d", first.ID, second.ID)
			}
			select {
			case <-f.ctx(centre.ID).Done():
			default:
				t.Error("starting a cycle must cancel the previous one")
			}

			if tt.releaseFirst == sommet.ID {
				close(f.gates[sommet.ID])
				if err := waitCycle(t, second); err != nil {
					t.Fatalf("latest cycle: %v", err)
				}
				close(f.gates[centre.ID])
			} else {
				close(f.gates[centre.ID])
				if err := waitCycle(t, first); !errors.Is(err, ErrSuperseded) {
					t.Fatalf("expected ErrSuperseded, got %v", err)
				}
				close(f.gates[sommet.ID])
			}

			if err := waitCycle(t, first); !errors.Is(err, ErrSuperseded) {
				t.Errorf("older cycle: expected ErrSuperseded, got %v", err)
			}
			if err := waitCycle(t, second); err != nil {
				t.Errorf("newer cycle: %v", err)
			}

			snap := c.Snapshot()
			if snap.Status != StatusSucceeded {
				t.Errorf("Status = %s", snap.Status)
			}
			if snap.Data == nil || snap.Data.Location.ID != sommet.ID {
				t.Fatalf("expected data for %q, got %+v", sommet.ID, snap.Data)
			}
			if snap.Data.Cycle != second.ID || snap.Cycle != second.ID {
				t.Errorf("cycle = %d/%d, want %d", snap.Data.Cycle, snap.Cycle, second.ID)
			}
		})
	}
}

type scriptedFetcher struct {
	mu      sync.Mutex
	results []error
	calls   int
}

func (f *scriptedFetcher) Fetch(_ context.Context, loc Location, w Window) (*CycleResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := f.results[f.calls]
	f.calls++
	if err != nil {
		return nil, err
	}
	high := 3
	return &CycleResult{Location: loc, Window: w, Records: []DailyRecord{{Date: "2025-01-15", TempMax: &high}}}, nil
}

func TestControllerFailureKeepsPreviousData(t *testing.T) {
	upstream := &UpstreamError{Endpoint: "archive", StatusCode: 502}
	f := &scriptedFetcher{results: []error{nil, upstream}}
	c := newTestController(t, f)

	first, _ := c.Refresh()
	if err := waitCycle(t, first); err != nil {
		t.Fatalf("first cycle: %v", err)
	}

	second, err := c.SelectWindow(Window14Days)
	if err != nil {
		t.Fatalf("SelectWindow: %v", err)
	}
	if err := waitCycle(t, second); !errors.As(err, &upstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}

	snap := c.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("Status = %s, want failed", snap.Status)
	}
	if snap.LastError == "" || snap.LastErrorAt == nil {
		t.Error("expected LastError to be recorded")
	}
	if snap.Window != Window14Days {
		t.Errorf("selection should reflect the new window, got %d", snap.Window)
	}
	if snap.Data == nil || snap.Data.Cycle != first.ID || snap.Data.Window != Window7Days {
		t.Errorf("previous data should stay visible, got %+v", snap.Data)
	}
}

func TestControllerRejectsInvalidSelection(t *testing.T) {
	f := &scriptedFetcher{results: []error{nil}}
	c := newTestController(t, f)

	if _, err := c.SelectLocation("courchevel"); !errors.Is(err, ErrUnknownLocation) {
		t.Errorf("expected ErrUnknownLocation, got %v", err)
	}
	if _, err := c.SelectWindow(Window(30)); !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("expected ErrInvalidWindow, got %v", err)
	}

	snap := c.Snapshot()
	if snap.Cycle != 0 || snap.Status != StatusIdle || snap.Location.ID != centre.ID {
		t.Errorf("rejected selections must not change state: %+v", snap)
	}
}

func TestControllerSnapshotIsCopy(t *testing.T) {
	f := &scriptedFetcher{results: []error{nil}}
	c := newTestController(t, f)

	cycle, _ := c.Refresh()
	if err := waitCycle(t, cycle); err != nil {
		t.Fatalf("cycle: %v", err)
	}

	snap := c.Snapshot()
	*snap.Data.Records[0].TempMax = 99
	snap.Data.Records[0].Snowfall = 42

	again := c.Snapshot()
	if *again.Data.Records[0].TempMax != 3 || again.Data.Records[0].Snowfall != 0 {
		t.Errorf("snapshot mutation leaked into controller state: %+v", again.Data.Records[0])
	}
}

func TestControllerClosed(t *testing.T) {
	c := newTestController(t, &scriptedFetcher{})
	c.Close()

	if _, err := c.Refresh(); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestNewControllerValidation(t *testing.T) {
	logger := zaptest.NewLogger(t)
	if _, err := NewController(&scriptedFetcher{}, testLocations, "nowhere", Window7Days, time.Second, logger); !errors.Is(err, ErrUnknownLocation) {
		t.Errorf("expected ErrUnknownLocation, got %v", err)
	}
	if _, err := NewController(&scriptedFetcher{}, testLocations, centre.ID, Window(3), time.Second, logger); !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("expected ErrInvalidWindow, got %v", err)
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&NetworkError{Endpoint: "forecast", Err: context.Canceled}, "network"},
		{&UpstreamError{Endpoint: "archive", StatusCode: 404}, "upstream"},
		{malformed("archive", "bad"), "malformed"},
		{errors.Join(errors.New("x"), &UpstreamError{StatusCode: 500}), "upstream"},
		{ErrSuperseded, "superseded"},
		{errors.New("boom"), "internal"},
	}
	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
