package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/meribel-snow-monitor/internal/weather"
)

type countingFetcher struct {
	calls atomic.Int32
}

func (f *countingFetcher) Fetch(_ context.Context, loc weather.Location, w weather.Window) (*weather.CycleResult, error) {
	f.calls.Add(1)
	return &weather.CycleResult{Location: loc, Window: w}, nil
}

func newController(t *testing.T, f weather.Fetcher) *weather.Controller {
	t.Helper()
	locs := []weather.Location{{ID: "meribel-centre", Latitude: 45.401, Longitude: 6.567}}
	ctrl, err := weather.NewController(f, locs, "meribel-centre", weather.Window7Days, time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	t.Cleanup(ctrl.Close)
	return ctrl
}

func TestSchedulerRefreshesPeriodically(t *testing.T) {
	f := &countingFetcher{}
	s := New(newController(t, f), 20*time.Millisecond, zap.NewNop())
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for f.calls.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected at least 2 scheduled refreshes, got %d", f.calls.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSchedulerDisabled(t *testing.T) {
	f := &countingFetcher{}
	s := New(newController(t, f), 0, zap.NewNop())
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	time.Sleep(50 * time.Millisecond)
	if n := f.calls.Load(); n != 0 {
		t.Fatalf("expected no refreshes when disabled, got %d", n)
	}
}
