package providers

import (
	"testing"
	"time"
)

func TestBackoffDelay(t *testing.T) {
	tests := []struct {
		name    string
		backoff BackoffConfig
		attempt int
		want    time.Duration
	}{
		{"first attempt", BackoffConfig{InitialInterval: 100 * time.Millisecond, MaxInterval: 5 * time.Second}, 0, 100 * time.Millisecond},
		{"doubles", BackoffConfig{InitialInterval: 100 * time.Millisecond, MaxInterval: 5 * time.Second}, 3, 800 * time.Millisecond},
		{"clamped", BackoffConfig{InitialInterval: 100 * time.Millisecond, MaxInterval: 5 * time.Second}, 10, 5 * time.Second},
		{"large attempt clamped", BackoffConfig{InitialInterval: 500 * time.Millisecond, MaxInterval: 5 * time.Second}, 1000, 5 * time.Second},
		{"large attempt without max saturates", BackoffConfig{InitialInterval: 500 * time.Millisecond}, 1000, time.Duration(1<<63 - 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.backoff.delay(tt.attempt)
			if got != tt.want {
				t.Errorf("delay(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
			if got <= 0 {
				t.Errorf("delay(%d) overflowed to %v", tt.attempt, got)
			}
		})
	}
}
