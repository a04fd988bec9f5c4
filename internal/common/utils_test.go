package common

import "testing"

func TestOrZero(t *testing.T) {
	v := 2.5
	if got := OrZero(&v); got != 2.5 {
		t.Errorf("OrZero(&2.5) = %v", got)
	}
	if got := OrZero[float64](nil); got != 0 {
		t.Errorf("OrZero(nil) = %v, want 0", got)
	}
	if got := OrZero[string](nil); got != "" {
		t.Errorf("OrZero[string](nil) = %q", got)
	}
}
