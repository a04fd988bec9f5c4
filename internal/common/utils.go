package common

// OrZero dereferences p, returning the zero value of T when p is nil.
// Upstream arrays use JSON null for missing samples.
func OrZero[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
