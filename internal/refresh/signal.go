// Package refresh provides the counter used to request a full task re-fetch.
package refresh

import "sync/atomic"

// Signal is a monotonically increasing counter. Its value carries no meaning;
// consumers only compare it with the last value they observed.
type Signal struct {
	v atomic.Uint64
}

// Bump increments the counter and returns the new value.
func (s *Signal) Bump() uint64 {
	return s.v.Add(1)
}

// Value returns the current counter value.
func (s *Signal) Value() uint64 {
	return s.v.Load()
}
