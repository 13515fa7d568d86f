// Package platform supplies the default Timer and Mutex implementations
// the mqtt package's interfaces require, analogous to the original
// source's platforms/POSIX layer.
package platform

import "time"

// SystemTimer is a monotonic countdown backed by time.Now, implementing
// mqtt.Timer. Its zero value is already expired — Countdown must be
// called before it is useful.
type SystemTimer struct {
	deadline time.Time
}

// NewTimer returns a fresh, not-yet-armed SystemTimer.
func NewTimer() *SystemTimer {
	return &SystemTimer{}
}

// Countdown arms the timer to expire after d.
func (t *SystemTimer) Countdown(d time.Duration) {
	t.deadline = time.Now().Add(d)
}

// Left returns the remaining duration until expiry, which may be zero or
// negative once the timer has expired.
func (t *SystemTimer) Left() time.Duration {
	return time.Until(t.deadline)
}

// Expired reports whether the timer's deadline has passed.
func (t *SystemTimer) Expired() bool {
	return !time.Now().Before(t.deadline)
}
