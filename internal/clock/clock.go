package clock

import (
	"errors"
	"time"
)

// ErrUnavailable is returned by Read when the host could not supply wall time.
var ErrUnavailable = errors.New("clock: wall time unavailable")

// Clock abstracts the host wall clock so the TODR and timer calibration
// work with both real and virtual time.
// All wall-time dependent code in Tempo uses this interface instead of time.Now().
type Clock interface {
	// Now returns the current time. A zero time means the read failed.
	Now() time.Time
	// Since returns the duration elapsed since t.
	Since(t time.Time) time.Duration
}

// Read returns the current time of c, or ErrUnavailable if c returned the
// zero time.
func Read(c Clock) (time.Time, error) {
	now := c.Now()
	if now.IsZero() {
		return time.Time{}, ErrUnavailable
	}
	return now, nil
}

// RealClock delegates to the standard time package.
type RealClock struct{}

func NewRealClock() *RealClock {
	return &RealClock{}
}

func (c *RealClock) Now() time.Time {
	return time.Now()
}

func (c *RealClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}
