package clock

import (
	"time"

	internalclock "github.com/SmitUplenchwar2687/Tempo/internal/clock"
)

// Clock abstracts the host wall clock behind the TODR and calibration.
type Clock = internalclock.Clock

// RealClock delegates to the standard time package.
type RealClock = internalclock.RealClock

// VirtualClock is a controllable clock for tests.
type VirtualClock = internalclock.VirtualClock

// ErrUnavailable is returned when the wall clock cannot be read.
var ErrUnavailable = internalclock.ErrUnavailable

// NewRealClock creates a real wall-clock implementation.
func NewRealClock() *RealClock {
	return internalclock.NewRealClock()
}

// NewVirtualClock creates a virtual clock starting at the given time.
func NewVirtualClock(start time.Time) *VirtualClock {
	return internalclock.NewVirtualClock(start)
}
