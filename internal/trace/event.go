package trace

import (
	"time"

	"github.com/SmitUplenchwar2687/Tempo/internal/intr"
	"github.com/SmitUplenchwar2687/Tempo/internal/stddev"
)

// Interrupt line events.
const (
	DeviceIRQ   = "irq"
	KindAssert  = "assert"
	KindRelease = "release"
)

// Event is one recorded device action.
type Event struct {
	Time   time.Time `json:"time"`   // host wall time
	At     int64     `json:"at"`     // scheduler units since start
	Device string    `json:"device"` // clk, tti, tto, todr, irq
	Kind   string    `json:"kind"`   // e.g. "transmit", "assert"
	Value  uint32    `json:"value"`
	Note   string    `json:"note,omitempty"`
}

// FromDevice stamps a device event.
func FromDevice(e stddev.Event, now time.Time, at int64) Event {
	return Event{
		Time:   now,
		At:     at,
		Device: e.Device,
		Kind:   e.Kind,
		Value:  e.Value,
	}
}

// FromLine stamps an interrupt line transition. Value is the level.
func FromLine(l intr.Level, asserted bool, now time.Time, at int64) Event {
	kind := KindRelease
	if asserted {
		kind = KindAssert
	}
	return Event{
		Time:   now,
		At:     at,
		Device: DeviceIRQ,
		Kind:   kind,
		Value:  uint32(l),
		Note:   l.String(),
	}
}
