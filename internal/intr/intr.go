// Package intr holds the fixed set of interrupt request lines shared by the
// console and clock devices.
package intr

import "fmt"

// Level identifies one interrupt request line.
type Level int

const (
	Input  Level = iota // console receiver
	Output              // console transmitter
	Clock               // interval timer

	NumLevels
)

// priority orders levels for Highest; the clock outranks the console.
var priority = [NumLevels]Level{Clock, Output, Input}

func (l Level) String() string {
	switch l {
	case Input:
		return "input"
	case Output:
		return "output"
	case Clock:
		return "clock"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Lines is the interrupt line registry. Each device asserts and clears only
// its own level; the CPU loop observes and acknowledges them.
//
// Not safe for concurrent use: every caller runs on the scheduler loop.
type Lines struct {
	pending  [NumLevels]bool
	observer func(l Level, asserted bool)
}

// NewLines creates a registry with every line clear.
func NewLines() *Lines {
	return &Lines{}
}

// Observe registers fn to be called on every line transition.
func (r *Lines) Observe(fn func(l Level, asserted bool)) {
	r.observer = fn
}

// Assert raises the request for l.
func (r *Lines) Assert(l Level) {
	r.set(l, true)
}

// Clear drops the request for l.
func (r *Lines) Clear(l Level) {
	r.set(l, false)
}

// Pending reports whether l is requesting service.
func (r *Lines) Pending(l Level) bool {
	if l < 0 || l >= NumLevels {
		return false
	}
	return r.pending[l]
}

// Any reports whether any line is requesting service.
func (r *Lines) Any() bool {
	for _, p := range r.pending {
		if p {
			return true
		}
	}
	return false
}

// Highest returns the highest priority pending level.
func (r *Lines) Highest() (Level, bool) {
	for _, l := range priority {
		if r.pending[l] {
			return l, true
		}
	}
	return 0, false
}

// Acknowledge is called by the CPU when it takes the interrupt for l.
// It clears the request and reports whether one was pending.
func (r *Lines) Acknowledge(l Level) bool {
	if !r.Pending(l) {
		return false
	}
	r.set(l, false)
	return true
}

// Reset clears every line.
func (r *Lines) Reset() {
	for l := Level(0); l < NumLevels; l++ {
		r.set(l, false)
	}
}

func (r *Lines) set(l Level, v bool) {
	if l < 0 || l >= NumLevels {
		panic(fmt.Sprintf("intr: invalid level %d", int(l)))
	}
	if r.pending[l] == v {
		return
	}
	r.pending[l] = v
	if r.observer != nil {
		r.observer(l, v)
	}
}
