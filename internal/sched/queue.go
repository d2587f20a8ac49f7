// Package sched is the event scheduler the simulated devices run on.
//
// Time is counted in abstract units (one per simulated instruction). Devices
// implement Unit and are called back when the delay they armed has elapsed.
// A device never blocks: it re-arms itself and returns.
package sched

import (
	"github.com/SmitUplenchwar2687/Tempo/internal/clock"
)

// Unit is a schedulable device.
type Unit interface {
	// OnDue is the service routine, called once per arming.
	OnDue() error
}

type entry struct {
	unit Unit
	due  int64
	seq  uint64
}

// Queue is a single-threaded discrete event queue with per-timer
// wall-clock calibration.
type Queue struct {
	now     int64
	seq     uint64
	pending []entry // ordered by (due, seq)

	clock  clock.Clock
	timers map[int]*Calibrator
}

// NewQueue creates an empty queue whose timers calibrate against c.
func NewQueue(c clock.Clock) *Queue {
	return &Queue{
		clock:  c,
		timers: make(map[int]*Calibrator),
	}
}

// Now returns the number of units elapsed since the queue was created.
func (q *Queue) Now() int64 {
	return q.now
}

// Len returns the number of pending units.
func (q *Queue) Len() int {
	return len(q.pending)
}

// Schedule arms u to run after delay units. Scheduling a unit that is
// already pending does nothing; Cancel it first to move it.
// Negative delays are treated as zero.
func (q *Queue) Schedule(u Unit, delay int32) {
	if q.index(u) >= 0 {
		return
	}
	if delay < 0 {
		delay = 0
	}
	q.seq++
	e := entry{unit: u, due: q.now + int64(delay), seq: q.seq}

	i := len(q.pending)
	for i > 0 && q.pending[i-1].due > e.due {
		i--
	}
	q.pending = append(q.pending, entry{})
	copy(q.pending[i+1:], q.pending[i:])
	q.pending[i] = e
}

// Cancel disarms u. It reports whether u was pending.
func (q *Queue) Cancel(u Unit) bool {
	i := q.index(u)
	if i < 0 {
		return false
	}
	q.pending = append(q.pending[:i], q.pending[i+1:]...)
	return true
}

// Remaining returns how many units are left before u fires, and whether
// u is pending at all.
func (q *Queue) Remaining(u Unit) (int32, bool) {
	i := q.index(u)
	if i < 0 {
		return 0, false
	}
	return int32(q.pending[i].due - q.now), true
}

// Advance lets n units of time pass, servicing every unit that falls due in
// order. It stops at the first service error, leaving the clock at that
// unit's due time.
func (q *Queue) Advance(n int64) error {
	target := q.now + n
	for len(q.pending) > 0 && q.pending[0].due <= target {
		if err := q.fire(); err != nil {
			return err
		}
	}
	q.now = target
	return nil
}

// Step jumps to the next pending unit and services it. It reports false
// when nothing is pending.
func (q *Queue) Step() (bool, error) {
	if len(q.pending) == 0 {
		return false, nil
	}
	return true, q.fire()
}

func (q *Queue) fire() error {
	e := q.pending[0]
	q.pending[0] = entry{}
	q.pending = q.pending[1:]
	q.now = e.due
	return e.unit.OnDue()
}

func (q *Queue) index(u Unit) int {
	for i, e := range q.pending {
		if e.unit == u {
			return i
		}
	}
	return -1
}

// InitTimer resets calibration for timer and returns the delay to arm with.
func (q *Queue) InitTimer(timer int, delay int32) int32 {
	return q.calibrator(timer).Init(delay)
}

// Calibrate returns the delay that currently corresponds to 1/tps seconds of
// host wall time for timer. Call it once per tick.
func (q *Queue) Calibrate(timer int, tps int) int32 {
	return q.calibrator(timer).Calibrate(tps)
}

func (q *Queue) calibrator(timer int) *Calibrator {
	c, ok := q.timers[timer]
	if !ok {
		c = NewCalibrator(q.clock)
		q.timers[timer] = c
	}
	return c
}
