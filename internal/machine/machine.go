// Package machine runs the console and clock devices on a stand-in CPU.
//
// The loop lets the scheduler run a slice of units, takes pending
// interrupts highest priority first, and sleeps briefly when the guest is
// idle so that timer calibration sees a realistic instruction rate.
package machine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/SmitUplenchwar2687/Tempo/internal/clock"
	"github.com/SmitUplenchwar2687/Tempo/internal/intr"
	"github.com/SmitUplenchwar2687/Tempo/internal/sched"
	"github.com/SmitUplenchwar2687/Tempo/internal/stddev"
	"github.com/SmitUplenchwar2687/Tempo/internal/trace"
)

const (
	DefaultSlice = 1000
	DefaultIdle  = time.Millisecond
)

// ErrHalted is returned by Run when a console break halts the machine.
var ErrHalted = errors.New("machine: halted by console break")

// Options configures the run loop.
type Options struct {
	// Slice is the number of scheduler units run between interrupt checks.
	Slice int64
	// Idle is how long to sleep when no interrupt is pending.
	Idle time.Duration
}

// Snapshot is the machine state published for observers.
type Snapshot struct {
	Board    stddev.State `json:"board"`
	Units    int64        `json:"units"`
	Ticks    uint64       `json:"ticks"`
	Received uint64       `json:"received"`
	Breaks   uint64       `json:"breaks"`
	Pending  int          `json:"pending_output"`
	Updated  time.Time    `json:"updated"`
}

// Machine owns the scheduler loop. Only Snapshot and Observe may be called
// from other goroutines.
type Machine struct {
	queue *sched.Queue
	lines *intr.Lines
	board *stddev.Board
	clock clock.Clock
	fw    *firmware

	slice int64
	idle  time.Duration

	obsMu     sync.RWMutex
	observers []func(trace.Event)

	mu   sync.RWMutex
	snap Snapshot
}

// New creates a machine around an assembled board.
func New(q *sched.Queue, lines *intr.Lines, b *stddev.Board, c clock.Clock, opts Options) *Machine {
	if opts.Slice <= 0 {
		opts.Slice = DefaultSlice
	}
	if opts.Idle < 0 {
		opts.Idle = 0
	}
	m := &Machine{
		queue: q,
		lines: lines,
		board: b,
		clock: c,
		fw:    &firmware{board: b},
		slice: opts.Slice,
		idle:  opts.Idle,
	}
	b.SetObserver(func(e stddev.Event) {
		m.notify(trace.FromDevice(e, m.clock.Now(), m.queue.Now()))
	})
	lines.Observe(func(l intr.Level, asserted bool) {
		m.notify(trace.FromLine(l, asserted, m.clock.Now(), m.queue.Now()))
	})
	return m
}

// Observe registers fn to receive every device and interrupt event. fn
// runs on the machine goroutine and must not block.
func (m *Machine) Observe(fn func(trace.Event)) {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()
	m.observers = append(m.observers, fn)
}

func (m *Machine) notify(e trace.Event) {
	m.obsMu.RLock()
	defer m.obsMu.RUnlock()
	for _, fn := range m.observers {
		fn(e)
	}
}

// Boot powers up the board and starts the firmware. A TODR resync failure
// is returned but the machine is still usable.
func (m *Machine) Boot() error {
	m.lines.Reset()
	err := m.board.Reset(stddev.ResetPowerUp)
	m.fw.boot()
	m.publish()
	return err
}

// Step runs one slice and services the interrupts it raised.
func (m *Machine) Step() error {
	if err := m.queue.Advance(m.slice); err != nil {
		return err
	}
	for {
		l, ok := m.lines.Highest()
		if !ok {
			break
		}
		m.lines.Acknowledge(l)
		m.fw.interrupt(l)
	}
	m.publish()
	if m.board.HaltRequested() {
		return ErrHalted
	}
	return nil
}

// Run steps until ctx is cancelled, the console halts the machine, or a
// device reports an error.
func (m *Machine) Run(ctx context.Context) error {
	var timer *time.Timer
	if m.idle > 0 {
		timer = time.NewTimer(m.idle)
		defer timer.Stop()
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := m.Step(); err != nil {
			return err
		}
		if timer == nil || !m.idleNow() {
			continue
		}

		timer.Reset(m.idle)
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
	}
}

// idleNow reports whether the firmware is waiting for input.
func (m *Machine) idleNow() bool {
	return len(m.fw.pending) == 0 && m.board.Output.Ready() && !m.lines.Any()
}

func (m *Machine) publish() {
	s := Snapshot{
		Board:    m.board.State(),
		Units:    m.queue.Now(),
		Ticks:    m.fw.ticks,
		Received: m.fw.received,
		Breaks:   m.fw.breaks,
		Pending:  len(m.fw.pending),
		Updated:  m.clock.Now(),
	}
	m.mu.Lock()
	m.snap = s
	m.mu.Unlock()
}

// Snapshot returns the state as of the last completed step.
func (m *Machine) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

// Board returns the device board.
func (m *Machine) Board() *stddev.Board {
	return m.board
}
