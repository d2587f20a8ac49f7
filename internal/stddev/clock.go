package stddev

import (
	"context"
	"fmt"

	"github.com/SmitUplenchwar2687/Tempo/internal/intr"
	"github.com/SmitUplenchwar2687/Tempo/internal/todr"
	"github.com/SmitUplenchwar2687/Tempo/internal/toystore"
)

const (
	DefaultTicksPerSecond = 100
	DefaultClockDelay     = 5000

	// TimerClock is the calibration timer id of the interval clock.
	TimerClock = 0

	// muxMultiplier scales the tick delay into the multiplexer poll.
	muxMultiplier = 1
)

// ResetMode selects how much state a reset reinitialises.
type ResetMode int

const (
	// ResetPowerUp restarts timing and resynchronises the TODR.
	ResetPowerUp ResetMode = iota
	// ResetSystem restarts timing but leaves the TODR alone.
	ResetSystem
	// ResetIO is the bus reset a running guest issues; timers keep running.
	ResetIO
)

func (m ResetMode) String() string {
	switch m {
	case ResetPowerUp:
		return "power-up"
	case ResetSystem:
		return "system"
	case ResetIO:
		return "io"
	default:
		return fmt.Sprintf("reset(%d)", int(m))
	}
}

// Clock is the 100 Hz interval timer. Every tick it recalibrates against
// host wall time and publishes the new delay for pollers that
// coschedule on it.
type Clock struct {
	sched Scheduler
	irq   Interrupts
	todr  *todr.TODR
	ev    *emitter

	csr     uint16
	delay   int32 // initial delay per tick
	tps     int
	poll    int32
	muxPoll int32
	synced  bool
}

// NewClock creates a stopped clock driving t.
func NewClock(s Scheduler, irq Interrupts, t *todr.TODR) *Clock {
	return &Clock{
		sched: s,
		irq:   irq,
		todr:  t,
		delay: DefaultClockDelay,
		tps:   DefaultTicksPerSecond,
		poll:  DefaultClockDelay,
	}
}

// SetTicksPerSecond changes the tick rate. Values below 1 are ignored.
func (c *Clock) SetTicksPerSecond(tps int) {
	if tps > 0 {
		c.tps = tps
	}
}

// SetDelay sets the delay the timer starts from after a reset.
func (c *Clock) SetDelay(d int32) {
	if d > 0 {
		c.delay = d
	}
}

// OnDue services one tick.
func (c *Clock) OnDue() error {
	if c.csr&CSRIE != 0 {
		c.irq.Assert(intr.Clock)
	}
	t := c.sched.Calibrate(TimerClock, c.tps)
	c.sched.Schedule(c, t)
	if t != c.poll {
		c.ev.emit(DeviceClock, KindRecalibrate, uint32(t))
	}
	c.publish(t)
	c.todr.Tick()
	return nil
}

func (c *Clock) publish(t int32) {
	c.poll = t
	c.muxPoll = t * muxMultiplier
}

// Poll returns the current delay per tick.
func (c *Clock) Poll() int32 {
	return c.poll
}

// MuxPoll returns the delay terminal multiplexers poll at.
func (c *Clock) MuxPoll() int32 {
	return c.muxPoll
}

// Cosched returns how long a poller should wait to land on the next tick,
// or wait if the clock is not armed. The poller is queued behind the clock
// at that instant, so it always runs after the tick has re-armed.
func (c *Clock) Cosched(wait int32) int32 {
	if r, ok := c.sched.Remaining(c); ok {
		return r
	}
	return wait
}

// Reset clears the register and, unless mode is ResetIO, restarts the
// timer. The first reset, and every power-up, resynchronises the TODR; a
// failure there is returned but leaves the clock running.
func (c *Clock) Reset(mode ResetMode) error {
	c.csr = 0
	c.irq.Clear(intr.Clock)
	if mode != ResetIO {
		t := c.sched.InitTimer(TimerClock, c.delay)
		c.sched.Cancel(c)
		c.sched.Schedule(c, t)
		c.publish(t)
	}
	if mode == ResetPowerUp || !c.synced {
		c.synced = true
		if err := c.todr.Resync(); err != nil {
			return err
		}
	}
	return nil
}

// ReadCSR returns the implemented ICCS bits.
func (c *Clock) ReadCSR() uint16 {
	return c.csr & clockCSRImpl
}

// WriteCSR updates the writable ICCS bits. Clearing IE drops a pending
// request.
func (c *Clock) WriteCSR(v uint16) {
	if v&CSRIE == 0 {
		c.irq.Clear(intr.Clock)
	}
	c.csr = c.csr&^clockCSRRW | v&clockCSRRW
}

// Attach connects the TODR to a TOY store.
func (c *Clock) Attach(ctx context.Context, s toystore.Store) error {
	return c.todr.Attach(ctx, s)
}

// Detach disconnects the TOY store and cancels the pending tick. The next
// reset re-arms the clock.
func (c *Clock) Detach(ctx context.Context) error {
	c.sched.Cancel(c)
	return c.todr.Detach(ctx)
}

// Armed reports whether a tick is pending.
func (c *Clock) Armed() bool {
	_, ok := c.sched.Remaining(c)
	return ok
}

// TODR returns the time-of-year register the clock drives.
func (c *Clock) TODR() *todr.TODR {
	return c.todr
}
