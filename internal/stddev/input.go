package stddev

import (
	"github.com/SmitUplenchwar2687/Tempo/internal/intr"
)

// Key is one event from the host keyboard.
type Key struct {
	Char  byte
	Break bool // line break condition instead of a character
}

// Keyboard is polled for input. Poll must not block.
type Keyboard interface {
	Poll() (Key, bool)
}

// Input is the console receiver. It has no timer of its own: each poll
// re-arms just ahead of the next clock tick.
type Input struct {
	sched Scheduler
	irq   Interrupts
	clk   *Clock
	kbd   Keyboard
	ev    *emitter

	csr  uint16
	buf  uint16
	pos  uint64
	wait int32
	mode Mode

	haltOnBreak bool
	halt        func()
}

// NewInput creates a receiver reading from kbd and coscheduled on clk.
func NewInput(s Scheduler, irq Interrupts, clk *Clock, kbd Keyboard) *Input {
	return &Input{
		sched: s,
		irq:   irq,
		clk:   clk,
		kbd:   kbd,
		mode:  Mode8B,
	}
}

// SetWait sets the poll interval. Zero polls once per clock tick.
func (in *Input) SetWait(w int32) {
	if w >= 0 {
		in.wait = w
	}
}

// SetMode selects the input conversion. 7p is treated as 7b.
func (in *Input) SetMode(m Mode) {
	in.mode = m
}

// SetHaltOnBreak makes a received break call halt.
func (in *Input) SetHaltOnBreak(enabled bool, halt func()) {
	in.haltOnBreak = enabled
	in.halt = halt
}

// OnDue re-arms the poll and takes at most one key.
func (in *Input) OnDue() error {
	in.sched.Schedule(in, in.nextDelay())
	if in.kbd == nil {
		return nil
	}
	k, ok := in.kbd.Poll()
	if !ok {
		return nil
	}
	if k.Break {
		if in.haltOnBreak && in.halt != nil {
			in.halt()
		}
		in.buf = BufErr | BufFrm | BufRbr
		in.ev.emit(DeviceInput, KindBreak, uint32(in.buf))
	} else {
		in.buf = inputConvert(k.Char, in.mode)
		in.ev.emit(DeviceInput, KindReceive, uint32(in.buf))
	}
	in.pos++
	in.csr |= CSRDone
	if in.csr&CSRIE != 0 {
		in.irq.Assert(intr.Input)
	}
	return nil
}

// nextDelay is the configured wait, shortened to land on the next clock
// tick. With no wait configured it polls once per tick.
func (in *Input) nextDelay() int32 {
	if in.wait > 0 {
		return min(in.wait, in.clk.Cosched(in.wait))
	}
	return in.clk.Cosched(in.clk.Poll())
}

// Reset empties the buffer and restarts polling.
func (in *Input) Reset() {
	in.buf = 0
	in.csr = 0
	in.irq.Clear(intr.Input)
	in.sched.Cancel(in)
	w := in.wait
	if w == 0 {
		w = in.clk.Poll()
	}
	in.sched.Schedule(in, w)
}

// ReadCSR returns the implemented RXCS bits.
func (in *Input) ReadCSR() uint16 {
	return in.csr & ttyCSRImpl
}

// WriteCSR updates IE. Setting IE while DONE is already set requests an
// interrupt; clearing it drops one.
func (in *Input) WriteCSR(v uint16) {
	if v&CSRIE == 0 {
		in.irq.Clear(intr.Input)
	} else if in.csr&(CSRDone|CSRIE) == CSRDone {
		in.irq.Assert(intr.Input)
	}
	in.csr = in.csr&^ttyCSRRW | v&ttyCSRRW
}

// ReadBuf returns RXDB and consumes it: DONE, the error bits and the
// request are cleared. A second read returns the bare character.
func (in *Input) ReadBuf() uint16 {
	v := in.buf
	in.csr &^= CSRDone
	in.buf &= 0xff
	in.irq.Clear(intr.Input)
	return v
}

// Pos returns the number of keys received.
func (in *Input) Pos() uint64 {
	return in.pos
}
