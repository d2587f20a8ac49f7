package stddev

import (
	"errors"
	"fmt"

	"github.com/SmitUplenchwar2687/Tempo/internal/intr"
)

// DefaultOutputWait is the delay between TXDB write and character out.
const DefaultOutputWait = 100

// ErrStall is returned by a Printer that cannot take a character yet.
// The transmitter retries after its wait.
var ErrStall = errors.New("stddev: output stalled")

// Printer accepts console output.
type Printer interface {
	PutChar(c byte) error
}

// Output is the console transmitter.
type Output struct {
	sched Scheduler
	irq   Interrupts
	prn   Printer
	ev    *emitter

	csr    uint16
	buf    byte
	pos    uint64
	stalls uint64
	wait   int32
	mode   Mode
}

// NewOutput creates a transmitter writing to prn. A nil printer discards.
func NewOutput(s Scheduler, irq Interrupts, prn Printer) *Output {
	return &Output{
		sched: s,
		irq:   irq,
		prn:   prn,
		csr:   CSRDone,
		wait:  DefaultOutputWait,
		mode:  Mode8B,
	}
}

// SetWait sets the transmit delay.
func (o *Output) SetWait(w int32) {
	if w >= 0 {
		o.wait = w
	}
}

// SetMode selects the output conversion.
func (o *Output) SetMode(m Mode) {
	o.mode = m
}

// OnDue emits the buffered character. On backpressure it retries later
// without completing; any other printer error is returned after re-arming.
func (o *Output) OnDue() error {
	c, ok := outputConvert(o.buf, o.mode)
	if ok && o.prn != nil {
		if err := o.prn.PutChar(c); err != nil {
			o.sched.Schedule(o, o.wait)
			if errors.Is(err, ErrStall) {
				o.stalls++
				o.ev.emit(DeviceOutput, KindStall, uint32(o.buf))
				return nil
			}
			return fmt.Errorf("console output: %w", err)
		}
	}
	if ok {
		o.ev.emit(DeviceOutput, KindTransmit, uint32(c))
	} else {
		o.ev.emit(DeviceOutput, KindSuppress, uint32(o.buf))
	}
	o.csr |= CSRDone
	if o.csr&CSRIE != 0 {
		o.irq.Assert(intr.Output)
	}
	o.pos++
	return nil
}

// Reset leaves the transmitter idle and ready.
func (o *Output) Reset() {
	o.buf = 0
	o.csr = CSRDone
	o.irq.Clear(intr.Output)
	o.sched.Cancel(o)
}

// ReadCSR returns the implemented TXCS bits.
func (o *Output) ReadCSR() uint16 {
	return o.csr & ttyCSRImpl
}

// WriteCSR updates IE. Setting IE while ready requests an interrupt;
// clearing it drops one.
func (o *Output) WriteCSR(v uint16) {
	if v&CSRIE == 0 {
		o.irq.Clear(intr.Output)
	} else if o.csr&(CSRDone|CSRIE) == CSRDone {
		o.irq.Assert(intr.Output)
	}
	o.csr = o.csr&^ttyCSRRW | v&ttyCSRRW
}

// WriteBuf loads TXDB and starts transmission.
func (o *Output) WriteBuf(v uint16) {
	o.buf = byte(v)
	o.csr &^= CSRDone
	o.irq.Clear(intr.Output)
	o.sched.Schedule(o, o.wait)
}

// Ready reports whether the transmitter can take a character.
func (o *Output) Ready() bool {
	return o.csr&CSRDone != 0
}

// Pos returns the number of characters completed.
func (o *Output) Pos() uint64 {
	return o.pos
}

// Stalls returns how many times the printer pushed back.
func (o *Output) Stalls() uint64 {
	return o.stalls
}
