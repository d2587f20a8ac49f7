package stddev

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/SmitUplenchwar2687/Tempo/internal/todr"
	"github.com/SmitUplenchwar2687/Tempo/internal/toystore"
)

// Processor register numbers.
const (
	IPRICCS = 0x18
	IPRTODR = 0x1B
	IPRRXCS = 0x20
	IPRRXDB = 0x21
	IPRTXCS = 0x22
	IPRTXDB = 0x23
)

// ErrNoRegister is returned for a processor register this board does not
// implement, or an access in the wrong direction.
var ErrNoRegister = errors.New("stddev: no such processor register")

// Config holds the device settings.
type Config struct {
	TicksPerSecond int
	ClockDelay     int32
	InputWait      int32
	OutputWait     int32
	InputMode      Mode
	OutputMode     Mode
	HaltOnBreak    bool
}

// DefaultConfig returns the stock console and clock settings.
func DefaultConfig() Config {
	return Config{
		TicksPerSecond: DefaultTicksPerSecond,
		ClockDelay:     DefaultClockDelay,
		OutputWait:     DefaultOutputWait,
		InputMode:      Mode8B,
		OutputMode:     Mode8B,
	}
}

// Board wires the clock, the console receiver and transmitter, and the
// TODR onto one scheduler and interrupt registry.
type Board struct {
	Clock  *Clock
	Input  *Input
	Output *Output

	ev   *emitter
	halt bool
}

// NewBoard builds the devices. kbd and prn may be nil.
func NewBoard(s Scheduler, irq Interrupts, t *todr.TODR, kbd Keyboard, prn Printer, cfg Config) *Board {
	b := &Board{ev: &emitter{}}

	b.Clock = NewClock(s, irq, t)
	b.Clock.SetTicksPerSecond(cfg.TicksPerSecond)
	b.Clock.SetDelay(cfg.ClockDelay)
	b.Clock.ev = b.ev

	b.Input = NewInput(s, irq, b.Clock, kbd)
	b.Input.SetWait(cfg.InputWait)
	b.Input.SetMode(cfg.InputMode)
	b.Input.SetHaltOnBreak(cfg.HaltOnBreak, func() { b.halt = true })
	b.Input.ev = b.ev

	b.Output = NewOutput(s, irq, prn)
	b.Output.SetWait(cfg.OutputWait)
	b.Output.SetMode(cfg.OutputMode)
	b.Output.ev = b.ev

	return b
}

// SetObserver registers fn to receive device events.
func (b *Board) SetObserver(fn func(Event)) {
	b.ev.fn = fn
}

// Reset resets every device, clock first so the receiver can coschedule
// on it. A TODR resync failure is logged and returned; the devices are
// reset regardless.
func (b *Board) Reset(mode ResetMode) error {
	err := b.Clock.Reset(mode)
	b.Input.Reset()
	b.Output.Reset()
	b.ev.emit(DeviceClock, KindReset, uint32(mode))
	if err != nil {
		log.Printf("stddev: %s reset: %v", mode, err)
	}
	return err
}

// HaltRequested reports whether a break asked the machine to halt.
func (b *Board) HaltRequested() bool {
	return b.halt
}

// ClearHalt acknowledges a halt request.
func (b *Board) ClearHalt() {
	b.halt = false
}

// TODR returns the time-of-year register.
func (b *Board) TODR() *todr.TODR {
	return b.Clock.todr
}

// AttachTOY attaches a battery backup store to the TODR.
func (b *Board) AttachTOY(ctx context.Context, s toystore.Store) error {
	return b.Clock.Attach(ctx, s)
}

// DetachTOY flushes and detaches the battery backup store.
func (b *Board) DetachTOY(ctx context.Context) error {
	return b.Clock.Detach(ctx)
}

func (b *Board) ReadICCS() uint16 { return b.Clock.ReadCSR() }
func (b *Board) WriteICCS(v uint16) { b.Clock.WriteCSR(v) }
func (b *Board) ReadRXCS() uint16 { return b.Input.ReadCSR() }
func (b *Board) WriteRXCS(v uint16) { b.Input.WriteCSR(v) }
func (b *Board) ReadRXDB() uint16 { return b.Input.ReadBuf() }
func (b *Board) ReadTXCS() uint16 { return b.Output.ReadCSR() }
func (b *Board) WriteTXCS(v uint16) { b.Output.WriteCSR(v) }
func (b *Board) WriteTXDB(v uint16) { b.Output.WriteBuf(v) }
func (b *Board) ReadTODR(diag bool) uint32 { return b.TODR().Read(diag) }

// WriteTODR sets the time-of-year register.
func (b *Board) WriteTODR(v uint32) {
	b.TODR().Write(v)
	b.ev.emit(DeviceTODR, KindWrite, v)
}

// ReadIPR reads processor register n. diag is passed through to TODR
// reads.
func (b *Board) ReadIPR(n int, diag bool) (uint32, error) {
	switch n {
	case IPRICCS:
		return uint32(b.ReadICCS()), nil
	case IPRTODR:
		return b.ReadTODR(diag), nil
	case IPRRXCS:
		return uint32(b.ReadRXCS()), nil
	case IPRRXDB:
		return uint32(b.ReadRXDB()), nil
	case IPRTXCS:
		return uint32(b.ReadTXCS()), nil
	default:
		return 0, fmt.Errorf("%w: read %#x", ErrNoRegister, n)
	}
}

// WriteIPR writes processor register n.
func (b *Board) WriteIPR(n int, v uint32) error {
	switch n {
	case IPRICCS:
		b.WriteICCS(uint16(v))
	case IPRTODR:
		b.WriteTODR(v)
	case IPRRXCS:
		b.WriteRXCS(uint16(v))
	case IPRTXCS:
		b.WriteTXCS(uint16(v))
	case IPRTXDB:
		b.WriteTXDB(uint16(v))
	default:
		return fmt.Errorf("%w: write %#x", ErrNoRegister, n)
	}
	return nil
}

// State is a snapshot of the register file.
type State struct {
	ICCS        uint16 `json:"iccs"`
	RXCS        uint16 `json:"rxcs"`
	RXBuf       uint16 `json:"rxbuf"`
	TXCS        uint16 `json:"txcs"`
	TXBuf       uint8  `json:"txbuf"`
	TODR        uint32 `json:"todr"`
	BatteryLow  bool   `json:"battery_low"`
	TOYAttached bool   `json:"toy_attached"`
	TOYEpoch    string `json:"toy_epoch"`
	Poll        int32  `json:"poll"`
	RXPos       uint64 `json:"rx_pos"`
	TXPos       uint64 `json:"tx_pos"`
	TXStalls    uint64 `json:"tx_stalls"`
	Halt        bool   `json:"halt"`
}

// State returns a snapshot without side effects: RXDB is not consumed
// and the TODR is sampled raw.
func (b *Board) State() State {
	t := b.TODR()
	return State{
		ICCS:        b.Clock.ReadCSR(),
		RXCS:        b.Input.ReadCSR(),
		RXBuf:       b.Input.buf,
		TXCS:        b.Output.ReadCSR(),
		TXBuf:       b.Output.buf,
		TODR:        t.Register(),
		BatteryLow:  t.BatteryLow(),
		TOYAttached: t.Attached(),
		TOYEpoch:    t.Record().String(),
		Poll:        b.Clock.Poll(),
		RXPos:       b.Input.Pos(),
		TXPos:       b.Output.Pos(),
		TXStalls:    b.Output.Stalls(),
		Halt:        b.halt,
	}
}
