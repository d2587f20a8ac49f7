// Package stddev implements the VAX console terminal and interval clock:
// the 100 Hz tick generator, the console receiver polled in step with it,
// the console transmitter, and the processor registers that expose them.
//
// Devices run as scheduler units on a single goroutine. They never block;
// waiting is always "re-arm and return".
package stddev

import (
	"fmt"
	"strings"

	"github.com/SmitUplenchwar2687/Tempo/internal/intr"
	"github.com/SmitUplenchwar2687/Tempo/internal/sched"
)

// Control/status register bits.
const (
	CSRDone uint16 = 0x80
	CSRIE   uint16 = 0x40
)

// Receiver buffer error bits.
const (
	BufErr uint16 = 0x8000 // any error
	BufOvr uint16 = 0x4000 // overrun
	BufFrm uint16 = 0x2000 // framing error
	BufRbr uint16 = 0x0400 // received break
)

const (
	clockCSRImpl = CSRIE
	clockCSRRW   = CSRIE
	ttyCSRImpl   = CSRDone | CSRIE
	ttyCSRRW     = CSRIE
)

// Scheduler is the event queue the devices arm themselves on.
type Scheduler interface {
	Schedule(u sched.Unit, delay int32)
	Cancel(u sched.Unit) bool
	Remaining(u sched.Unit) (int32, bool)
	InitTimer(timer int, delay int32) int32
	Calibrate(timer int, tps int) int32
}

// Interrupts is the request line registry. Each device drives only its
// own level.
type Interrupts interface {
	Assert(l intr.Level)
	Clear(l intr.Level)
}

// Mode is a terminal character conversion.
type Mode int

const (
	Mode7B Mode = iota // strip to 7 bits
	Mode8B             // pass all 8 bits
	Mode7P             // 7 bits, non-printing characters suppressed (output only)
)

func (m Mode) String() string {
	switch m {
	case Mode7B:
		return "7b"
	case Mode8B:
		return "8b"
	case Mode7P:
		return "7p"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode parses "7b", "8b" or "7p".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "7b":
		return Mode7B, nil
	case "8b":
		return Mode8B, nil
	case "7p":
		return Mode7P, nil
	default:
		return 0, fmt.Errorf("invalid character mode %q, must be one of: 7b, 8b, 7p", s)
	}
}

// printable has a bit set for each control character that 7p output
// passes through: BEL, BS, HT, LF and CR.
const printable uint32 = 0x2780

func inputConvert(c byte, m Mode) uint16 {
	if m == Mode8B {
		return uint16(c)
	}
	return uint16(c & 0x7f)
}

// outputConvert returns the character to emit, or false if the mode
// suppresses it.
func outputConvert(c byte, m Mode) (byte, bool) {
	if m == Mode8B {
		return c, true
	}
	c &= 0x7f
	if m == Mode7P {
		if c == 0x7f || (c < 0x20 && printable>>c&1 == 0) {
			return 0, false
		}
	}
	return c, true
}
