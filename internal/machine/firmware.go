package machine

import (
	"fmt"

	"github.com/SmitUplenchwar2687/Tempo/internal/intr"
	"github.com/SmitUplenchwar2687/Tempo/internal/stddev"
)

// firmware is a minimal interrupt-driven console monitor: it echoes what
// is typed and counts clock ticks.
type firmware struct {
	board   *stddev.Board
	pending []byte

	ticks    uint64
	received uint64
	breaks   uint64
}

func (f *firmware) boot() {
	f.board.WriteRXCS(stddev.CSRIE)
	f.board.WriteTXCS(stddev.CSRIE)
	f.board.WriteICCS(stddev.CSRIE)
	f.print(fmt.Sprintf("Tempo console, TODR %d\r\n", f.board.ReadTODR(false)))
}

func (f *firmware) print(s string) {
	f.pending = append(f.pending, s...)
	f.kick()
}

// kick starts the next character if the transmitter is idle.
func (f *firmware) kick() {
	if len(f.pending) == 0 || f.board.ReadTXCS()&stddev.CSRDone == 0 {
		return
	}
	c := f.pending[0]
	f.pending = f.pending[1:]
	f.board.WriteTXDB(uint16(c))
}

func (f *firmware) interrupt(l intr.Level) {
	switch l {
	case intr.Clock:
		f.ticks++
	case intr.Input:
		v := f.board.ReadRXDB()
		if v&stddev.BufErr != 0 {
			f.breaks++
			return
		}
		f.received++
		if c := byte(v); c == '\r' {
			f.print("\r\n")
		} else {
			f.print(string(c))
		}
	case intr.Output:
		f.kick()
	}
}
