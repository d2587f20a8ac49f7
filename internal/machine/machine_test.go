package machine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/SmitUplenchwar2687/Tempo/internal/clock"
	"github.com/SmitUplenchwar2687/Tempo/internal/intr"
	"github.com/SmitUplenchwar2687/Tempo/internal/sched"
	"github.com/SmitUplenchwar2687/Tempo/internal/stddev"
	"github.com/SmitUplenchwar2687/Tempo/internal/todr"
	"github.com/SmitUplenchwar2687/Tempo/internal/trace"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type keys struct{ queue []stddev.Key }

func (k *keys) Poll() (stddev.Key, bool) {
	if len(k.queue) == 0 {
		return stddev.Key{}, false
	}
	key := k.queue[0]
	k.queue = k.queue[1:]
	return key, true
}

func (k *keys) typeString(s string) {
	for i := 0; i < len(s); i++ {
		k.queue = append(k.queue, stddev.Key{Char: s[i]})
	}
}

type printer struct {
	out []byte
	err error
}

func (p *printer) PutChar(c byte) error {
	if p.err != nil {
		return p.err
	}
	p.out = append(p.out, c)
	return nil
}

type testMachine struct {
	*Machine
	vc  *clock.VirtualClock
	kbd *keys
	prn *printer
}

func newTestMachine(cfg stddev.Config) *testMachine {
	vc := clock.NewVirtualClock(epoch)
	q := sched.NewQueue(vc)
	lines := intr.NewLines()
	t := todr.New(vc)
	t.SetLocation(time.UTC)
	kbd := &keys{}
	prn := &printer{}
	b := stddev.NewBoard(q, lines, t, kbd, prn, cfg)
	return &testMachine{
		Machine: New(q, lines, b, vc, Options{}),
		vc:      vc,
		kbd:     kbd,
		prn:     prn,
	}
}

func (m *testMachine) steps(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := m.Step(); err != nil {
			t.Fatalf("Step() %d: %v", i, err)
		}
	}
}

func TestMachine_BootPrintsBanner(t *testing.T) {
	m := newTestMachine(stddev.DefaultConfig())
	if err := m.Boot(); err != nil {
		t.Fatal(err)
	}
	// One character completes per slice.
	m.steps(t, 60)

	out := string(m.prn.out)
	if !strings.HasPrefix(out, "Tempo console, TODR ") || !strings.HasSuffix(out, "\r\n") {
		t.Errorf("banner = %q", out)
	}
}

func TestMachine_EchoesInput(t *testing.T) {
	m := newTestMachine(stddev.DefaultConfig())
	m.Boot()
	m.steps(t, 60)
	m.prn.out = nil

	m.kbd.typeString("ok\r")
	m.steps(t, 30)

	if got := string(m.prn.out); got != "ok\r\n" {
		t.Errorf("echo = %q, want %q", got, "ok\r\n")
	}
	if s := m.Snapshot(); s.Received != 3 || s.Board.RXPos != 3 {
		t.Errorf("Snapshot() = %+v", s)
	}
}

func TestMachine_CountsClockTicks(t *testing.T) {
	m := newTestMachine(stddev.DefaultConfig())
	m.Boot()
	m.steps(t, 5*stddev.DefaultClockDelay/DefaultSlice)

	s := m.Snapshot()
	if s.Ticks != 5 {
		t.Errorf("Ticks = %d, want 5", s.Ticks)
	}
	if s.Units != 5*stddev.DefaultClockDelay {
		t.Errorf("Units = %d", s.Units)
	}
}

func TestMachine_BreakHalts(t *testing.T) {
	cfg := stddev.DefaultConfig()
	cfg.HaltOnBreak = true
	m := newTestMachine(cfg)
	m.Boot()
	m.kbd.queue = append(m.kbd.queue, stddev.Key{Break: true})

	var err error
	for i := 0; i < 10 && err == nil; i++ {
		err = m.Step()
	}
	if !errors.Is(err, ErrHalted) {
		t.Fatalf("Step() error = %v, want ErrHalted", err)
	}
	if m.Snapshot().Breaks != 1 {
		t.Errorf("Breaks = %d, want 1", m.Snapshot().Breaks)
	}
}

func TestMachine_PrinterFailureStops(t *testing.T) {
	m := newTestMachine(stddev.DefaultConfig())
	broken := errors.New("gone")
	m.prn.err = broken
	m.Boot()

	var err error
	for i := 0; i < 10 && err == nil; i++ {
		err = m.Step()
	}
	if !errors.Is(err, broken) {
		t.Fatalf("Step() error = %v, want printer error", err)
	}
}

func TestMachine_ObserversSeeEvents(t *testing.T) {
	m := newTestMachine(stddev.DefaultConfig())
	rec := trace.New(nil)
	m.Observe(func(e trace.Event) { rec.Record(e) })
	m.Boot()
	m.kbd.typeString("z")
	m.steps(t, 80)

	s := trace.Summarize(rec.Events())
	if !strings.HasSuffix(s.Output, "z") {
		t.Errorf("recorded output = %q", s.Output)
	}
	var resets, asserts int
	for _, c := range s.Counts {
		if c.Device == stddev.DeviceClock && c.Kind == stddev.KindReset {
			resets = c.N
		}
		if c.Device == trace.DeviceIRQ && c.Kind == trace.KindAssert {
			asserts = c.N
		}
	}
	if resets != 1 || asserts == 0 {
		t.Errorf("resets = %d, asserts = %d", resets, asserts)
	}
}

func TestMachine_RunStopsOnCancel(t *testing.T) {
	m := newTestMachine(stddev.DefaultConfig())
	m.Boot()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := m.Run(ctx); err != nil {
		t.Fatalf("Run() = %v, want nil on cancel", err)
	}
	if m.Snapshot().Units == 0 {
		t.Error("Run() made no progress")
	}
}

func TestMachine_RunReturnsHalt(t *testing.T) {
	cfg := stddev.DefaultConfig()
	cfg.HaltOnBreak = true
	m := newTestMachine(cfg)
	m.Boot()
	m.kbd.queue = append(m.kbd.queue, stddev.Key{Break: true})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.Run(ctx); !errors.Is(err, ErrHalted) {
		t.Fatalf("Run() = %v, want ErrHalted", err)
	}
}
