package stddev

import (
	"time"

	"github.com/SmitUplenchwar2687/Tempo/internal/clock"
	"github.com/SmitUplenchwar2687/Tempo/internal/intr"
	"github.com/SmitUplenchwar2687/Tempo/internal/sched"
	"github.com/SmitUplenchwar2687/Tempo/internal/todr"
)

var epoch = time.Date(2024, 3, 15, 13, 45, 30, 0, time.UTC)

type fakeKeyboard struct {
	keys  []Key
	polls int
}

func (k *fakeKeyboard) Poll() (Key, bool) {
	k.polls++
	if len(k.keys) == 0 {
		return Key{}, false
	}
	key := k.keys[0]
	k.keys = k.keys[1:]
	return key, true
}

func (k *fakeKeyboard) typeString(s string) {
	for i := 0; i < len(s); i++ {
		k.keys = append(k.keys, Key{Char: s[i]})
	}
}

type fakePrinter struct {
	out   []byte
	stall int
	err   error
}

func (p *fakePrinter) PutChar(c byte) error {
	if p.err != nil {
		return p.err
	}
	if p.stall > 0 {
		p.stall--
		return ErrStall
	}
	p.out = append(p.out, c)
	return nil
}

// rig is a board on a virtual host clock, with a count of every interrupt
// line assertion.
type rig struct {
	vc      *clock.VirtualClock
	q       *sched.Queue
	lines   *intr.Lines
	todr    *todr.TODR
	kbd     *fakeKeyboard
	prn     *fakePrinter
	board   *Board
	asserts map[intr.Level]int
	events  []Event
}

func newRig(cfg Config) *rig {
	r := &rig{
		vc:      clock.NewVirtualClock(epoch),
		lines:   intr.NewLines(),
		kbd:     &fakeKeyboard{},
		prn:     &fakePrinter{},
		asserts: make(map[intr.Level]int),
	}
	r.q = sched.NewQueue(r.vc)
	r.todr = todr.New(r.vc)
	r.todr.SetLocation(time.UTC)
	r.lines.Observe(func(l intr.Level, asserted bool) {
		if asserted {
			r.asserts[l]++
		}
	})
	r.board = NewBoard(r.q, r.lines, r.todr, r.kbd, r.prn, cfg)
	r.board.SetObserver(func(e Event) {
		r.events = append(r.events, e)
	})
	return r
}

func (r *rig) advance(n int64) error {
	return r.q.Advance(n)
}

func (r *rig) count(device, kind string) int {
	n := 0
	for _, e := range r.events {
		if e.Device == device && e.Kind == kind {
			n++
		}
	}
	return n
}
