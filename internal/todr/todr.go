// Package todr emulates the VAX time-of-year register.
//
// The register counts 10 ms ticks from an epoch. With no battery backup
// attached the epoch is chosen at power-up so the guest sees a plausible
// time of year. With a TOY store attached the epoch persists across
// sessions, like a real battery-backed clock.
package todr

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/SmitUplenchwar2687/Tempo/internal/clock"
	"github.com/SmitUplenchwar2687/Tempo/internal/toystore"
)

const (
	// TicksPerSecond is the register resolution.
	TicksPerSecond = 100

	// MaxSeconds is the longest span the 32-bit register can count in
	// 10 ms ticks before wrapping.
	MaxSeconds = 0x40000000 / 25

	// DefaultBias is added to the seconds-since-January-1 value when no
	// store is attached. Guests that find it assume the year is current.
	DefaultBias = 0x10000000

	tick        = time.Second / TicksPerSecond
	saveTimeout = 5 * time.Second
)

// ErrResync is returned when power-up resynchronisation could not read the
// host clock. The register is left unchanged.
var ErrResync = errors.New("todr: resync failed")

// TODR is the time-of-year register. Not safe for concurrent use.
type TODR struct {
	clock clock.Clock
	loc   *time.Location

	reg  uint32
	blow bool // battery low: set until the first non-zero write
	rec  toystore.Record

	store toystore.Store
}

// New creates a stopped register with the battery low.
func New(c clock.Clock) *TODR {
	return &TODR{
		clock: c,
		loc:   time.Local,
		blow:  true,
	}
}

// SetLocation sets the zone used for the unattached power-up value.
func (t *TODR) SetLocation(loc *time.Location) {
	if loc == nil {
		loc = time.Local
	}
	t.loc = loc
}

// Read returns the register as the guest sees it.
//
// diag is set when the caller runs console diagnostics, which expect the
// raw counting register rather than wall time.
func (t *TODR) Read(diag bool) uint32 {
	if diag || t.blow || t.reg == 0 {
		return t.reg
	}
	now, err := clock.Read(t.clock)
	if err != nil {
		return t.reg
	}
	return t.ticksAt(now)
}

// ticksAt converts now into register ticks since the epoch, stopping the
// register if the span no longer fits.
func (t *TODR) ticksAt(now time.Time) uint32 {
	elapsed := now.Sub(t.rec.Time())
	if elapsed < 0 {
		return 0
	}
	secs := int64(elapsed / time.Second)
	if secs >= MaxSeconds {
		t.reg = 0
		return 0
	}
	frac := elapsed % time.Second
	return uint32(secs*TicksPerSecond + int64(frac/tick))
}

// Write sets the register to v and moves the epoch so that reads continue
// from v. If the host clock cannot be read nothing changes.
func (t *TODR) Write(v uint32) {
	now, err := clock.Read(t.clock)
	if err != nil {
		log.Printf("todr: write %d ignored: %v", v, err)
		return
	}
	offset := time.Duration(v/TicksPerSecond)*time.Second + time.Duration(v%TicksPerSecond)*tick
	t.rec = toystore.RecordAt(now.Add(-offset))
	t.reg = v
	if v != 0 {
		t.blow = false
	}
	t.save()
}

// Tick advances a running register by one. The clock device calls it on
// every 100 Hz tick.
func (t *TODR) Tick() {
	if !t.blow && t.reg != 0 {
		t.reg++
	}
}

// Resync brings the register in line with the host at power-up.
func (t *TODR) Resync() error {
	if t.store != nil {
		if t.rec.IsZero() {
			t.Write(0)
			return nil
		}
		if t.reg == 0 {
			t.resume()
		}
		return nil
	}

	now, err := clock.Read(t.clock)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrResync, err)
	}
	t.Write(SinceNewYear(now.In(t.loc))*TicksPerSecond + DefaultBias)
	return nil
}

// resume restarts a stopped register from a persisted epoch, so time set
// in an earlier session keeps counting.
func (t *TODR) resume() {
	now, err := clock.Read(t.clock)
	if err != nil {
		return
	}
	v := t.ticksAt(now)
	if v == 0 {
		return
	}
	t.reg = v
	t.blow = false
}

// SinceNewYear returns the seconds elapsed since midnight on January 1 in
// the zone of now.
func SinceNewYear(now time.Time) uint32 {
	yday := now.YearDay() - 1
	return uint32((((yday*24)+now.Hour())*60+now.Minute())*60 + now.Second())
}

// Attach loads the TOY record from s and switches to battery-backed mode.
// On failure the register stays unattached and keeps counting from its
// current epoch.
func (t *TODR) Attach(ctx context.Context, s toystore.Store) error {
	if t.store != nil {
		if err := t.Detach(ctx); err != nil {
			return err
		}
	}
	rec, err := s.Load(ctx)
	if err != nil {
		_ = s.Close()
		return fmt.Errorf("attaching %s: %w", s.Name(), err)
	}
	t.rec = rec
	t.store = s
	log.Printf("todr: attached to %s (epoch %s)", s.Name(), rec)
	return nil
}

// Detach flushes the record and closes the store.
func (t *TODR) Detach(ctx context.Context) error {
	if t.store == nil {
		return nil
	}
	s := t.store
	t.store = nil

	saveErr := s.Save(ctx, t.rec)
	closeErr := s.Close()
	log.Printf("todr: detached from %s", s.Name())
	if err := errors.Join(saveErr, closeErr); err != nil {
		return fmt.Errorf("detaching %s: %w", s.Name(), err)
	}
	return nil
}

func (t *TODR) save() {
	if t.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := t.store.Save(ctx, t.rec); err != nil {
		log.Printf("todr: saving to %s: %v", t.store.Name(), err)
	}
}

// Attached reports whether a TOY store is attached.
func (t *TODR) Attached() bool {
	return t.store != nil
}

// Store returns the attached store, or nil.
func (t *TODR) Store() toystore.Store {
	return t.store
}

// Record returns the in-memory TOY record.
func (t *TODR) Record() toystore.Record {
	return t.rec
}

// Register returns the raw register without consulting wall time.
func (t *TODR) Register() uint32 {
	return t.reg
}

// BatteryLow reports whether the register was never set to a non-zero value.
func (t *TODR) BatteryLow() bool {
	return t.blow
}

// SetRegister restores saved register state without touching the epoch.
func (t *TODR) SetRegister(v uint32, batteryLow bool) {
	t.reg = v
	t.blow = batteryLow
}
