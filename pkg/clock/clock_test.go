package clock

import (
	"errors"
	"testing"
	"time"

	internalclock "github.com/SmitUplenchwar2687/Tempo/internal/clock"
)

func TestClockImplementations(t *testing.T) {
	var _ Clock = NewRealClock()
	var _ Clock = NewVirtualClock(time.Now())
}

func TestVirtualClockAdvance(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	vc := NewVirtualClock(start)
	vc.Advance(time.Minute)

	if got := vc.Now(); !got.Equal(start.Add(time.Minute)) {
		t.Fatalf("Now() = %v, want %v", got, start.Add(time.Minute))
	}
}

func TestVirtualClockFail(t *testing.T) {
	vc := NewVirtualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	vc.Fail(true)
	if _, err := internalclock.Read(vc); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Read() error = %v, want ErrUnavailable", err)
	}
}
