package intr

import "testing"

func TestLines_AssertClear(t *testing.T) {
	r := NewLines()
	if r.Any() {
		t.Fatal("new registry should have no pending lines")
	}

	r.Assert(Input)
	if !r.Pending(Input) {
		t.Error("Input should be pending after Assert")
	}
	if r.Pending(Output) || r.Pending(Clock) {
		t.Error("Assert(Input) should not touch other lines")
	}

	r.Clear(Input)
	if r.Pending(Input) {
		t.Error("Input should be clear after Clear")
	}
}

func TestLines_HighestPriority(t *testing.T) {
	r := NewLines()
	r.Assert(Input)
	r.Assert(Clock)
	r.Assert(Output)

	got, ok := r.Highest()
	if !ok || got != Clock {
		t.Fatalf("Highest() = %v, %v; want clock", got, ok)
	}

	r.Acknowledge(Clock)
	got, _ = r.Highest()
	if got != Output {
		t.Errorf("Highest() after clock ack = %v, want output", got)
	}

	r.Acknowledge(Output)
	got, _ = r.Highest()
	if got != Input {
		t.Errorf("Highest() after output ack = %v, want input", got)
	}
}

func TestLines_Acknowledge(t *testing.T) {
	r := NewLines()
	if r.Acknowledge(Clock) {
		t.Error("Acknowledge on a clear line should report false")
	}
	r.Assert(Clock)
	if !r.Acknowledge(Clock) {
		t.Error("Acknowledge on a pending line should report true")
	}
	if r.Pending(Clock) {
		t.Error("Acknowledge should clear the line")
	}
}

func TestLines_ObserverSeesTransitionsOnly(t *testing.T) {
	r := NewLines()
	var events []bool
	r.Observe(func(l Level, asserted bool) {
		if l != Output {
			t.Errorf("unexpected level %v", l)
		}
		events = append(events, asserted)
	})

	r.Assert(Output)
	r.Assert(Output)
	r.Clear(Output)
	r.Clear(Output)

	if len(events) != 2 || !events[0] || events[1] {
		t.Errorf("observer events = %v, want [true false]", events)
	}
}

func TestLines_Reset(t *testing.T) {
	r := NewLines()
	r.Assert(Input)
	r.Assert(Clock)
	r.Reset()
	if r.Any() {
		t.Error("Reset should clear every line")
	}
}

func TestLevel_String(t *testing.T) {
	if Clock.String() != "clock" {
		t.Errorf("Clock.String() = %q", Clock.String())
	}
	if Level(7).String() != "level(7)" {
		t.Errorf("Level(7).String() = %q", Level(7).String())
	}
}
