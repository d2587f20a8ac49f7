package stddev

import "testing"

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"7b": Mode7B, "8B": Mode8B, "7p": Mode7P} {
		got, err := ParseMode(in)
		if err != nil {
			t.Fatalf("ParseMode(%q) error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseMode(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseMode("9b"); err == nil {
		t.Error("ParseMode(9b) should fail")
	}
}

func TestOutputConvert(t *testing.T) {
	tests := []struct {
		c    byte
		mode Mode
		want byte
		ok   bool
	}{
		{0xc1, Mode8B, 0xc1, true},
		{0xc1, Mode7B, 0x41, true},
		{0x1b, Mode7B, 0x1b, true},
		{0x07, Mode7P, 0x07, true}, // BEL
		{0x08, Mode7P, 0x08, true}, // BS
		{0x09, Mode7P, 0x09, true}, // HT
		{0x0a, Mode7P, 0x0a, true}, // LF
		{0x0d, Mode7P, 0x0d, true}, // CR
		{0x00, Mode7P, 0, false},
		{0x0c, Mode7P, 0, false},
		{0x1b, Mode7P, 0, false},
		{0x7f, Mode7P, 0, false},
		{0xff, Mode7P, 0, false},
		{' ', Mode7P, ' ', true},
	}
	for _, tt := range tests {
		got, ok := outputConvert(tt.c, tt.mode)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("outputConvert(%#x, %v) = %#x, %v; want %#x, %v", tt.c, tt.mode, got, ok, tt.want, tt.ok)
		}
	}
}

func TestInputConvert(t *testing.T) {
	if got := inputConvert(0xe1, Mode8B); got != 0xe1 {
		t.Errorf("8b: %#x", got)
	}
	if got := inputConvert(0xe1, Mode7B); got != 0x61 {
		t.Errorf("7b: %#x", got)
	}
	if got := inputConvert(0xe1, Mode7P); got != 0x61 {
		t.Errorf("7p: %#x", got)
	}
}
