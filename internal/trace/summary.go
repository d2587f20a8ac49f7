package trace

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/SmitUplenchwar2687/Tempo/internal/stddev"
)

// Count is the number of events of one device and kind.
type Count struct {
	Device string `json:"device"`
	Kind   string `json:"kind"`
	N      int    `json:"n"`
}

// Summary aggregates a recording.
type Summary struct {
	Events int           `json:"events"`
	First  time.Time     `json:"first"`
	Last   time.Time     `json:"last"`
	Span   time.Duration `json:"span"`
	Units  int64         `json:"units"` // scheduler units covered
	Counts []Count       `json:"counts"`

	// Output is the text the console transmitted.
	Output string `json:"output"`
}

// Summarize counts events per device and kind, sorted by device then kind.
func Summarize(events []Event) Summary {
	s := Summary{Events: len(events)}
	if len(events) == 0 {
		return s
	}

	s.First, s.Last = events[0].Time, events[0].Time
	minAt, maxAt := events[0].At, events[0].At
	counts := make(map[[2]string]int)
	var out []byte
	for _, e := range events {
		if e.Time.Before(s.First) {
			s.First = e.Time
		}
		if e.Time.After(s.Last) {
			s.Last = e.Time
		}
		minAt = min(minAt, e.At)
		maxAt = max(maxAt, e.At)
		counts[[2]string{e.Device, e.Kind}]++
		if e.Device == stddev.DeviceOutput && e.Kind == stddev.KindTransmit {
			out = append(out, byte(e.Value))
		}
	}
	s.Span = s.Last.Sub(s.First)
	s.Units = maxAt - minAt
	s.Output = string(out)

	for k, n := range counts {
		s.Counts = append(s.Counts, Count{Device: k[0], Kind: k[1], N: n})
	}
	sort.Slice(s.Counts, func(i, j int) bool {
		if s.Counts[i].Device != s.Counts[j].Device {
			return s.Counts[i].Device < s.Counts[j].Device
		}
		return s.Counts[i].Kind < s.Counts[j].Kind
	})
	return s
}

// Print writes a human readable summary.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "Events:  %d\n", s.Events)
	if s.Events == 0 {
		return
	}
	fmt.Fprintf(w, "Span:    %s (%d units)\n", s.Span, s.Units)
	fmt.Fprintf(w, "\n%-6s %-12s %8s\n", "DEVICE", "KIND", "COUNT")
	for _, c := range s.Counts {
		fmt.Fprintf(w, "%-6s %-12s %8d\n", c.Device, c.Kind, c.N)
	}
	if s.Output != "" {
		fmt.Fprintf(w, "\nOutput:  %q\n", s.Output)
	}
}
