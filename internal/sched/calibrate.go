package sched

import (
	"math"
	"time"

	"github.com/SmitUplenchwar2687/Tempo/internal/clock"
)

const (
	// maxDrift bounds how far one calibration may pull the tick rate.
	maxDrift = 500 * time.Millisecond
	// maxGap is the longest host pause treated as ordinary jitter; longer
	// gaps (suspend, debugger stop) re-base without rescaling.
	maxGap = 30 * time.Second
	// minInterval is the shortest target interval for one virtual second.
	minInterval = time.Millisecond
)

// Calibrator keeps a periodic timer in step with host wall time.
//
// Every tps ticks it compares one virtual second against the wall time that
// actually passed and rescales the per-tick delay, so the long-run tick rate
// tracks the wall clock even though individual ticks drift.
type Calibrator struct {
	clock clock.Clock

	ticks   int
	based   int32 // delay per tick at the measured instruction rate
	currd   int32 // delay handed out for the next tick
	initd   int32
	rtime   time.Time // wall time at the last calibration
	vtime   time.Time // virtual time, one second per tps ticks
	elapsed int64     // virtual seconds since Init
}

// NewCalibrator creates a calibrator reading wall time from c.
func NewCalibrator(c clock.Clock) *Calibrator {
	return &Calibrator{clock: c}
}

// Init restarts calibration from delay and returns the delay to arm with.
func (c *Calibrator) Init(delay int32) int32 {
	if delay <= 0 {
		delay = 1
	}
	c.ticks = 0
	c.elapsed = 0
	c.based = delay
	c.currd = delay
	c.initd = delay
	now := c.clock.Now()
	c.rtime = now
	c.vtime = now
	return delay
}

// Calibrate is called once per tick and returns the delay for the next one.
func (c *Calibrator) Calibrate(tps int) int32 {
	if c.initd == 0 {
		c.Init(1)
	}
	if tps <= 0 {
		return c.currd
	}
	c.ticks++
	if c.ticks < tps {
		return c.currd
	}
	c.ticks = 0
	c.elapsed++

	now, err := clock.Read(c.clock)
	if err != nil {
		return c.currd
	}
	wall := now.Sub(c.rtime)
	c.rtime = now
	if wall <= 0 || wall > maxGap {
		c.vtime = now
		return c.currd
	}

	c.vtime = c.vtime.Add(time.Second)
	ahead := c.vtime.Sub(now)
	if ahead > maxDrift {
		ahead = maxDrift
	} else if ahead < -maxDrift {
		ahead = -maxDrift
	}
	next := time.Second + ahead
	if next < minInterval {
		next = minInterval
	}

	// The last second ran at currd; rescale that to one wall second, then
	// apply the drift correction once.
	c.based = scale(c.currd, time.Second, wall)
	c.currd = scale(c.based, next, time.Second)
	return c.currd
}

// Current returns the delay most recently handed out.
func (c *Calibrator) Current() int32 {
	return c.currd
}

// Elapsed returns the number of virtual seconds counted since Init.
func (c *Calibrator) Elapsed() int64 {
	return c.elapsed
}

func scale(v int32, num, den time.Duration) int32 {
	r := float64(v) * float64(num) / float64(den)
	if r < 1 {
		return 1
	}
	if r > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(r)
}
