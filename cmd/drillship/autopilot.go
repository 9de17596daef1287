package main

import (
	"math"
	"time"
)

// autopilot sweeps the ship left and right while easing off the vertical
// thrust, so a headless run crosses chunk boundaries in both directions and
// sinks slowly under gravity.
type autopilot struct {
	period time.Duration
}

func newAutopilot(tick time.Duration) *autopilot {
	return &autopilot{period: 400 * tick}
}

func (a *autopilot) Sample(tick uint64, dt time.Duration) (right, up float64) {
	phase := 2 * math.Pi * float64(time.Duration(tick)*dt) / float64(a.period)
	return math.Sin(phase), 0.4
}
