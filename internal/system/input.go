package system

import (
	"math"
	"time"

	coresys "github.com/deepcore/drillship/internal/core/system"
)

// Axis names read by EngineForceSystem.
const (
	AxisRight = "right"
	AxisUp    = "up"
)

// InputAxes is a named-axis query returning values in [-1,1].
type InputAxes interface {
	Axis(name string) float64
}

// Controller produces the axis values for one tick. Real input binding lives
// outside the core; the headless binary drives the ship with an autopilot.
type Controller interface {
	Sample(tick uint64, dt time.Duration) (right, up float64)
}

// Axes holds the values sampled this tick. It implements InputAxes.
type Axes struct {
	Right float64
	Up    float64
}

func (a *Axes) Axis(name string) float64 {
	switch name {
	case AxisRight:
		return a.Right
	case AxisUp:
		return a.Up
	}
	return 0
}

// InputSystem samples the controller into Axes once per tick so every system
// sees the same values. Phase 0 (Input).
type InputSystem struct {
	ctrl Controller
	axes *Axes
	tick uint64
}

func NewInputSystem(ctrl Controller, axes *Axes) *InputSystem {
	return &InputSystem{ctrl: ctrl, axes: axes}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(dt time.Duration) {
	right, up := s.ctrl.Sample(s.tick, dt)
	s.axes.Right = clampAxis(right)
	s.axes.Up = clampAxis(up)
	s.tick++
}

func clampAxis(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}
