package component

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform is an entity's placement in world space. Y grows with depth;
// Rotation is in radians, 0 meaning the ship's nose points up.
type Transform struct {
	Translation mgl64.Vec2
	Rotation    float64
}

// Right is the ship's local +x axis in world space.
func (t Transform) Right() mgl64.Vec2 {
	s, c := math.Sincos(t.Rotation)
	return mgl64.Vec2{c, s}
}

// Up is the ship's local +y axis in world space: (0,-1) at rotation 0, since
// world y grows downward.
func (t Transform) Up() mgl64.Vec2 {
	s, c := math.Sincos(t.Rotation)
	return mgl64.Vec2{s, -c}
}

// Dynamics accumulates forces during a tick. GravitationSystem resets Force
// and Torque; engine and other systems add to them; MovementSystem consumes.
type Dynamics struct {
	Velocity        mgl64.Vec2
	AngularVelocity float64 // carried, not integrated yet
	Force           mgl64.Vec2
	Torque          float64 // carried, not integrated yet
}

// PhysicalProperties are the body constants used by movement integration.
type PhysicalProperties struct {
	Mass     float64
	Friction float64 // linear drag coefficient
}

// Engine is a static thrust capability; only upgrades change it.
type Engine struct {
	MaxForce    mgl64.Vec2 // per local axis: X right, Y up
	Efficiency  float64    // (0,1]; higher burns less fuel per newton
	Consumption float64    // fuel per newton-second at efficiency 1
}

// FuelTank is drained by thrust and only refilled by an outside refuel.
type FuelTank struct {
	Level         float64
	Capacity      float64
	WeightPerUnit float64 // mass added per unit of fuel carried
}
