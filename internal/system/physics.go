package system

import (
	"math"
	"time"

	"github.com/deepcore/drillship/internal/component"
	"github.com/deepcore/drillship/internal/core/ecs"
	coresys "github.com/deepcore/drillship/internal/core/system"
	"github.com/deepcore/drillship/internal/world"
	"github.com/go-gl/mathgl/mgl64"
)

// totalMass is the body mass plus the weight of any fuel carried.
func totalMass(ws *world.State, id ecs.EntityID, phys *component.PhysicalProperties) float64 {
	m := phys.Mass
	if tank, ok := ws.FuelTanks.Get(id); ok {
		m += tank.Level * tank.WeightPerUnit
	}
	return m
}

// GravitationSystem starts each tick's force accumulation: Force becomes the
// body's weight pointing down (+y) and Torque is cleared. Entities with
// Dynamics but no PhysicalProperties get a zero force. Phase 2 (Forces),
// registered before EngineForceSystem.
type GravitationSystem struct {
	world   *world.State
	gravity float64
}

func NewGravitationSystem(ws *world.State, gravity float64) *GravitationSystem {
	return &GravitationSystem{world: ws, gravity: gravity}
}

func (s *GravitationSystem) Phase() coresys.Phase { return coresys.PhaseForces }

func (s *GravitationSystem) Update(_ time.Duration) {
	s.world.Dynamics.Each(func(id ecs.EntityID, dyn *component.Dynamics) {
		dyn.Force = mgl64.Vec2{}
		dyn.Torque = 0
		if phys, ok := s.world.Physicals.Get(id); ok {
			dyn.Force = mgl64.Vec2{0, totalMass(s.world, id, phys) * s.gravity}
		}
	})
}

// EngineForceSystem converts input axes into fuel-limited thrust. The
// attempted local force is the axes scaled by Engine.MaxForce; burning it
// costs |F|·consumption·dt/efficiency fuel. When the tank cannot pay, the
// force is scaled down to what the remaining fuel buys and the tank is
// emptied. The local force is rotated into world space through the ship's
// Right/Up basis and added to Dynamics.Force. Phase 2 (Forces).
type EngineForceSystem struct {
	world *world.State
	input InputAxes
}

func NewEngineForceSystem(ws *world.State, input InputAxes) *EngineForceSystem {
	return &EngineForceSystem{world: ws, input: input}
}

func (s *EngineForceSystem) Phase() coresys.Phase { return coresys.PhaseForces }

func (s *EngineForceSystem) Update(dt time.Duration) {
	secs := dt.Seconds()
	if secs <= 0 {
		return
	}
	right, up := s.input.Axis(AxisRight), s.input.Axis(AxisUp)
	ecs.Each4(s.world.Transforms, s.world.Dynamics, s.world.FuelTanks, s.world.Engines,
		func(_ ecs.EntityID, tr *component.Transform, dyn *component.Dynamics, tank *component.FuelTank, eng *component.Engine) {
			local := thrust(right, up, secs, eng, tank)
			force := tr.Right().Mul(local.X()).Add(tr.Up().Mul(local.Y()))
			dyn.Force = dyn.Force.Add(force)
		})
}

// thrust returns the local-space force actually produced and debits the tank.
func thrust(right, up, secs float64, eng *component.Engine, tank *component.FuelTank) mgl64.Vec2 {
	local := mgl64.Vec2{right * eng.MaxForce.X(), up * eng.MaxForce.Y()}
	mag := local.Len()
	if mag == 0 || eng.Efficiency <= 0 || tank.Level <= 0 {
		return mgl64.Vec2{}
	}
	cost := mag * eng.Consumption * secs / eng.Efficiency
	if cost <= tank.Level {
		tank.Level -= cost
		return local
	}
	affordable := eng.Efficiency * tank.Level / (eng.Consumption * secs)
	tank.Level = 0
	return local.Mul(affordable / mag)
}

// MovementSystem integrates translation and velocity with linear drag:
// a = (F - friction·v)/mass, Δx = ½a·dt² + v·dt, v += a·dt. Mass includes
// carried fuel. Rotation and torque are carried on Dynamics but not
// integrated. With wrapWidth > 0, x is kept in [0, wrapWidth) so the ship
// circles the planet. Phase 3 (Movement).
type MovementSystem struct {
	world     *world.State
	wrapWidth float64
}

func NewMovementSystem(ws *world.State, wrapWidth float64) *MovementSystem {
	return &MovementSystem{world: ws, wrapWidth: wrapWidth}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseMovement }

func (s *MovementSystem) Update(dt time.Duration) {
	secs := dt.Seconds()
	if secs <= 0 {
		return
	}
	ecs.Each3(s.world.Transforms, s.world.Dynamics, s.world.Physicals,
		func(id ecs.EntityID, tr *component.Transform, dyn *component.Dynamics, phys *component.PhysicalProperties) {
			mass := totalMass(s.world, id, phys)
			if mass <= 0 {
				return
			}
			acc := dyn.Force.Sub(dyn.Velocity.Mul(phys.Friction)).Mul(1 / mass)
			delta := acc.Mul(0.5 * secs * secs).Add(dyn.Velocity.Mul(secs))
			tr.Translation = tr.Translation.Add(delta)
			dyn.Velocity = dyn.Velocity.Add(acc.Mul(secs))
			if s.wrapWidth > 0 {
				x := math.Mod(tr.Translation.X(), s.wrapWidth)
				if x < 0 {
					x += s.wrapWidth
				}
				tr.Translation[0] = x
			}
		})
}
