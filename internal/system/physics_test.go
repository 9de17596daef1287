package system

import (
	"math"
	"testing"
	"time"

	"github.com/deepcore/drillship/internal/component"
	"github.com/deepcore/drillship/internal/core/ecs"
	"github.com/deepcore/drillship/internal/world"
	"github.com/go-gl/mathgl/mgl64"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func spawn(ws *world.State, level float64, eng component.Engine) (ecs.EntityID, *component.FuelTank) {
	id := ws.SpawnShip(world.ShipSpec{
		Physical: component.PhysicalProperties{Mass: 10},
		Engine:   eng,
		Fuel:     component.FuelTank{Level: level, Capacity: 100},
	})
	tank, _ := ws.FuelTanks.Get(id)
	return id, tank
}

func TestDepletedFuelClampsForce(t *testing.T) {
	ws := world.NewState()
	id, tank := spawn(ws, 1, component.Engine{MaxForce: mgl64.Vec2{5, 5}, Efficiency: 1, Consumption: 1})
	NewEngineForceSystem(ws, &Axes{Right: 1}).Update(time.Second)

	dyn, _ := ws.Dynamics.Get(id)
	if got := dyn.Force.Len(); !near(got, 1) {
		t.Fatalf("applied force magnitude = %v, want 1", got)
	}
	if tank.Level != 0 {
		t.Fatalf("fuel = %v, want 0", tank.Level)
	}
}

func TestFuelIsMonotonicAndNonNegative(t *testing.T) {
	ws := world.NewState()
	_, tank := spawn(ws, 3, component.Engine{MaxForce: mgl64.Vec2{40, 60}, Efficiency: 0.7, Consumption: 0.02})
	axes := &Axes{}
	sys := NewEngineForceSystem(ws, axes)
	inputs := [][2]float64{{0, 0}, {1, 0}, {0, 1}, {-1, -1}, {0.3, -0.8}, {1, 1}, {1, 1}, {1, 1}, {-0.5, 0.5}}
	prev := tank.Level
	for i := 0; i < 60; i++ {
		in := inputs[i%len(inputs)]
		axes.Right, axes.Up = in[0], in[1]
		sys.Update(100 * time.Millisecond)
		if tank.Level > prev {
			t.Fatalf("tick %d: fuel rose from %v to %v", i, prev, tank.Level)
		}
		if tank.Level < 0 {
			t.Fatalf("tick %d: fuel negative: %v", i, tank.Level)
		}
		prev = tank.Level
	}
	if tank.Level != 0 {
		t.Fatalf("fuel = %v after sustained thrust, want 0", tank.Level)
	}
}

func TestEngineChargesExactCost(t *testing.T) {
	ws := world.NewState()
	_, tank := spawn(ws, 10, component.Engine{MaxForce: mgl64.Vec2{3, 4}, Efficiency: 0.5, Consumption: 0.1})
	NewEngineForceSystem(ws, &Axes{Right: 1, Up: 1}).Update(2 * time.Second)
	// |(3,4)| = 5; cost = 5 * 0.1 * 2 / 0.5 = 2
	if !near(tank.Level, 8) {
		t.Fatalf("fuel = %v, want 8", tank.Level)
	}
}

func TestEngineRotatesThrustIntoWorld(t *testing.T) {
	cases := []struct {
		name     string
		rotation float64
		axes     Axes
		want     mgl64.Vec2
	}{
		{"up at rest points to the sky", 0, Axes{Up: 1}, mgl64.Vec2{0, -10}},
		{"right at rest", 0, Axes{Right: 1}, mgl64.Vec2{10, 0}},
		{"quarter turn sends right downward", math.Pi / 2, Axes{Right: 1}, mgl64.Vec2{0, 10}},
		{"quarter turn sends up to the right", math.Pi / 2, Axes{Up: 1}, mgl64.Vec2{10, 0}},
	}
	for _, c := range cases {
		ws := world.NewState()
		id := ws.SpawnShip(world.ShipSpec{
			Physical: component.PhysicalProperties{Mass: 1},
			Engine:   component.Engine{MaxForce: mgl64.Vec2{10, 10}, Efficiency: 1},
			Fuel:     component.FuelTank{Level: 1},
		})
		tr, _ := ws.Transforms.Get(id)
		tr.Rotation = c.rotation
		axes := c.axes
		NewEngineForceSystem(ws, &axes).Update(time.Second)
		dyn, _ := ws.Dynamics.Get(id)
		if !near(dyn.Force.X(), c.want.X()) || !near(dyn.Force.Y(), c.want.Y()) {
			t.Errorf("%s: force = %v, want %v", c.name, dyn.Force, c.want)
		}
	}
}

func TestGravitationResetsAndWeighsFuel(t *testing.T) {
	ws := world.NewState()
	id := ws.SpawnShip(world.ShipSpec{
		Physical: component.PhysicalProperties{Mass: 10},
		Fuel:     component.FuelTank{Level: 4, WeightPerUnit: 0.5},
	})
	dyn, _ := ws.Dynamics.Get(id)
	dyn.Force = mgl64.Vec2{123, 456}
	dyn.Torque = 7

	NewGravitationSystem(ws, 2).Update(tick)
	if dyn.Force != (mgl64.Vec2{0, 24}) || dyn.Torque != 0 {
		t.Fatalf("force = %v torque = %v, want (0,24) and 0", dyn.Force, dyn.Torque)
	}
}

func TestMovementIntegratesWithDrag(t *testing.T) {
	ws := world.NewState()
	id := ws.SpawnShip(world.ShipSpec{Physical: component.PhysicalProperties{Mass: 2}})
	dyn, _ := ws.Dynamics.Get(id)
	tr, _ := ws.Transforms.Get(id)
	dyn.Force = mgl64.Vec2{10, 0}

	mv := NewMovementSystem(ws, 0)
	mv.Update(time.Second)
	// a = 5: Δx = 2.5, v = 5
	if !near(tr.Translation.X(), 2.5) || !near(dyn.Velocity.X(), 5) {
		t.Fatalf("x = %v v = %v, want 2.5 and 5", tr.Translation.X(), dyn.Velocity.X())
	}

	phys, _ := ws.Physicals.Get(id)
	phys.Mass = 1
	phys.Friction = 1
	dyn.Force = mgl64.Vec2{}
	dyn.Velocity = mgl64.Vec2{1, 0}
	tr.Translation = mgl64.Vec2{}
	mv.Update(time.Second)
	// a = -1: Δx = -0.5 + 1 = 0.5, v = 0
	if !near(tr.Translation.X(), 0.5) || !near(dyn.Velocity.X(), 0) {
		t.Fatalf("x = %v v = %v, want 0.5 and 0", tr.Translation.X(), dyn.Velocity.X())
	}
}

func TestMovementCountsFuelMass(t *testing.T) {
	ws := world.NewState()
	id := ws.SpawnShip(world.ShipSpec{
		Physical: component.PhysicalProperties{Mass: 6},
		Fuel:     component.FuelTank{Level: 4, WeightPerUnit: 1},
	})
	dyn, _ := ws.Dynamics.Get(id)
	dyn.Force = mgl64.Vec2{0, 20}
	NewMovementSystem(ws, 0).Update(time.Second)
	if !near(dyn.Velocity.Y(), 2) {
		t.Fatalf("v.y = %v, want 2 with mass 10", dyn.Velocity.Y())
	}
}

func TestMovementWrapsAroundPlanet(t *testing.T) {
	ws := world.NewState()
	id := ws.SpawnShip(world.ShipSpec{Physical: component.PhysicalProperties{Mass: 1}, Spawn: mgl64.Vec2{95, 0}})
	dyn, _ := ws.Dynamics.Get(id)
	dyn.Velocity = mgl64.Vec2{10, 0}
	NewMovementSystem(ws, 100).Update(time.Second)
	tr, _ := ws.Transforms.Get(id)
	if !near(tr.Translation.X(), 5) {
		t.Fatalf("x = %v, want 5 after wrapping", tr.Translation.X())
	}

	dyn.Velocity = mgl64.Vec2{-10, 0}
	NewMovementSystem(ws, 100).Update(time.Second)
	if !near(tr.Translation.X(), 95) {
		t.Fatalf("x = %v, want 95 after wrapping left", tr.Translation.X())
	}
}

func TestSystemsSkipIncompleteEntities(t *testing.T) {
	ws := world.NewState()
	id := ws.ECS.CreateEntity()
	ws.Dynamics.Set(id, &component.Dynamics{Force: mgl64.Vec2{1, 1}})
	ws.Transforms.Set(id, &component.Transform{})

	NewEngineForceSystem(ws, &Axes{Right: 1}).Update(tick)
	NewMovementSystem(ws, 0).Update(tick)
	tr, _ := ws.Transforms.Get(id)
	if tr.Translation != (mgl64.Vec2{}) {
		t.Fatalf("entity without PhysicalProperties moved to %v", tr.Translation)
	}
	NewGravitationSystem(ws, 9.81).Update(tick)
	dyn, _ := ws.Dynamics.Get(id)
	if dyn.Force != (mgl64.Vec2{}) {
		t.Fatalf("massless entity force = %v, want zero", dyn.Force)
	}
}
