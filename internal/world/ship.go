package world

import (
	"github.com/deepcore/drillship/internal/component"
	"github.com/deepcore/drillship/internal/core/ecs"
	"github.com/go-gl/mathgl/mgl64"
)

// ShipSpec holds the starting state of a drill-ship.
type ShipSpec struct {
	Name     string
	Spawn    mgl64.Vec2
	Render   component.SpriteRender
	Physical component.PhysicalProperties
	Engine   component.Engine
	Fuel     component.FuelTank
}

// SpawnShip creates the player ship with every component the force,
// movement and position systems join on. Position starts at the zero index
// and is rederived from Spawn on the first tick.
func (s *State) SpawnShip(spec ShipSpec) ecs.EntityID {
	id := s.ECS.CreateEntity()
	s.Players.Set(id, &component.Player{Name: spec.Name})
	s.Transforms.Set(id, &component.Transform{Translation: spec.Spawn})
	s.Dynamics.Set(id, &component.Dynamics{})
	phys := spec.Physical
	s.Physicals.Set(id, &phys)
	eng := spec.Engine
	s.Engines.Set(id, &eng)
	fuel := spec.Fuel
	s.FuelTanks.Set(id, &fuel)
	s.Positions.Set(id, &component.Position{})
	render := spec.Render
	s.Sprites.Set(id, &render)
	s.SessionScoped.Set(id, &component.SessionScoped{})
	return id
}
