package world

import (
	"github.com/deepcore/drillship/internal/component"
	"github.com/deepcore/drillship/internal/core/ecs"
	"github.com/deepcore/drillship/internal/planet"
)

// State is the world handle: the ECS world plus one store per component
// type. Chunk building only sees it through planet.EntityStore.
// Single-goroutine access only (game loop).
type State struct {
	ECS *ecs.World

	Transforms    *ecs.PtrComponentStore[component.Transform]
	Dynamics      *ecs.PtrComponentStore[component.Dynamics]
	Physicals     *ecs.PtrComponentStore[component.PhysicalProperties]
	Engines       *ecs.PtrComponentStore[component.Engine]
	FuelTanks     *ecs.PtrComponentStore[component.FuelTank]
	Positions     *ecs.PtrComponentStore[component.Position]
	TileBases     *ecs.PtrComponentStore[component.TileBase]
	Sprites       *ecs.PtrComponentStore[component.SpriteRender]
	Flipped       *ecs.PtrComponentStore[component.Flipped]
	SessionScoped *ecs.PtrComponentStore[component.SessionScoped]
	Players       *ecs.PtrComponentStore[component.Player]
}

func NewState() *State {
	w := ecs.NewWorld()
	r := w.Registry()
	return &State{
		ECS:           w,
		Transforms:    ecs.Register[component.Transform](r),
		Dynamics:      ecs.Register[component.Dynamics](r),
		Physicals:     ecs.Register[component.PhysicalProperties](r),
		Engines:       ecs.Register[component.Engine](r),
		FuelTanks:     ecs.Register[component.FuelTank](r),
		Positions:     ecs.Register[component.Position](r),
		TileBases:     ecs.Register[component.TileBase](r),
		Sprites:       ecs.Register[component.SpriteRender](r),
		Flipped:       ecs.Register[component.Flipped](r),
		SessionScoped: ecs.Register[component.SessionScoped](r),
		Players:       ecs.Register[component.Player](r),
	}
}

// CreateTile builds a tile entity: material, sprite, placement and the
// session marker, plus Flipped when requested.
func (s *State) CreateTile(spec planet.TileSpec) ecs.EntityID {
	id := s.ECS.CreateEntity()
	s.TileBases.Set(id, &component.TileBase{Type: spec.Type})
	s.Sprites.Set(id, &component.SpriteRender{Handle: spec.Render})
	s.Transforms.Set(id, &component.Transform{Translation: spec.Translation})
	s.SessionScoped.Set(id, &component.SessionScoped{})
	if spec.Flipped {
		s.Flipped.Set(id, &component.Flipped{})
	}
	return id
}

// Delete destroys an entity immediately.
func (s *State) Delete(id ecs.EntityID) error {
	return s.ECS.Destroy(id)
}

// ClearSession queues every session-scoped entity for destruction, returning
// how many were queued. CleanupSystem flushes them.
func (s *State) ClearSession() int {
	n := 0
	s.SessionScoped.Each(func(id ecs.EntityID, _ *component.SessionScoped) {
		s.ECS.MarkForDestruction(id)
		n++
	})
	return n
}
