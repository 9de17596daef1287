package system

import (
	"errors"
	"slices"
	"time"

	"github.com/deepcore/drillship/internal/component"
	"github.com/deepcore/drillship/internal/core/ecs"
	"github.com/deepcore/drillship/internal/core/event"
	coresys "github.com/deepcore/drillship/internal/core/system"
	"github.com/deepcore/drillship/internal/planet"
	"github.com/deepcore/drillship/internal/world"
	"go.uber.org/zap"
)

type chunkSet map[planet.ChunkIndex]struct{}

func newChunkSet(idx []planet.ChunkIndex) chunkSet {
	s := make(chunkSet, len(idx))
	for _, c := range idx {
		s[c] = struct{}{}
	}
	return s
}

// windowState is the resident window last requested for one tracked entity.
type windowState struct {
	previous chunkSet
	current  chunkSet
}

// PositionSystem rederives Position from Transform for every tracked entity
// and turns chunk-boundary crossings into streaming requests. It never
// touches the planet's chunk map. Phase 4 (Position).
type PositionSystem struct {
	world          *world.State
	planet         *planet.Planet
	bus            *event.Bus
	renderDistance uint64
	log            *zap.Logger
	windows        map[ecs.EntityID]*windowState
}

func NewPositionSystem(ws *world.State, p *planet.Planet, bus *event.Bus, renderDistance uint64, log *zap.Logger) *PositionSystem {
	return &PositionSystem{
		world:          ws,
		planet:         p,
		bus:            bus,
		renderDistance: renderDistance,
		log:            log,
		windows:        make(map[ecs.EntityID]*windowState),
	}
}

func (s *PositionSystem) Phase() coresys.Phase { return coresys.PhasePosition }

func (s *PositionSystem) Update(_ time.Duration) {
	s.forgetDestroyed()
	ecs.Each2(s.world.Transforms, s.world.Positions, func(id ecs.EntityID, tr *component.Transform, pos *component.Position) {
		s.track(id, tr, pos)
	})
}

func (s *PositionSystem) track(id ecs.EntityID, tr *component.Transform, pos *component.Position) {
	win, seen := s.windows[id]
	if seen {
		// Cheap path: still inside the chunk we were in last tick.
		tile, err := s.planet.TileIndexAt(tr.Translation, pos.Chunk)
		if err == nil {
			pos.Tile = tile
			return
		}
		if !errors.Is(err, planet.ErrIndexOutOfBounds) {
			s.log.Warn("tile index failed", zap.Uint64("entity", uint64(id)), zap.Error(err))
			return
		}
		s.log.Debug("left chunk", zap.Uint64("entity", uint64(id)), zap.Stringer("chunk", pos.Chunk))
	}

	chunk, err := s.planet.ChunkIndexAt(tr.Translation)
	if err != nil {
		s.log.Warn("chunk index failed",
			zap.Uint64("entity", uint64(id)),
			zap.Float64("x", tr.Translation.X()), zap.Float64("y", tr.Translation.Y()),
			zap.Error(err))
		return
	}
	tile, err := s.planet.TileIndexAt(tr.Translation, chunk)
	if err != nil {
		s.log.Warn("tile index failed", zap.Uint64("entity", uint64(id)), zap.Error(err))
		return
	}
	changed := !seen || chunk != pos.Chunk
	pos.Chunk, pos.Tile = chunk, tile
	if !changed {
		return
	}

	next := newChunkSet(s.planet.Window(chunk, s.renderDistance))
	if !seen {
		win = &windowState{current: chunkSet{}}
		s.windows[id] = win
	}
	s.emitDiff(win.current, next)
	win.previous, win.current = win.current, next
}

// emitDiff requests loads for chunks entering the window and unloads for
// chunks leaving it, each in row-major order.
func (s *PositionSystem) emitDiff(prev, next chunkSet) {
	var load, unload []planet.ChunkIndex
	for c := range next {
		if _, ok := prev[c]; !ok {
			load = append(load, c)
		}
	}
	for c := range prev {
		if _, ok := next[c]; !ok {
			unload = append(unload, c)
		}
	}
	slices.SortFunc(load, planet.ChunkIndex.Compare)
	slices.SortFunc(unload, planet.ChunkIndex.Compare)
	for _, c := range load {
		event.Emit(s.bus, event.ChunkEvent{Kind: event.RequestingLoad, Index: c})
	}
	for _, c := range unload {
		event.Emit(s.bus, event.ChunkEvent{Kind: event.RequestingUnload, Index: c})
	}
}

// forgetDestroyed releases the window of entities that lost their Position.
func (s *PositionSystem) forgetDestroyed() {
	for id, win := range s.windows {
		if s.world.Positions.Has(id) {
			continue
		}
		s.emitDiff(win.current, nil)
		delete(s.windows, id)
	}
}

// Window returns the chunks currently requested for id, sorted.
func (s *PositionSystem) Window(id ecs.EntityID) []planet.ChunkIndex {
	win, ok := s.windows[id]
	if !ok {
		return nil
	}
	out := make([]planet.ChunkIndex, 0, len(win.current))
	for c := range win.current {
		out = append(out, c)
	}
	slices.SortFunc(out, planet.ChunkIndex.Compare)
	return out
}
