package component

import "github.com/deepcore/drillship/internal/planet"

// Position is the discrete address of a tracked entity, rederived from its
// Transform every tick by PositionSystem.
type Position struct {
	Chunk planet.ChunkIndex
	Tile  planet.TileIndex
}
