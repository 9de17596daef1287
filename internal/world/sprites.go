package world

import (
	"github.com/deepcore/drillship/internal/data"
	"github.com/deepcore/drillship/internal/planet"
)

// TileCategory is the sprite-table category of terrain tiles.
const TileCategory = "tile"

// SpriteLookup adapts the YAML sprite table to planet.RenderLookup.
type SpriteLookup struct {
	Table *data.SpriteTable
}

func (l SpriteLookup) TileRender(t planet.TileType) (planet.RenderHandle, bool) {
	return l.Render(TileCategory, t.String())
}

// Render resolves any (category, type) pair, e.g. ("ship", "Drill").
func (l SpriteLookup) Render(category, typ string) (planet.RenderHandle, bool) {
	if l.Table == nil {
		return planet.RenderHandle{}, false
	}
	e := l.Table.Lookup(data.SpriteKey{Category: category, Type: typ})
	if e == nil {
		return planet.RenderHandle{}, false
	}
	return planet.RenderHandle{Sheet: e.Sheet, Frame: e.Frame}, true
}
