package component

import "github.com/deepcore/drillship/internal/planet"

// TileBase tags a tile entity with its material.
type TileBase struct {
	Type planet.TileType
}

// SpriteRender is the sprite handle an external renderer draws.
type SpriteRender struct {
	Handle planet.RenderHandle
}

// Flipped mirrors the sprite horizontally.
type Flipped struct{}

// SessionScoped marks entities destroyed at session teardown.
type SessionScoped struct{}

// Player marks the drill-ship controlled by input.
type Player struct {
	Name string
}
