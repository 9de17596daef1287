package planet

import (
	"fmt"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// Dim is a (rows, cols) extent, counted in chunks for a planet and in tiles
// for a chunk.
type Dim struct {
	Row uint64
	Col uint64
}

// Area returns Row*Col.
func (d Dim) Area() uint64 { return d.Row * d.Col }

// TileSize is the world-space extent of one tile.
type TileSize struct {
	Width  float64
	Height float64
}

// ChunkIndex addresses a chunk within the planet. Rows grow with depth;
// columns wrap around the planet.
type ChunkIndex struct {
	Row uint64
	Col uint64
}

func (c ChunkIndex) String() string { return fmt.Sprintf("(%d,%d)", c.Row, c.Col) }

// Less orders chunk indices row-major.
func (c ChunkIndex) Less(o ChunkIndex) bool {
	if c.Row != o.Row {
		return c.Row < o.Row
	}
	return c.Col < o.Col
}

// Compare is Less as a three-way result, for slices.SortFunc.
func (c ChunkIndex) Compare(o ChunkIndex) int {
	switch {
	case c.Less(o):
		return -1
	case o.Less(c):
		return 1
	}
	return 0
}

// TileIndex addresses a tile inside a chunk. It never wraps.
type TileIndex struct {
	Row uint64
	Col uint64
}

func (t TileIndex) String() string { return fmt.Sprintf("(%d,%d)", t.Row, t.Col) }

// Less orders tile indices row-major.
func (t TileIndex) Less(o TileIndex) bool {
	if t.Row != o.Row {
		return t.Row < o.Row
	}
	return t.Col < o.Col
}

// Compare is Less as a three-way result, for slices.SortFunc.
func (t TileIndex) Compare(o TileIndex) int {
	switch {
	case t.Less(o):
		return -1
	case o.Less(t):
		return 1
	}
	return 0
}

// linear is the row-major slot of t inside a chunk of dim.
func (t TileIndex) linear(dim Dim) int {
	return int(t.Row*dim.Col + t.Col)
}

func tileAt(i int, dim Dim) TileIndex {
	return TileIndex{Row: uint64(i) / dim.Col, Col: uint64(i) % dim.Col}
}

// ClampChunkIndex validates the row and wraps the column.
func ClampChunkIndex(idx ChunkIndex, planetDim Dim) (ChunkIndex, error) {
	if idx.Row >= planetDim.Row {
		return idx, fmt.Errorf("chunk row %d beyond planet depth %d: %w", idx.Row, planetDim.Row, ErrIndexOutOfBounds)
	}
	if planetDim.Col == 0 {
		return idx, fmt.Errorf("planet has no columns: %w", ErrIndexOutOfBounds)
	}
	idx.Col %= planetDim.Col
	return idx, nil
}

// ChunkIndexFromPosition maps a world position to the chunk containing it.
func ChunkIndexFromPosition(pos mgl64.Vec2, ts TileSize, chunkDim, planetDim Dim) (ChunkIndex, error) {
	if pos.X() < 0 || pos.Y() < 0 {
		return ChunkIndex{}, fmt.Errorf("position (%.2f,%.2f) left of origin or above sky: %w", pos.X(), pos.Y(), ErrIndexOutOfBounds)
	}
	chunkWidth := float64(chunkDim.Col) * ts.Width
	chunkHeight := float64(chunkDim.Row) * ts.Height
	idx := ChunkIndex{
		Row: uint64(math.Floor(pos.Y() / chunkHeight)),
		Col: uint64(math.Floor(pos.X() / chunkWidth)),
	}
	return ClampChunkIndex(idx, planetDim)
}

// TileIndexFromPosition maps a world position to a tile of chunk. Positions
// past the planet's right edge are wrapped first, so the seam behaves like any
// other chunk boundary. A position outside chunk yields ErrIndexOutOfBounds.
func TileIndexFromPosition(pos mgl64.Vec2, chunk ChunkIndex, ts TileSize, chunkDim, planetDim Dim) (TileIndex, error) {
	x, y := pos.X(), pos.Y()
	if worldWidth := float64(planetDim.Col*chunkDim.Col) * ts.Width; x >= worldWidth && worldWidth > 0 {
		x = math.Mod(x, worldWidth)
	}
	origin := ChunkOrigin(chunk, ts, chunkDim)
	lx, ly := x-origin.X(), y-origin.Y()
	if lx < 0 || ly < 0 {
		return TileIndex{}, fmt.Errorf("position before chunk %s: %w", chunk, ErrIndexOutOfBounds)
	}
	t := TileIndex{
		Row: uint64(math.Floor(ly / ts.Height)),
		Col: uint64(math.Floor(lx / ts.Width)),
	}
	if t.Row >= chunkDim.Row || t.Col >= chunkDim.Col {
		return TileIndex{}, fmt.Errorf("tile %s past chunk %s: %w", t, chunk, ErrIndexOutOfBounds)
	}
	return t, nil
}

// ChunkOrigin is the world position of a chunk's first tile.
func ChunkOrigin(chunk ChunkIndex, ts TileSize, chunkDim Dim) mgl64.Vec2 {
	return mgl64.Vec2{
		float64(chunk.Col*chunkDim.Col) * ts.Width,
		float64(chunk.Row*chunkDim.Row) * ts.Height,
	}
}

// TileOrigin is the world position a tile entity is placed at.
func TileOrigin(chunk ChunkIndex, tile TileIndex, ts TileSize, chunkDim Dim) mgl64.Vec2 {
	return mgl64.Vec2{
		float64(chunk.Col*chunkDim.Col+tile.Col) * ts.Width,
		float64(chunk.Row*chunkDim.Row+tile.Row) * ts.Height,
	}
}

// Window returns the chunks within radius of center, rows clamped to the
// planet and columns wrapped, sorted row-major without duplicates.
func Window(center ChunkIndex, radius uint64, planetDim Dim) []ChunkIndex {
	if planetDim.Row == 0 || planetDim.Col == 0 || center.Row >= planetDim.Row {
		return nil
	}
	rowLo := uint64(0)
	if center.Row > radius {
		rowLo = center.Row - radius
	}
	rowHi := center.Row + radius
	if rowHi >= planetDim.Row {
		rowHi = planetDim.Row - 1
	}

	span := 2*radius + 1
	if span > planetDim.Col {
		span = planetDim.Col
	}
	// Start far enough left that the first column is center-radius modulo cols.
	startCol := (center.Col%planetDim.Col + planetDim.Col - radius%planetDim.Col) % planetDim.Col
	if span == planetDim.Col {
		startCol = 0
	}

	out := make([]ChunkIndex, 0, (rowHi-rowLo+1)*span)
	cols := make([]uint64, 0, span)
	for i := uint64(0); i < span; i++ {
		cols = append(cols, (startCol+i)%planetDim.Col)
	}
	slices.Sort(cols)
	for r := rowLo; r <= rowHi; r++ {
		for _, c := range cols {
			out = append(out, ChunkIndex{Row: r, Col: c})
		}
	}
	return out
}
