package planet

import (
	"encoding/binary"
	"iter"
	"slices"

	"github.com/deepcore/drillship/internal/core/ecs"
	"golang.org/x/crypto/blake2b"
)

type tileSlot struct {
	typ    TileType
	entity ecs.EntityID
	used   bool
}

// Chunk owns a grid of tiles. Slots are stored row-major by TileIndex and a
// reverse map resolves a tile entity back to its slot; both are only changed
// together by put.
type Chunk struct {
	dim      Dim
	slots    []tileSlot
	byEntity map[ecs.EntityID]int
}

// NewEmptyChunk returns a chunk with no tiles. The grid is sized on the
// first AddTile.
func NewEmptyChunk() *Chunk {
	return &Chunk{byEntity: make(map[ecs.EntityID]int)}
}

func (c *Chunk) ensure(dim Dim) {
	if c.slots == nil {
		c.dim = dim
		c.slots = make([]tileSlot, dim.Area())
		if c.byEntity == nil {
			c.byEntity = make(map[ecs.EntityID]int, dim.Area())
		}
	}
}

// put records a tile, replacing whatever occupied its slot. It returns the
// entity that was replaced, if any.
func (c *Chunk) put(t TileIndex, typ TileType, entity ecs.EntityID) (ecs.EntityID, bool) {
	i := t.linear(c.dim)
	old := c.slots[i]
	if old.used {
		delete(c.byEntity, old.entity)
	}
	c.slots[i] = tileSlot{typ: typ, entity: entity, used: true}
	c.byEntity[entity] = i
	return old.entity, old.used
}

func (c *Chunk) slot(t TileIndex) (tileSlot, bool) {
	if c.slots == nil || t.Row >= c.dim.Row || t.Col >= c.dim.Col {
		return tileSlot{}, false
	}
	s := c.slots[t.linear(c.dim)]
	return s, s.used
}

// Len returns the number of tiles present.
func (c *Chunk) Len() int { return len(c.byEntity) }

// Dim returns the grid size, zero until the first tile is added.
func (c *Chunk) Dim() Dim { return c.dim }

// TileTypeAt returns the type of tile t.
func (c *Chunk) TileTypeAt(t TileIndex) (TileType, bool) {
	s, ok := c.slot(t)
	return s.typ, ok
}

// TileEntityAt returns the entity backing tile t.
func (c *Chunk) TileEntityAt(t TileIndex) (ecs.EntityID, bool) {
	s, ok := c.slot(t)
	return s.entity, ok
}

// TileIndexOf resolves a tile entity to its index, e.g. for collision hits.
func (c *Chunk) TileIndexOf(entity ecs.EntityID) (TileIndex, bool) {
	i, ok := c.byEntity[entity]
	if !ok {
		return TileIndex{}, false
	}
	return tileAt(i, c.dim), true
}

// TileTypes yields tile types ordered by TileIndex.
func (c *Chunk) TileTypes() iter.Seq2[TileIndex, TileType] {
	return func(yield func(TileIndex, TileType) bool) {
		for i, s := range c.slots {
			if s.used && !yield(tileAt(i, c.dim), s.typ) {
				return
			}
		}
	}
}

// TileEntities yields tile entities ordered by TileIndex.
func (c *Chunk) TileEntities() iter.Seq2[TileIndex, ecs.EntityID] {
	return func(yield func(TileIndex, ecs.EntityID) bool) {
		for i, s := range c.slots {
			if s.used && !yield(tileAt(i, c.dim), s.entity) {
				return
			}
		}
	}
}

// TileTypeMap copies the persisted part of the chunk.
func (c *Chunk) TileTypeMap() map[TileIndex]TileType {
	m := make(map[TileIndex]TileType, c.Len())
	for t, typ := range c.TileTypes() {
		m[t] = typ
	}
	return m
}

// Digest hashes the tile types in index order. Entities are not included,
// so a reloaded chunk digests equal to the chunk that was saved.
func (c *Chunk) Digest() [32]byte {
	return DigestTypes(c.TileTypeMap())
}

// DigestTypes is Digest over a detached tile type map.
func DigestTypes(types map[TileIndex]TileType) [32]byte {
	keys := make([]TileIndex, 0, len(types))
	for t := range types {
		keys = append(keys, t)
	}
	slices.SortFunc(keys, TileIndex.Compare)

	h, _ := blake2b.New256(nil)
	var buf [17]byte
	for _, t := range keys {
		binary.LittleEndian.PutUint64(buf[0:8], t.Row)
		binary.LittleEndian.PutUint64(buf[8:16], t.Col)
		buf[16] = byte(types[t])
		h.Write(buf[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
