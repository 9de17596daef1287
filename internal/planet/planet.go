package planet

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/deepcore/drillship/internal/core/ecs"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// RenderHandle identifies a sprite frame in a loaded sheet.
type RenderHandle struct {
	Sheet string
	Frame int
}

// RenderLookup resolves the sprite for a tile type.
type RenderLookup interface {
	TileRender(t TileType) (RenderHandle, bool)
}

// TileSpec is everything a tile entity is created with.
type TileSpec struct {
	Type        TileType
	Render      RenderHandle
	Translation mgl64.Vec2
	Flipped     bool
}

// EntityDeleter removes entities.
type EntityDeleter interface {
	Delete(id ecs.EntityID) error
}

// EntityStore is the narrow world handle chunk building needs: create a tile
// entity with its components, and delete one.
type EntityStore interface {
	EntityDeleter
	CreateTile(spec TileSpec) ecs.EntityID
}

// TileHook may replace a generated tile type. It is not consulted for tiles
// restored from disk, nor for chunk row 0.
type TileHook interface {
	OverrideTile(chunk ChunkIndex, tile TileIndex, generated TileType) TileType
}

// BuildContext carries the collaborators used to build tiles.
type BuildContext struct {
	Store   EntityStore
	Renders RenderLookup
	Hook    TileHook
}

// ChunkWriter persists a chunk's tile types under its linear index.
type ChunkWriter interface {
	WriteChunk(linear uint64, types map[TileIndex]TileType) error
}

// ChunkReader reads a persisted tile type map.
type ChunkReader interface {
	ReadChunk(path string) (map[TileIndex]TileType, error)
}

// Config fixes a planet's geometry.
type Config struct {
	PlanetDim Dim
	ChunkDim  Dim
	TileSize  TileSize
}

func (c Config) validate() error {
	if c.PlanetDim.Row == 0 || c.PlanetDim.Col == 0 {
		return fmt.Errorf("planet dim %v must be non-zero", c.PlanetDim)
	}
	if c.ChunkDim.Row == 0 || c.ChunkDim.Col == 0 {
		return fmt.Errorf("chunk dim %v must be non-zero", c.ChunkDim)
	}
	if c.TileSize.Width <= 0 || c.TileSize.Height <= 0 {
		return fmt.Errorf("tile size %v must be positive", c.TileSize)
	}
	return nil
}

// ChunkEntry pairs a chunk with its index.
type ChunkEntry struct {
	Index ChunkIndex
	Chunk *Chunk
}

// Planet owns the resident chunks. Only a window around the player is kept
// in memory; everything else is on disk or not generated yet.
//
// Accessed only from the game loop goroutine.
type Planet struct {
	cfg    Config
	gen    *Generator
	chunks map[ChunkIndex]*Chunk
	log    *zap.Logger
}

func New(cfg Config, gen *Generator, log *zap.Logger) (*Planet, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if gen == nil {
		return nil, errors.New("planet needs a generator")
	}
	return &Planet{
		cfg:    cfg,
		gen:    gen,
		chunks: make(map[ChunkIndex]*Chunk, 64),
		log:    log,
	}, nil
}

func (p *Planet) Dim() Dim              { return p.cfg.PlanetDim }
func (p *Planet) ChunkDim() Dim         { return p.cfg.ChunkDim }
func (p *Planet) TileSize() TileSize    { return p.cfg.TileSize }
func (p *Planet) Generator() *Generator { return p.gen }

// ClampChunkIndex validates idx against the planet: rows error, cols wrap.
func (p *Planet) ClampChunkIndex(idx ChunkIndex) (ChunkIndex, error) {
	return ClampChunkIndex(idx, p.cfg.PlanetDim)
}

// ChunkIndexAt maps a world position to its chunk.
func (p *Planet) ChunkIndexAt(pos mgl64.Vec2) (ChunkIndex, error) {
	return ChunkIndexFromPosition(pos, p.cfg.TileSize, p.cfg.ChunkDim, p.cfg.PlanetDim)
}

// TileIndexAt maps a world position to a tile of chunk.
func (p *Planet) TileIndexAt(pos mgl64.Vec2, chunk ChunkIndex) (TileIndex, error) {
	return TileIndexFromPosition(pos, chunk, p.cfg.TileSize, p.cfg.ChunkDim, p.cfg.PlanetDim)
}

// Window returns the chunks within radius of center.
func (p *Planet) Window(center ChunkIndex, radius uint64) []ChunkIndex {
	return Window(center, radius, p.cfg.PlanetDim)
}

// LinearIndex names a chunk's save file. Column-major so every chunk of the
// planet gets a distinct number. This deliberately uses col*rows+row rather
// than col*width_in_chunks+row, which collides on non-square planets.
func (p *Planet) LinearIndex(idx ChunkIndex) uint64 {
	return idx.Col*p.cfg.PlanetDim.Row + idx.Row
}

// BuildChunk generates every tile of idx row-major. Tiles that fail to build
// are logged and skipped; the chunk is returned partially populated.
func BuildChunk(p *Planet, idx ChunkIndex, build BuildContext) *Chunk {
	c := NewEmptyChunk()
	c.ensure(p.cfg.ChunkDim)
	failed := 0
	for r := uint64(0); r < p.cfg.ChunkDim.Row; r++ {
		for col := uint64(0); col < p.cfg.ChunkDim.Col; col++ {
			t := TileIndex{Row: r, Col: col}
			if err := p.AddTile(c, idx, t, nil, build); err != nil {
				failed++
				p.log.Error("build tile failed",
					zap.Stringer("chunk", idx), zap.Stringer("tile", t), zap.Error(err))
			}
		}
	}
	if failed > 0 {
		p.log.Warn("chunk partially built", zap.Stringer("chunk", idx), zap.Int("failed", failed))
	}
	return c
}

// AddTile creates the entity for one tile and records it in c. A nil override
// generates the type; otherwise the given type is used as is.
func (p *Planet) AddTile(c *Chunk, idx ChunkIndex, t TileIndex, override *TileType, build BuildContext) error {
	dim := p.cfg.ChunkDim
	if t.Row >= dim.Row || t.Col >= dim.Col {
		return fmt.Errorf("tile %s in chunk dim %v: %w", t, dim, ErrIndexOutOfBounds)
	}
	var typ TileType
	if override != nil {
		typ = *override
	} else {
		typ = p.gen.TileType(idx, t, dim, p.cfg.PlanetDim)
		// The surface chunk row stays Empty whatever the hook says.
		if build.Hook != nil && idx.Row > 0 {
			typ = build.Hook.OverrideTile(idx, t, typ)
		}
	}
	render, ok := build.Renders.TileRender(typ)
	if !ok {
		return fmt.Errorf("tile type %s: %w", typ, ErrSpriteRenderNotFound)
	}

	c.ensure(dim)
	id := build.Store.CreateTile(TileSpec{
		Type:        typ,
		Render:      render,
		Translation: TileOrigin(idx, t, p.cfg.TileSize, dim),
		Flipped:     typ.flippable() && p.gen.flipped(idx, t, dim),
	})
	if old, replaced := c.put(t, typ, id); replaced {
		if err := build.Store.Delete(old); err != nil {
			p.log.Warn("delete replaced tile", zap.Stringer("tile", t), zap.Error(err))
		}
	}
	return nil
}

// NewChunk generates idx and makes it resident, replacing any chunk already
// there. Callers check GetChunk first.
func (p *Planet) NewChunk(idx ChunkIndex, build BuildContext) error {
	idx, err := p.ClampChunkIndex(idx)
	if err != nil {
		return err
	}
	p.chunks[idx] = BuildChunk(p, idx, build)
	return nil
}

// GetChunk returns the resident chunk at idx, or nil if it is not resident.
func (p *Planet) GetChunk(idx ChunkIndex) (*Chunk, error) {
	idx, err := p.ClampChunkIndex(idx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrChunkProblem, err)
	}
	return p.chunks[idx], nil
}

// Resident reports whether idx is currently loaded.
func (p *Planet) Resident(idx ChunkIndex) bool {
	c, err := p.GetChunk(idx)
	return err == nil && c != nil
}

// SaveChunk persists the tile types of a resident chunk. The chunk stays
// resident whether or not the write succeeds.
func (p *Planet) SaveChunk(idx ChunkIndex, w ChunkWriter) error {
	c, err := p.GetChunk(idx)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("save chunk %s: %w", idx, ErrNotFound)
	}
	idx, _ = p.ClampChunkIndex(idx)
	if err := w.WriteChunk(p.LinearIndex(idx), c.TileTypeMap()); err != nil {
		return fmt.Errorf("save chunk %s: %w", idx, err)
	}
	return nil
}

// LoadChunk reads a saved chunk from path and makes it resident. On any
// error the chunk is left absent.
func (p *Planet) LoadChunk(idx ChunkIndex, path string, r ChunkReader, build BuildContext) error {
	types, err := r.ReadChunk(path)
	if err != nil {
		return fmt.Errorf("load chunk %s from %s: %w", idx, path, err)
	}
	return p.RestoreChunk(idx, types, build)
}

// RestoreChunk rebuilds a chunk from a decoded tile type map, bypassing the
// generator, and makes it resident.
func (p *Planet) RestoreChunk(idx ChunkIndex, types map[TileIndex]TileType, build BuildContext) error {
	idx, err := p.ClampChunkIndex(idx)
	if err != nil {
		return err
	}
	keys := make([]TileIndex, 0, len(types))
	for t := range types {
		keys = append(keys, t)
	}
	slices.SortFunc(keys, TileIndex.Compare)

	c := NewEmptyChunk()
	for _, t := range keys {
		typ := types[t]
		if err := p.AddTile(c, idx, t, &typ, build); err != nil {
			p.log.Error("restore tile failed",
				zap.Stringer("chunk", idx), zap.Stringer("tile", t), zap.Error(err))
		}
	}
	p.chunks[idx] = c
	return nil
}

// DeleteChunk evicts idx without saving and deletes its tile entities.
// Individual delete failures are logged and do not stop the batch.
func (p *Planet) DeleteChunk(idx ChunkIndex, deleter EntityDeleter) error {
	idx, err := p.ClampChunkIndex(idx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrChunkProblem, err)
	}
	c, ok := p.chunks[idx]
	if !ok {
		return fmt.Errorf("delete chunk %s: %w", idx, ErrNotFound)
	}
	delete(p.chunks, idx)
	for t, id := range c.TileEntities() {
		if err := deleter.Delete(id); err != nil {
			p.log.Warn("delete tile entity failed",
				zap.Stringer("chunk", idx), zap.Stringer("tile", t), zap.Error(err))
		}
	}
	return nil
}

// DrainChunks removes and returns every resident chunk, sorted by index.
// The caller owns the chunks' entities from here on.
func (p *Planet) DrainChunks() []ChunkEntry {
	out := make([]ChunkEntry, 0, len(p.chunks))
	for idx, c := range p.chunks {
		out = append(out, ChunkEntry{Index: idx, Chunk: c})
	}
	clear(p.chunks)
	slices.SortFunc(out, func(a, b ChunkEntry) int { return a.Index.Compare(b.Index) })
	return out
}

// Chunks yields resident chunks in unspecified order.
func (p *Planet) Chunks() iter.Seq2[ChunkIndex, *Chunk] {
	return func(yield func(ChunkIndex, *Chunk) bool) {
		for idx, c := range p.chunks {
			if !yield(idx, c) {
				return
			}
		}
	}
}

// ClearChunks drops every resident chunk without touching entities.
func (p *Planet) ClearChunks() { clear(p.chunks) }

// Len returns the number of resident chunks.
func (p *Planet) Len() int { return len(p.chunks) }
