package planet

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/deepcore/drillship/internal/core/ecs"
	"go.uber.org/zap"
)

type fakeStore struct {
	pool    *ecs.EntityPool
	specs   map[ecs.EntityID]TileSpec
	created int
	deleted int
}

func newFakeStore() *fakeStore {
	return &fakeStore{pool: ecs.NewEntityPool(), specs: map[ecs.EntityID]TileSpec{}}
}

func (s *fakeStore) CreateTile(spec TileSpec) ecs.EntityID {
	id := s.pool.Create()
	s.specs[id] = spec
	s.created++
	return id
}

func (s *fakeStore) Delete(id ecs.EntityID) error {
	if !s.pool.Destroy(id) {
		return fmt.Errorf("entity %d: %w", id, ecs.ErrStaleEntity)
	}
	delete(s.specs, id)
	s.deleted++
	return nil
}

type fakeRenders struct {
	missing map[TileType]bool
}

func (r fakeRenders) TileRender(t TileType) (RenderHandle, bool) {
	if r.missing[t] {
		return RenderHandle{}, false
	}
	return RenderHandle{Sheet: "tiles", Frame: int(t)}, true
}

type memChunks struct {
	files map[string]map[TileIndex]TileType
}

func newMemChunks() *memChunks {
	return &memChunks{files: map[string]map[TileIndex]TileType{}}
}

func (m *memChunks) WriteChunk(linear uint64, types map[TileIndex]TileType) error {
	cp := make(map[TileIndex]TileType, len(types))
	for k, v := range types {
		cp[k] = v
	}
	m.files[strconv.FormatUint(linear, 10)] = cp
	return nil
}

func (m *memChunks) ReadChunk(path string) (map[TileIndex]TileType, error) {
	types, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return types, nil
}

func testPlanet(t *testing.T) *Planet {
	t.Helper()
	p, err := New(Config{
		PlanetDim: Dim{Row: 8, Col: 6},
		ChunkDim:  Dim{Row: 4, Col: 4},
		TileSize:  TileSize{Width: 10, Height: 10},
	}, NewGenerator(42), zap.NewNop())
	if err != nil {
		t.Fatalf("new planet: %v", err)
	}
	return p
}

// assertConsistent checks that every slot and the reverse map agree.
func assertConsistent(t *testing.T, c *Chunk) {
	t.Helper()
	n := 0
	for ti, id := range c.TileEntities() {
		n++
		back, ok := c.TileIndexOf(id)
		if !ok || back != ti {
			t.Fatalf("entity %d at %s maps back to %s (ok=%v)", id, ti, back, ok)
		}
		if _, ok := c.TileTypeAt(ti); !ok {
			t.Fatalf("tile %s has an entity but no type", ti)
		}
	}
	types := 0
	for range c.TileTypes() {
		types++
	}
	if n != types || n != c.Len() {
		t.Fatalf("entities=%d types=%d len=%d", n, types, c.Len())
	}
}

// fixedHook turns every generated tile into typ.
type fixedHook struct{ typ TileType }

func (h fixedHook) OverrideTile(_ ChunkIndex, _ TileIndex, _ TileType) TileType { return h.typ }
