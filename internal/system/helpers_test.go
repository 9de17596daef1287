package system

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/deepcore/drillship/internal/core/event"
	"github.com/deepcore/drillship/internal/planet"
	"github.com/deepcore/drillship/internal/world"
	"go.uber.org/zap"
)

const tick = 50 * time.Millisecond

type allRenders struct{}

func (allRenders) TileRender(t planet.TileType) (planet.RenderHandle, bool) {
	return planet.RenderHandle{Sheet: "tiles", Frame: int(t)}, true
}

// newTestPlanet builds the 4x8-chunk planet of 4x4 tiles, 10 units each,
// used by the streaming scenarios.
func newTestPlanet(t *testing.T) *planet.Planet {
	t.Helper()
	p, err := planet.New(planet.Config{
		PlanetDim: planet.Dim{Row: 4, Col: 8},
		ChunkDim:  planet.Dim{Row: 4, Col: 4},
		TileSize:  planet.TileSize{Width: 10, Height: 10},
	}, planet.NewGenerator(7), zap.NewNop())
	if err != nil {
		t.Fatalf("planet.New: %v", err)
	}
	return p
}

func buildContext(ws *world.State) planet.BuildContext {
	return planet.BuildContext{Store: ws, Renders: allRenders{}}
}

// collector records every ChunkEvent delivered by the bus.
type collector struct {
	events []event.ChunkEvent
}

func collect(bus *event.Bus) *collector {
	c := &collector{}
	event.Subscribe(bus, func(ev event.ChunkEvent) { c.events = append(c.events, ev) })
	return c
}

func (c *collector) has(kind event.ChunkEventKind, idx planet.ChunkIndex) bool {
	for _, ev := range c.events {
		if ev.Kind == kind && ev.Index == idx {
			return true
		}
	}
	return false
}

func (c *collector) count(kind event.ChunkEventKind) int {
	n := 0
	for _, ev := range c.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func (c *collector) reset() { c.events = c.events[:0] }

// flush delivers everything emitted so far, as EventDispatchSystem does at
// the start of the next tick.
func flush(bus *event.Bus) {
	bus.SwapBuffers()
	bus.DispatchAll()
}

func request(bus *event.Bus, kind event.ChunkEventKind, idx planet.ChunkIndex) {
	event.Emit(bus, event.ChunkEvent{Kind: kind, Index: idx})
}

// memStore is an in-memory ChunkStore safe for the I/O goroutine.
type memStore struct {
	mu         sync.Mutex
	files      map[uint64]map[planet.TileIndex]planet.TileType
	failWrites bool
	failReads  bool
	writes     int
	gate       chan struct{} // when set, WriteChunk waits for a value
}

func newMemStore() *memStore {
	return &memStore{files: make(map[uint64]map[planet.TileIndex]planet.TileType)}
}

func (m *memStore) WriteChunk(linear uint64, types map[planet.TileIndex]planet.TileType) error {
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.failWrites {
		return errors.New("disk full")
	}
	cp := make(map[planet.TileIndex]planet.TileType, len(types))
	for k, v := range types {
		cp[k] = v
	}
	m.files[linear] = cp
	return nil
}

func (m *memStore) ReadChunk(path string) (map[planet.TileIndex]planet.TileType, error) {
	linear, err := strconv.ParseUint(strings.TrimPrefix(path, "mem://"), 10, 64)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReads {
		return nil, errors.New("corrupt file")
	}
	types, ok := m.files[linear]
	if !ok {
		return nil, fmt.Errorf("no file %d", linear)
	}
	return types, nil
}

func (m *memStore) FindChunk(linear uint64) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[linear]
	return "mem://" + strconv.FormatUint(linear, 10), ok
}

func (m *memStore) has(linear uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[linear]
	return ok
}

func (m *memStore) setFail(writes, reads bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrites, m.failReads = writes, reads
}

// waitFor ticks the streaming system until cond holds.
func waitFor(t *testing.T, s *StreamingSystem, bus *event.Bus, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
		s.Update(tick)
		flush(bus)
	}
}
