package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/deepcore/drillship/internal/planet"
	"go.uber.org/zap"
)

var testDim = planet.Dim{Row: 10, Col: 20}

func newTestEngine(t *testing.T, src string) *Engine {
	t.Helper()
	e := newEngine(testDim, zap.NewNop())
	t.Cleanup(e.Close)
	if src != "" {
		if err := e.LoadString(src); err != nil {
			t.Fatalf("LoadString: %v", err)
		}
	}
	return e
}

func TestOverrideTileWithoutScriptKeepsGenerated(t *testing.T) {
	e := newTestEngine(t, "")
	if e.HasOverride() {
		t.Fatal("HasOverride = true with no script")
	}
	if got := e.OverrideTile(planet.ChunkIndex{Row: 1}, planet.TileIndex{}, planet.Coal); got != planet.Coal {
		t.Fatalf("got %v, want Coal", got)
	}
}

func TestOverrideTileUsesScriptResult(t *testing.T) {
	e := newTestEngine(t, `
function override_tile(ctx)
  if ctx.chunk_row == PLANET_ROWS - 1 and ctx.tile_row == 3 then
    return "BedRock"
  end
  if ctx.generated == "Gas" then
    return "Rock"
  end
  return nil
end`)
	cases := []struct {
		chunk planet.ChunkIndex
		tile  planet.TileIndex
		gen   planet.TileType
		want  planet.TileType
	}{
		{planet.ChunkIndex{Row: 9, Col: 4}, planet.TileIndex{Row: 3}, planet.Gold, planet.BedRock},
		{planet.ChunkIndex{Row: 2}, planet.TileIndex{Row: 1}, planet.Gas, planet.Rock},
		{planet.ChunkIndex{Row: 2}, planet.TileIndex{Row: 1}, planet.Dirt, planet.Dirt},
	}
	for _, c := range cases {
		if got := e.OverrideTile(c.chunk, c.tile, c.gen); got != c.want {
			t.Errorf("OverrideTile(%v, %v, %v) = %v, want %v", c.chunk, c.tile, c.gen, got, c.want)
		}
	}
	if e.Failures() != 0 {
		t.Fatalf("Failures = %d", e.Failures())
	}
}

func TestOverrideTileFallsBackOnBadResult(t *testing.T) {
	e := newTestEngine(t, `
function override_tile(ctx)
  if ctx.tile_col == 0 then return "Mithril" end
  if ctx.tile_col == 1 then return 42 end
  error("boom")
end`)
	for col := uint64(0); col < 3; col++ {
		if got := e.OverrideTile(planet.ChunkIndex{Row: 1}, planet.TileIndex{Col: col}, planet.Iron); got != planet.Iron {
			t.Fatalf("col %d: got %v, want Iron", col, got)
		}
	}
	if e.Failures() != 3 {
		t.Fatalf("Failures = %d, want 3", e.Failures())
	}
}

func TestNewEngineLoadsScriptDirs(t *testing.T) {
	dir := t.TempDir()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(os.MkdirAll(filepath.Join(dir, "core"), 0o755))
	must(os.MkdirAll(filepath.Join(dir, "world"), 0o755))
	must(os.WriteFile(filepath.Join(dir, "core", "util.lua"), []byte(`function deep(ctx) return ctx.depth >= 0.5 end`), 0o644))
	must(os.WriteFile(filepath.Join(dir, "world", "tiles.lua"), []byte(`
function override_tile(ctx)
  if deep(ctx) and ctx.generated == "Empty" then return "Lava" end
end`), 0o644))

	e, err := NewEngine(dir, testDim, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer e.Close()
	if got := e.OverrideTile(planet.ChunkIndex{Row: 7}, planet.TileIndex{}, planet.Empty); got != planet.Lava {
		t.Fatalf("deep empty = %v, want Lava", got)
	}
	if got := e.OverrideTile(planet.ChunkIndex{Row: 1}, planet.TileIndex{}, planet.Empty); got != planet.Empty {
		t.Fatalf("shallow empty = %v, want Empty", got)
	}
}
