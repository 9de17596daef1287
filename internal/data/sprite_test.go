package data

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleSprites = `
sheets:
  - name: tiles
    path: sprites/tiles.png
sprites:
  - {category: tile, type: Dirt, sheet: tiles, frame: 1}
  - {category: tile, type: Rock, sheet: tiles, frame: 3}
`

func TestParseSpriteTable(t *testing.T) {
	tbl, err := ParseSpriteTable([]byte(sampleSprites))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tbl.Count() != 2 {
		t.Fatalf("count = %d", tbl.Count())
	}
	e := tbl.Lookup(SpriteKey{Category: "tile", Type: "Rock"})
	if e == nil || e.Frame != 3 || e.Sheet != "tiles" {
		t.Fatalf("lookup = %+v", e)
	}
	if tbl.Lookup(SpriteKey{Category: "tile", Type: "Gold"}) != nil {
		t.Fatalf("unexpected sprite for Gold")
	}
}

func TestParseSpriteTableRejectsBadRefs(t *testing.T) {
	unknownSheet := "sprites:\n  - {category: tile, type: Dirt, sheet: ghosts, frame: 0}\n"
	duplicate := "sheets: [{name: tiles}]\nsprites:\n" +
		"  - {category: tile, type: Dirt, sheet: tiles, frame: 0}\n" +
		"  - {category: tile, type: Dirt, sheet: tiles, frame: 1}\n"

	cases := map[string]string{"unknown sheet": unknownSheet, "duplicate": duplicate}
	for name, doc := range cases {
		if _, err := ParseSpriteTable([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestBundledSpriteTableCoversTiles(t *testing.T) {
	path := filepath.Join("..", "..", "data", "yaml", "sprites.yaml")
	if _, err := os.Stat(path); err != nil {
		t.Skipf("bundled table not present: %v", err)
	}
	tbl, err := LoadSpriteTable(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, name := range []string{"Empty", "Dirt", "BedRock", "Diamond", "Uranium"} {
		if tbl.Lookup(SpriteKey{Category: "tile", Type: name}) == nil {
			t.Errorf("no sprite for tile %s", name)
		}
	}
}
