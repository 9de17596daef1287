package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SpriteKey identifies a sprite by entity category and type name,
// e.g. {"tile", "Dirt"} or {"ship", "Drill"}.
type SpriteKey struct {
	Category string
	Type     string
}

// SpriteEntry points at one frame of a sprite sheet.
type SpriteEntry struct {
	Category string `yaml:"category"`
	Type     string `yaml:"type"`
	Sheet    string `yaml:"sheet"`
	Frame    int    `yaml:"frame"`
}

// SheetInfo describes a sprite sheet asset. The core never opens Path; it is
// carried for the renderer.
type SheetInfo struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

type spriteFile struct {
	Sheets  []SheetInfo   `yaml:"sheets"`
	Sprites []SpriteEntry `yaml:"sprites"`
}

// SpriteTable is the render-handle registry queried when entities are built.
type SpriteTable struct {
	sheets  map[string]SheetInfo
	sprites map[SpriteKey]*SpriteEntry
}

// LoadSpriteTable loads sprites.yaml.
func LoadSpriteTable(path string) (*SpriteTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sprite table: %w", err)
	}
	t, err := ParseSpriteTable(raw)
	if err != nil {
		return nil, fmt.Errorf("parse sprite table %s: %w", path, err)
	}
	return t, nil
}

// ParseSpriteTable decodes a sprite table document. Every sprite must name a
// declared sheet and each (category, type) may appear once.
func ParseSpriteTable(raw []byte) (*SpriteTable, error) {
	var file spriteFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, err
	}
	t := &SpriteTable{
		sheets:  make(map[string]SheetInfo, len(file.Sheets)),
		sprites: make(map[SpriteKey]*SpriteEntry, len(file.Sprites)),
	}
	for _, s := range file.Sheets {
		t.sheets[s.Name] = s
	}
	for i := range file.Sprites {
		e := &file.Sprites[i]
		if _, ok := t.sheets[e.Sheet]; !ok {
			return nil, fmt.Errorf("sprite %s/%s: unknown sheet %q", e.Category, e.Type, e.Sheet)
		}
		key := SpriteKey{Category: e.Category, Type: e.Type}
		if _, dup := t.sprites[key]; dup {
			return nil, fmt.Errorf("sprite %s/%s declared twice", e.Category, e.Type)
		}
		t.sprites[key] = e
	}
	return t, nil
}

// Lookup returns the sprite for key, or nil if none is registered.
func (t *SpriteTable) Lookup(key SpriteKey) *SpriteEntry {
	return t.sprites[key]
}

// Sheet returns a declared sheet.
func (t *SpriteTable) Sheet(name string) (SheetInfo, bool) {
	s, ok := t.sheets[name]
	return s, ok
}

// Count returns the number of registered sprites.
func (t *SpriteTable) Count() int {
	return len(t.sprites)
}
