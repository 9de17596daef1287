package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/deepcore/drillship/internal/planet"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for world generation hooks.
// Single-goroutine access only (game loop).
type Engine struct {
	vm        *lua.LState
	log       *zap.Logger
	planetDim planet.Dim
	failures  int
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory. Core scripts load first so world scripts can use their helpers.
func NewEngine(scriptsDir string, planetDim planet.Dim, log *zap.Logger) (*Engine, error) {
	e := newEngine(planetDim, log)
	for _, sub := range []string{"core", "world"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			e.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

func newEngine(planetDim planet.Dim, log *zap.Logger) *Engine {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	names := vm.NewTable()
	for _, t := range planet.AllTileTypes() {
		names.Append(lua.LString(t.String()))
	}
	vm.SetGlobal("TILE_TYPES", names)
	vm.SetGlobal("PLANET_ROWS", lua.LNumber(planetDim.Row))
	vm.SetGlobal("PLANET_COLS", lua.LNumber(planetDim.Col))

	return &Engine{vm: vm, log: log, planetDim: planetDim}
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// LoadString runs a chunk of Lua source in the engine's VM.
func (e *Engine) LoadString(src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("lua: %w", err)
	}
	return nil
}

// HasOverride reports whether a script defined override_tile.
func (e *Engine) HasOverride() bool {
	return e.vm.GetGlobal("override_tile") != lua.LNil
}

// OverrideTile calls the Lua override_tile(ctx) function. ctx carries the
// chunk and tile indices, the global tile coordinates, the relative depth and
// the generated type name. Returning nil or the same name keeps the
// generated type; an unknown name or a script error is logged and ignored.
func (e *Engine) OverrideTile(chunk planet.ChunkIndex, tile planet.TileIndex, generated planet.TileType) planet.TileType {
	fn := e.vm.GetGlobal("override_tile")
	if fn == lua.LNil {
		return generated
	}

	t := e.vm.NewTable()
	t.RawSetString("chunk_row", lua.LNumber(chunk.Row))
	t.RawSetString("chunk_col", lua.LNumber(chunk.Col))
	t.RawSetString("tile_row", lua.LNumber(tile.Row))
	t.RawSetString("tile_col", lua.LNumber(tile.Col))
	t.RawSetString("depth", lua.LNumber(float64(chunk.Row)/float64(max(e.planetDim.Row, 1))))
	t.RawSetString("generated", lua.LString(generated.String()))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.fail("lua override_tile error", zap.Error(err))
		return generated
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	switch v := result.(type) {
	case *lua.LNilType:
		return generated
	case lua.LString:
		typ, err := planet.ParseTileType(string(v))
		if err != nil {
			e.fail("lua override_tile returned unknown type", zap.String("type", string(v)))
			return generated
		}
		return typ
	default:
		e.fail("lua override_tile returned non-string", zap.String("lua_type", result.Type().String()))
		return generated
	}
}

// fail logs the first few script failures; a broken hook would otherwise
// log once per generated tile.
func (e *Engine) fail(msg string, fields ...zap.Field) {
	e.failures++
	switch {
	case e.failures <= 5:
		e.log.Error(msg, fields...)
	case e.failures == 6:
		e.log.Error("further lua override_tile errors suppressed")
	}
}

// Failures counts override_tile calls that fell back to the generated type.
func (e *Engine) Failures() int { return e.failures }

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
