package savegame

import (
	"errors"
	"fmt"

	"github.com/deepcore/drillship/internal/planet"
	"github.com/deepcore/drillship/internal/ron"
)

// ErrBadSessionFile is wrapped by every session decoding failure.
var ErrBadSessionFile = errors.New("bad session file")

// Session is the per-game header. Chunks are not inlined; SavedChunks lists
// the ones with a file under chunks/ so a resumed game loads rather than
// regenerates them.
type Session struct {
	GameName    string
	PlanetDim   planet.Dim
	ChunkDim    planet.Dim
	TileSize    planet.TileSize
	Seed        uint64
	SavedChunks []planet.ChunkIndex
}

func (s Session) Encode() []byte {
	saved := make([]ron.Value, 0, len(s.SavedChunks))
	for _, c := range s.SavedChunks {
		saved = append(saved, indexValue(c.Row, c.Col))
	}
	v := ron.Struct("",
		ron.F("game_name", ron.String(s.GameName)),
		ron.F("planet_dim", indexValue(s.PlanetDim.Row, s.PlanetDim.Col)),
		ron.F("chunk_dim", indexValue(s.ChunkDim.Row, s.ChunkDim.Col)),
		ron.F("tile_size", ron.Struct("",
			ron.F("width", ron.Float(s.TileSize.Width)),
			ron.F("height", ron.Float(s.TileSize.Height)))),
		ron.F("seed", ron.Uint(s.Seed)),
		ron.F("saved_chunks", ron.List(saved...)),
	)
	return ron.Marshal(v, true)
}

func DecodeSession(data []byte) (Session, error) {
	var s Session
	v, err := ron.Parse(data)
	if err != nil {
		return s, fmt.Errorf("%w: %w", ErrBadSessionFile, err)
	}
	fail := func(field string, err error) (Session, error) {
		return Session{}, fmt.Errorf("%w: %s: %w", ErrBadSessionFile, field, err)
	}

	f, err := v.Field("game_name")
	if err != nil {
		return fail("game_name", err)
	}
	if s.GameName, err = f.AsString(); err != nil {
		return fail("game_name", err)
	}

	for _, d := range []struct {
		name string
		dst  *planet.Dim
	}{{"planet_dim", &s.PlanetDim}, {"chunk_dim", &s.ChunkDim}} {
		f, err := v.Field(d.name)
		if err != nil {
			return fail(d.name, err)
		}
		if d.dst.Row, d.dst.Col, err = indexFields(f); err != nil {
			return fail(d.name, err)
		}
	}

	ts, err := v.Field("tile_size")
	if err != nil {
		return fail("tile_size", err)
	}
	for _, p := range []struct {
		name string
		dst  *float64
	}{{"width", &s.TileSize.Width}, {"height", &s.TileSize.Height}} {
		f, err := ts.Field(p.name)
		if err != nil {
			return fail("tile_size", err)
		}
		if *p.dst, err = f.AsFloat(); err != nil {
			return fail("tile_size."+p.name, err)
		}
	}

	// Older files carry neither seed nor saved_chunks.
	if f, err := v.Field("seed"); err == nil {
		if s.Seed, err = f.AsUint(); err != nil {
			return fail("seed", err)
		}
	}
	if f, err := v.Field("saved_chunks"); err == nil {
		if f.Kind != ron.KindList {
			return fail("saved_chunks", fmt.Errorf("want list, got %s", f.Kind))
		}
		for _, it := range f.Items {
			row, col, err := indexFields(it)
			if err != nil {
				return fail("saved_chunks", err)
			}
			s.SavedChunks = append(s.SavedChunks, planet.ChunkIndex{Row: row, Col: col})
		}
	}
	return s, nil
}
