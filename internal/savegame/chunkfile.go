package savegame

import (
	"errors"
	"fmt"
	"slices"

	"github.com/deepcore/drillship/internal/planet"
	"github.com/deepcore/drillship/internal/ron"
)

// ErrBadChunkFile is wrapped by every chunk decoding failure.
var ErrBadChunkFile = errors.New("bad chunk file")

// EncodeChunk renders a tile type map as {(row:0,col:0):Dirt,...} with keys
// in TileIndex order.
func EncodeChunk(types map[planet.TileIndex]planet.TileType) []byte {
	keys := make([]planet.TileIndex, 0, len(types))
	for k := range types {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, planet.TileIndex.Compare)
	entries := make([]ron.Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, ron.Entry{Key: indexValue(k.Row, k.Col), Value: ron.Ident(types[k].String())})
	}
	return ron.Marshal(ron.Map(entries...), false)
}

// DecodeChunk parses a chunk file body.
func DecodeChunk(data []byte) (map[planet.TileIndex]planet.TileType, error) {
	v, err := ron.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadChunkFile, err)
	}
	if v.Kind != ron.KindMap {
		return nil, fmt.Errorf("%w: top level is %s, want map", ErrBadChunkFile, v.Kind)
	}
	types := make(map[planet.TileIndex]planet.TileType, len(v.Entries))
	for _, e := range v.Entries {
		row, col, err := indexFields(e.Key)
		if err != nil {
			return nil, fmt.Errorf("%w: key: %w", ErrBadChunkFile, err)
		}
		name, err := e.Value.AsIdent()
		if err != nil {
			return nil, fmt.Errorf("%w: tile (%d,%d): %w", ErrBadChunkFile, row, col, err)
		}
		t, err := planet.ParseTileType(name)
		if err != nil {
			return nil, fmt.Errorf("%w: tile (%d,%d): %w", ErrBadChunkFile, row, col, err)
		}
		types[planet.TileIndex{Row: row, Col: col}] = t
	}
	return types, nil
}

func indexValue(row, col uint64) ron.Value {
	return ron.Struct("", ron.F("row", ron.Uint(row)), ron.F("col", ron.Uint(col)))
}

func indexFields(v ron.Value) (row, col uint64, err error) {
	rv, err := v.Field("row")
	if err != nil {
		return 0, 0, err
	}
	cv, err := v.Field("col")
	if err != nil {
		return 0, 0, err
	}
	if row, err = rv.AsUint(); err != nil {
		return 0, 0, fmt.Errorf("row: %w", err)
	}
	if col, err = cv.AsUint(); err != nil {
		return 0, 0, fmt.Errorf("col: %w", err)
	}
	return row, col, nil
}
