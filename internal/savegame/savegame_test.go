package savegame

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deepcore/drillship/internal/planet"
)

func TestDirName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"default", "default"},
		{"  Deep Core 2 ", "deep-core-2"},
		{"Café Ünderground", "cafe-underground"},
		{"a/b\\c", "a-b-c"},
		{"!!!", "unnamed"},
	}
	for _, c := range cases {
		if got := DirName(c.in); got != c.want {
			t.Errorf("DirName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestLayoutPaths(t *testing.T) {
	l := Layout{Root: "savegames", GameName: "default"}
	if got, want := l.SessionPath(), filepath.Join("savegames", "default", "session_data.ron"); got != want {
		t.Fatalf("SessionPath = %q, want %q", got, want)
	}
	if got, want := l.ChunkPath(17, false), filepath.Join("savegames", "default", "chunks", "17.ron"); got != want {
		t.Fatalf("ChunkPath = %q, want %q", got, want)
	}
	if got := l.ChunkPath(17, true); !strings.HasSuffix(got, "17.ron.zst") {
		t.Fatalf("compressed ChunkPath = %q", got)
	}
}

func sampleTypes() map[planet.TileIndex]planet.TileType {
	return map[planet.TileIndex]planet.TileType{
		{Row: 0, Col: 0}: planet.Dirt,
		{Row: 0, Col: 1}: planet.Gold,
		{Row: 1, Col: 0}: planet.Empty,
		{Row: 1, Col: 1}: planet.Uranium,
	}
}

func TestEncodeChunkFormat(t *testing.T) {
	got := string(EncodeChunk(sampleTypes()))
	want := `{(row:0,col:0):Dirt,(row:0,col:1):Gold,(row:1,col:0):Empty,(row:1,col:1):Uranium}`
	if got != want {
		t.Fatalf("EncodeChunk = %s\nwant %s", got, want)
	}
}

func TestDecodeChunkRejectsUnknownTypes(t *testing.T) {
	for _, src := range []string{
		`{(row:0,col:0):Mithril}`,
		`[(row:0,col:0)]`,
		`{(row:0):Dirt}`,
		`{(row:0,col:0):"Dirt"}`,
	} {
		if _, err := DecodeChunk([]byte(src)); !errors.Is(err, ErrBadChunkFile) {
			t.Errorf("DecodeChunk(%s) = %v, want ErrBadChunkFile", src, err)
		}
	}
}

func TestStoreChunkRoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		s := NewStore(Layout{Root: t.TempDir(), GameName: "rt"}, compress)
		if err := s.Init(); err != nil {
			t.Fatalf("Init: %v", err)
		}
		if err := s.WriteChunk(5, sampleTypes()); err != nil {
			t.Fatalf("WriteChunk(compress=%v): %v", compress, err)
		}
		path, ok := s.FindChunk(5)
		if !ok {
			t.Fatalf("FindChunk(5) found nothing (compress=%v)", compress)
		}
		if strings.HasSuffix(path, ".zst") != compress {
			t.Fatalf("FindChunk = %q with compress=%v", path, compress)
		}
		got, err := s.ReadChunk(path)
		if err != nil {
			t.Fatalf("ReadChunk: %v", err)
		}
		want := sampleTypes()
		if len(got) != len(want) {
			t.Fatalf("got %d tiles, want %d", len(got), len(want))
		}
		for k, v := range want {
			if got[k] != v {
				t.Fatalf("tile %v = %v, want %v", k, got[k], v)
			}
		}
	}
}

func TestWriteChunkReplacesOtherEncoding(t *testing.T) {
	layout := Layout{Root: t.TempDir(), GameName: "switch"}
	if err := NewStore(layout, true).WriteChunk(3, sampleTypes()); err != nil {
		t.Fatalf("WriteChunk compressed: %v", err)
	}
	plain := NewStore(layout, false)
	if err := plain.WriteChunk(3, sampleTypes()); err != nil {
		t.Fatalf("WriteChunk plain: %v", err)
	}
	if _, err := os.Stat(layout.ChunkPath(3, true)); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("stale .zst still present: %v", err)
	}
	if p, ok := plain.FindChunk(3); !ok || strings.HasSuffix(p, ".zst") {
		t.Fatalf("FindChunk = %q, %v", p, ok)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	s := NewStore(Layout{Root: t.TempDir(), GameName: "My Game"}, false)
	if _, err := s.ReadSession(); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("ReadSession on new game = %v, want ErrNotExist", err)
	}
	in := Session{
		GameName:    "My Game",
		PlanetDim:   planet.Dim{Row: 100, Col: 200},
		ChunkDim:    planet.Dim{Row: 16, Col: 16},
		TileSize:    planet.TileSize{Width: 32, Height: 24.5},
		Seed:        1 << 40,
		SavedChunks: []planet.ChunkIndex{{Row: 1, Col: 2}, {Row: 3, Col: 199}},
	}
	if err := s.WriteSession(in); err != nil {
		t.Fatalf("WriteSession: %v", err)
	}
	out, err := s.ReadSession()
	if err != nil {
		t.Fatalf("ReadSession: %v", err)
	}
	if out.GameName != in.GameName || out.PlanetDim != in.PlanetDim || out.ChunkDim != in.ChunkDim ||
		out.TileSize != in.TileSize || out.Seed != in.Seed {
		t.Fatalf("session = %+v, want %+v", out, in)
	}
	if len(out.SavedChunks) != 2 || out.SavedChunks[1] != in.SavedChunks[1] {
		t.Fatalf("saved chunks = %v", out.SavedChunks)
	}
}

func TestDecodeSessionWithoutOptionalFields(t *testing.T) {
	src := `(game_name:"old",planet_dim:(row:4,col:8),chunk_dim:(row:2,col:2),tile_size:(width:1.0,height:1.0))`
	s, err := DecodeSession([]byte(src))
	if err != nil {
		t.Fatalf("DecodeSession: %v", err)
	}
	if s.Seed != 0 || len(s.SavedChunks) != 0 || s.PlanetDim.Col != 8 {
		t.Fatalf("session = %+v", s)
	}
	if _, err := DecodeSession([]byte(`(game_name:"x")`)); !errors.Is(err, ErrBadSessionFile) {
		t.Fatalf("missing dims = %v, want ErrBadSessionFile", err)
	}
}
