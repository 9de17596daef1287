package persist

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/deepcore/drillship/internal/planet"
	"github.com/deepcore/drillship/internal/savegame"
)

func openTestCatalog(t *testing.T) *SQLiteCatalog {
	t.Helper()
	c, err := OpenSQLiteCatalog(filepath.Join(t.TempDir(), "catalog", "savegames.sqlite"))
	if err != nil {
		t.Fatalf("OpenSQLiteCatalog: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSQLiteCatalogChunkSaves(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	first := [32]byte{1, 2, 3}
	second := [32]byte{9}
	if err := c.RecordChunkSave(ctx, "Deep Core", 17, 256, first); err != nil {
		t.Fatalf("RecordChunkSave: %v", err)
	}
	if err := c.RecordChunkSave(ctx, "Deep Core", 17, 256, second); err != nil {
		t.Fatalf("RecordChunkSave again: %v", err)
	}

	digest, count, err := c.ChunkDigest(ctx, "Deep Core", 17)
	if err != nil {
		t.Fatalf("ChunkDigest: %v", err)
	}
	if !bytes.Equal(digest, second[:]) || count != 2 {
		t.Fatalf("digest=%x count=%d, want %x and 2", digest, count, second)
	}

	digest, _, err = c.ChunkDigest(ctx, "Deep Core", 18)
	if err != nil || digest != nil {
		t.Fatalf("uncatalogued chunk: digest=%x err=%v", digest, err)
	}
}

func TestSQLiteCatalogSessions(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	// A chunk saved before the first session upsert leaves a stub row.
	if err := c.RecordChunkSave(ctx, "Ça Va", 0, 4, [32]byte{}); err != nil {
		t.Fatalf("RecordChunkSave: %v", err)
	}
	sess := savegame.Session{
		GameName:    "Ça Va",
		PlanetDim:   planet.Dim{Row: 64, Col: 128},
		ChunkDim:    planet.Dim{Row: 16, Col: 16},
		Seed:        1 << 63,
		SavedChunks: []planet.ChunkIndex{{Row: 0, Col: 0}, {Row: 0, Col: 1}},
	}
	if err := c.UpsertSession(ctx, sess); err != nil {
		t.Fatalf("UpsertSession: %v", err)
	}

	rows, err := c.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("sessions = %d, want 1", len(rows))
	}
	got := rows[0]
	if got.DirName != "ca-va" || got.Seed != 1<<63 || got.PlanetCols != 128 || got.ChunkRows != 16 || got.SavedChunks != 2 {
		t.Fatalf("row = %+v", got)
	}
}
