package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deepcore/drillship/internal/savegame"
	"github.com/jackc/pgx/v5"
)

// SessionRow is one catalogued savegame.
type SessionRow struct {
	Name        string
	DirName     string
	Seed        uint64
	PlanetRows  uint64
	PlanetCols  uint64
	ChunkRows   uint64
	ChunkCols   uint64
	SavedChunks int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CatalogRepo indexes savegames and their chunk saves in Postgres. The files
// under savegames/ stay authoritative; the catalog is for listing and
// verifying them.
type CatalogRepo struct {
	db *DB
}

func NewCatalogRepo(db *DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

// UpsertSession records the session header and its saved chunk count.
func (r *CatalogRepo) UpsertSession(ctx context.Context, s savegame.Session) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO savegames (name, dir_name, seed, planet_rows, planet_cols, chunk_rows, chunk_cols, saved_chunks)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (name) DO UPDATE SET
		     seed = EXCLUDED.seed,
		     saved_chunks = EXCLUDED.saved_chunks,
		     updated_at = NOW()`,
		s.GameName, savegame.DirName(s.GameName), int64(s.Seed),
		int64(s.PlanetDim.Row), int64(s.PlanetDim.Col), int64(s.ChunkDim.Row), int64(s.ChunkDim.Col),
		len(s.SavedChunks),
	)
	if err != nil {
		return fmt.Errorf("upsert savegame %q: %w", s.GameName, err)
	}
	return nil
}

// RecordChunkSave notes one successful chunk write. The savegame row must
// exist; a chunk saved before the first session upsert creates a stub.
func (r *CatalogRepo) RecordChunkSave(ctx context.Context, game string, linear uint64, tiles int, digest [32]byte) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("chunk save begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO savegames (name, dir_name, seed, planet_rows, planet_cols, chunk_rows, chunk_cols)
		 VALUES ($1, $2, 0, 0, 0, 0, 0)
		 ON CONFLICT (name) DO NOTHING`,
		game, savegame.DirName(game),
	); err != nil {
		return fmt.Errorf("chunk save stub: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO chunk_saves (savegame, linear, tiles, digest)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (savegame, linear) DO UPDATE SET
		     tiles = EXCLUDED.tiles,
		     digest = EXCLUDED.digest,
		     save_count = chunk_saves.save_count + 1,
		     saved_at = NOW()`,
		game, int64(linear), tiles, digest[:],
	); err != nil {
		return fmt.Errorf("chunk save insert: %w", err)
	}
	return tx.Commit(ctx)
}

// ChunkDigest returns the recorded digest and save count of a chunk, or nil
// if the chunk was never catalogued.
func (r *CatalogRepo) ChunkDigest(ctx context.Context, game string, linear uint64) ([]byte, int, error) {
	var (
		digest []byte
		count  int
	)
	err := r.db.Pool.QueryRow(ctx,
		`SELECT digest, save_count FROM chunk_saves WHERE savegame = $1 AND linear = $2`,
		game, int64(linear),
	).Scan(&digest, &count)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	return digest, count, nil
}

// ListSessions returns every catalogued savegame, most recently saved first.
func (r *CatalogRepo) ListSessions(ctx context.Context) ([]SessionRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT name, dir_name, seed, planet_rows, planet_cols, chunk_rows, chunk_cols,
		        saved_chunks, created_at, updated_at
		 FROM savegames ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var row SessionRow
		var seed, pRows, pCols, cRows, cCols int64
		if err := rows.Scan(&row.Name, &row.DirName, &seed, &pRows, &pCols, &cRows, &cCols,
			&row.SavedChunks, &row.CreatedAt, &row.UpdatedAt); err != nil {
			return nil, err
		}
		row.Seed = uint64(seed)
		row.PlanetRows, row.PlanetCols = uint64(pRows), uint64(pCols)
		row.ChunkRows, row.ChunkCols = uint64(cRows), uint64(cCols)
		out = append(out, row)
	}
	return out, rows.Err()
}
