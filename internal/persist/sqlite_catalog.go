package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/deepcore/drillship/internal/savegame"
	_ "modernc.org/sqlite"
)

// SQLiteCatalog is the serverless savegame catalog: the same two tables as
// the Postgres schema in a single local file.
type SQLiteCatalog struct {
	db *sql.DB
}

func OpenSQLiteCatalog(path string) (*SQLiteCatalog, error) {
	if path == "" {
		return nil, errors.New("empty catalog path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer; the chunk I/O worker and the game loop share it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initSQLite(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init catalog %s: %w", path, err)
	}
	return &SQLiteCatalog{db: db}, nil
}

func initSQLite(db *sql.DB) error {
	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS savegames (
			name TEXT PRIMARY KEY,
			dir_name TEXT NOT NULL,
			seed INTEGER NOT NULL,
			planet_rows INTEGER NOT NULL,
			planet_cols INTEGER NOT NULL,
			chunk_rows INTEGER NOT NULL,
			chunk_cols INTEGER NOT NULL,
			saved_chunks INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS chunk_saves (
			savegame TEXT NOT NULL REFERENCES savegames(name) ON DELETE CASCADE,
			linear INTEGER NOT NULL,
			tiles INTEGER NOT NULL,
			digest BLOB NOT NULL,
			save_count INTEGER NOT NULL DEFAULT 1,
			saved_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (savegame, linear)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *SQLiteCatalog) Close() error { return c.db.Close() }

func (c *SQLiteCatalog) UpsertSession(ctx context.Context, s savegame.Session) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO savegames (name, dir_name, seed, planet_rows, planet_cols, chunk_rows, chunk_cols, saved_chunks)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (name) DO UPDATE SET
		     seed = excluded.seed,
		     planet_rows = excluded.planet_rows,
		     planet_cols = excluded.planet_cols,
		     chunk_rows = excluded.chunk_rows,
		     chunk_cols = excluded.chunk_cols,
		     saved_chunks = excluded.saved_chunks,
		     updated_at = CURRENT_TIMESTAMP`,
		s.GameName, savegame.DirName(s.GameName), int64(s.Seed),
		int64(s.PlanetDim.Row), int64(s.PlanetDim.Col), int64(s.ChunkDim.Row), int64(s.ChunkDim.Col),
		len(s.SavedChunks),
	)
	if err != nil {
		return fmt.Errorf("upsert savegame %q: %w", s.GameName, err)
	}
	return nil
}

func (c *SQLiteCatalog) RecordChunkSave(ctx context.Context, game string, linear uint64, tiles int, digest [32]byte) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("chunk save begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO savegames (name, dir_name, seed, planet_rows, planet_cols, chunk_rows, chunk_cols)
		 VALUES (?, ?, 0, 0, 0, 0, 0)`,
		game, savegame.DirName(game),
	); err != nil {
		return fmt.Errorf("chunk save stub: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO chunk_saves (savegame, linear, tiles, digest)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (savegame, linear) DO UPDATE SET
		     tiles = excluded.tiles,
		     digest = excluded.digest,
		     save_count = chunk_saves.save_count + 1,
		     saved_at = CURRENT_TIMESTAMP`,
		game, int64(linear), tiles, digest[:],
	); err != nil {
		return fmt.Errorf("chunk save insert: %w", err)
	}
	return tx.Commit()
}

// ChunkDigest returns the recorded digest and save count of a chunk, or nil
// if it was never catalogued.
func (c *SQLiteCatalog) ChunkDigest(ctx context.Context, game string, linear uint64) ([]byte, int, error) {
	var (
		digest []byte
		count  int
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT digest, save_count FROM chunk_saves WHERE savegame = ? AND linear = ?`,
		game, int64(linear),
	).Scan(&digest, &count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	return digest, count, nil
}

// ListSessions returns every catalogued savegame, most recently saved first.
// Timestamps are left zero; SQLite stores them as text.
func (c *SQLiteCatalog) ListSessions(ctx context.Context) ([]SessionRow, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT name, dir_name, seed, planet_rows, planet_cols, chunk_rows, chunk_cols, saved_chunks
		 FROM savegames ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var row SessionRow
		var seed, pRows, pCols, cRows, cCols int64
		if err := rows.Scan(&row.Name, &row.DirName, &seed, &pRows, &pCols, &cRows, &cCols, &row.SavedChunks); err != nil {
			return nil, err
		}
		row.Seed = uint64(seed)
		row.PlanetRows, row.PlanetCols = uint64(pRows), uint64(pCols)
		row.ChunkRows, row.ChunkCols = uint64(cRows), uint64(cCols)
		out = append(out, row)
	}
	return out, rows.Err()
}
