package savegame

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/deepcore/drillship/internal/planet"
	"github.com/klauspost/compress/zstd"
)

// Store reads and writes one game's files. It implements planet.ChunkWriter
// and planet.ChunkReader and is safe to use from the chunk I/O goroutine as
// long as only one goroutine writes a given chunk.
type Store struct {
	layout   Layout
	compress bool
}

func NewStore(layout Layout, compress bool) *Store {
	return &Store{layout: layout, compress: compress}
}

func (s *Store) Layout() Layout { return s.layout }

// Init creates the game and chunk directories.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.layout.ChunksDir(), 0o755); err != nil {
		return fmt.Errorf("create savegame dir: %w", err)
	}
	return nil
}

// WriteChunk stores the type map under its linear index, replacing any file
// written with the other compression setting.
func (s *Store) WriteChunk(linear uint64, types map[planet.TileIndex]planet.TileType) error {
	path := s.layout.ChunkPath(linear, s.compress)
	if err := writeFile(path, EncodeChunk(types), s.compress); err != nil {
		return fmt.Errorf("write chunk %d: %w", linear, err)
	}
	stale := s.layout.ChunkPath(linear, !s.compress)
	if err := os.Remove(stale); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove stale chunk file: %w", err)
	}
	return nil
}

// ReadChunk decodes a chunk file; a .zst suffix selects decompression.
func (s *Store) ReadChunk(path string) (map[planet.TileIndex]planet.TileType, error) {
	data, err := readFile(path, strings.HasSuffix(path, zstdExt))
	if err != nil {
		return nil, fmt.Errorf("read chunk %s: %w", filepath.Base(path), err)
	}
	types, err := DecodeChunk(data)
	if err != nil {
		return nil, fmt.Errorf("read chunk %s: %w", filepath.Base(path), err)
	}
	return types, nil
}

// FindChunk returns the existing file for a linear index, preferring the
// current compression setting.
func (s *Store) FindChunk(linear uint64) (string, bool) {
	for _, c := range []bool{s.compress, !s.compress} {
		p := s.layout.ChunkPath(linear, c)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

func (s *Store) WriteSession(sess Session) error {
	if err := writeFile(s.layout.SessionPath(), sess.Encode(), false); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// ReadSession returns fs.ErrNotExist (wrapped) for a new game.
func (s *Store) ReadSession() (Session, error) {
	data, err := readFile(s.layout.SessionPath(), false)
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}
	sess, err := DecodeSession(data)
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}
	return sess, nil
}

// writeFile writes through a temp file and rename so a crash never leaves a
// half-written chunk behind.
func writeFile(path string, body []byte, compress bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	var w io.Writer = tmp
	var enc *zstd.Encoder
	if compress {
		enc, err = zstd.NewWriter(tmp, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			tmp.Close()
			return err
		}
		w = enc
	}
	if _, err := w.Write(body); err != nil {
		tmp.Close()
		return err
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func readFile(path string, compressed bool) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if !compressed {
		return io.ReadAll(f)
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(dec); err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}
	return buf.Bytes(), nil
}
