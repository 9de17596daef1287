// Package savegame maps a game onto its directory of RON files: one session
// file plus one file per saved chunk, named by the chunk's linear index.
package savegame

import (
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	sessionFile = "session_data.ron"
	chunksDir   = "chunks"
	chunkExt    = ".ron"
	zstdExt     = ".zst"
)

// Layout resolves paths under <Root>/<game>/.
type Layout struct {
	Root     string
	GameName string
}

// DirName turns a display name into a portable directory name: accents are
// stripped, letters lowercased, and anything outside [a-z0-9_-] becomes '-'.
func DirName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, name)
	if err != nil {
		plain = name
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(plain)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if out == "" {
		return "unnamed"
	}
	return out
}

func (l Layout) Dir() string         { return filepath.Join(l.Root, DirName(l.GameName)) }
func (l Layout) SessionPath() string { return filepath.Join(l.Dir(), sessionFile) }
func (l Layout) ChunksDir() string   { return filepath.Join(l.Dir(), chunksDir) }

// ChunkPath is the file for a chunk's linear index, with the zstd suffix
// when compressed.
func (l Layout) ChunkPath(linear uint64, compressed bool) string {
	name := strconv.FormatUint(linear, 10) + chunkExt
	if compressed {
		name += zstdExt
	}
	return filepath.Join(l.ChunksDir(), name)
}
