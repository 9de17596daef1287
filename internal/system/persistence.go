package system

import (
	"context"
	"time"

	coresys "github.com/deepcore/drillship/internal/core/system"
	"github.com/deepcore/drillship/internal/planet"
	"github.com/deepcore/drillship/internal/savegame"
	"go.uber.org/zap"
)

// SessionWriter persists the session header.
type SessionWriter interface {
	WriteSession(s savegame.Session) error
}

// SessionCatalog optionally mirrors the session header elsewhere.
type SessionCatalog interface {
	UpsertSession(ctx context.Context, s savegame.Session) error
}

// SavedChunkLister reports which chunks have a file on disk.
type SavedChunkLister interface {
	SavedChunks() []planet.ChunkIndex
}

// PersistenceSystem periodically auto-saves the session file so a crash
// loses at most one interval of saved-chunk bookkeeping. Chunk files are
// written by StreamingSystem. Phase 6 (Persist).
type PersistenceSystem struct {
	header    savegame.Session
	chunks    SavedChunkLister
	store     SessionWriter
	catalog   SessionCatalog
	log       *zap.Logger
	tickCount int
	interval  int // auto-save every N ticks
}

// NewPersistenceSystem saves header plus the chunk list every intervalTicks.
// catalog may be nil.
func NewPersistenceSystem(header savegame.Session, chunks SavedChunkLister, store SessionWriter, catalog SessionCatalog, log *zap.Logger, intervalTicks int) *PersistenceSystem {
	return &PersistenceSystem{
		header:   header,
		chunks:   chunks,
		store:    store,
		catalog:  catalog,
		log:      log,
		interval: intervalTicks,
	}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	if s.interval <= 0 {
		return
	}
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	if err := s.Save(); err != nil {
		s.log.Error("auto-save session failed", zap.Error(err))
	}
}

// Save writes the session file immediately. Called for graceful shutdown
// after the streaming system has saved every chunk.
func (s *PersistenceSystem) Save() error {
	sess := s.header
	sess.SavedChunks = s.chunks.SavedChunks()
	if err := s.store.WriteSession(sess); err != nil {
		return err
	}
	if s.catalog != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.catalog.UpsertSession(ctx, sess); err != nil {
			// The file is authoritative; a catalog miss is only logged.
			s.log.Warn("catalog session upsert failed", zap.Error(err))
		}
	}
	s.log.Debug("session saved", zap.String("game", sess.GameName), zap.Int("saved_chunks", len(sess.SavedChunks)))
	return nil
}
