package system

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/deepcore/drillship/internal/core/event"
	coresys "github.com/deepcore/drillship/internal/core/system"
	"github.com/deepcore/drillship/internal/planet"
	"go.uber.org/zap"
)

// StreamingSystem is the only writer of the planet's chunk map. It consumes
// RequestingLoad/RequestingUnload events, reference-counts them across
// tracked entities, and drives chunks through generation, background load
// and save-then-evict. Outcomes are broadcast as Loaded, FailedLoad,
// Unloaded and FailedUnload. Phase 5 (Streaming).
type StreamingSystem struct {
	planet *planet.Planet
	build  planet.BuildContext
	io     *ChunkIO
	bus    *event.Bus
	log    *zap.Logger

	pending  []event.ChunkEvent
	refs     map[planet.ChunkIndex]int
	loading  map[planet.ChunkIndex]struct{}
	evicting map[planet.ChunkIndex]uint64 // chunk -> ticket of the save that will evict it
	saved    map[planet.ChunkIndex]struct{}
	retry    map[planet.ChunkIndex]uint64 // unrequested chunk whose save failed -> tick of next attempt
	ticket   uint64
	tick     uint64
}

// unloadRetryTicks is how long a chunk that failed to save waits before the
// eviction is attempted again.
const unloadRetryTicks = 40

// NewStreamingSystem subscribes to chunk requests on bus. saved lists the
// chunks that already have a file, typically from the session file.
func NewStreamingSystem(p *planet.Planet, build planet.BuildContext, io *ChunkIO, bus *event.Bus, saved []planet.ChunkIndex, log *zap.Logger) *StreamingSystem {
	s := &StreamingSystem{
		planet:   p,
		build:    build,
		io:       io,
		bus:      bus,
		log:      log,
		refs:     make(map[planet.ChunkIndex]int),
		loading:  make(map[planet.ChunkIndex]struct{}),
		evicting: make(map[planet.ChunkIndex]uint64),
		saved:    make(map[planet.ChunkIndex]struct{}, len(saved)),
		retry:    make(map[planet.ChunkIndex]uint64),
	}
	for _, c := range saved {
		s.saved[c] = struct{}{}
	}
	event.Subscribe(bus, func(ev event.ChunkEvent) {
		switch ev.Kind {
		case event.RequestingLoad, event.RequestingUnload:
			s.pending = append(s.pending, ev)
		}
	})
	return s
}

func (s *StreamingSystem) Phase() coresys.Phase { return coresys.PhaseStreaming }

func (s *StreamingSystem) Update(_ time.Duration) {
	s.tick++
	for _, res := range s.io.Poll() {
		s.apply(res)
	}
	for _, ev := range s.pending {
		switch ev.Kind {
		case event.RequestingLoad:
			s.refs[ev.Index]++
			if s.refs[ev.Index] == 1 {
				s.load(ev.Index)
			}
		case event.RequestingUnload:
			n, ok := s.refs[ev.Index]
			if !ok {
				if _, failed := s.retry[ev.Index]; failed {
					s.unload(ev.Index)
				}
				continue
			}
			if n > 1 {
				s.refs[ev.Index] = n - 1
				continue
			}
			delete(s.refs, ev.Index)
			s.unload(ev.Index)
		}
	}
	s.pending = s.pending[:0]
	s.retryUnloads()
}

// retryUnloads resubmits the evictions whose retry tick has come, in chunk
// order.
func (s *StreamingSystem) retryUnloads() {
	var due []planet.ChunkIndex
	for idx, at := range s.retry {
		if at <= s.tick {
			due = append(due, idx)
		}
	}
	slices.SortFunc(due, planet.ChunkIndex.Compare)
	for _, idx := range due {
		s.log.Debug("retrying chunk eviction", zap.Stringer("chunk", idx))
		s.unload(idx)
	}
}

// unloadFailed keeps idx resident and schedules another eviction attempt.
func (s *StreamingSystem) unloadFailed(idx planet.ChunkIndex) {
	s.retry[idx] = s.tick + unloadRetryTicks
	s.emit(event.FailedUnload, idx)
}

func (s *StreamingSystem) emit(kind event.ChunkEventKind, idx planet.ChunkIndex) {
	event.Emit(s.bus, event.ChunkEvent{Kind: kind, Index: idx})
}

func (s *StreamingSystem) load(idx planet.ChunkIndex) {
	delete(s.retry, idx)
	if _, ok := s.evicting[idx]; ok {
		// Still resident: dropping the ticket makes the pending save a plain save.
		delete(s.evicting, idx)
		s.log.Debug("eviction cancelled", zap.Stringer("chunk", idx))
		s.emit(event.Loaded, idx)
		return
	}
	if s.planet.Resident(idx) {
		s.emit(event.Loaded, idx)
		return
	}
	if _, ok := s.loading[idx]; ok {
		return
	}
	if _, ok := s.saved[idx]; ok {
		err := s.io.Submit(ioRequest{op: ioLoad, index: idx, linear: s.planet.LinearIndex(idx)})
		if err == nil {
			s.loading[idx] = struct{}{}
			return
		}
		s.log.Error("queue chunk load failed", zap.Stringer("chunk", idx), zap.Error(err))
	}
	s.generate(idx)
}

func (s *StreamingSystem) generate(idx planet.ChunkIndex) {
	if err := s.planet.NewChunk(idx, s.build); err != nil {
		s.log.Error("generate chunk failed", zap.Stringer("chunk", idx), zap.Error(err))
		delete(s.refs, idx)
		s.emit(event.FailedLoad, idx)
		return
	}
	s.emit(event.Loaded, idx)
}

func (s *StreamingSystem) unload(idx planet.ChunkIndex) {
	delete(s.retry, idx)
	c, err := s.planet.GetChunk(idx)
	if err != nil || c == nil {
		// Not resident, or a load is in flight whose result will be dropped.
		return
	}
	s.ticket++
	err = s.io.Submit(ioRequest{
		op:     ioSave,
		index:  idx,
		linear: s.planet.LinearIndex(idx),
		types:  c.TileTypeMap(),
		ticket: s.ticket,
	})
	if err != nil {
		s.log.Error("queue chunk save failed", zap.Stringer("chunk", idx), zap.Error(err))
		s.unloadFailed(idx)
		return
	}
	s.evicting[idx] = s.ticket
}

func (s *StreamingSystem) apply(res ioResult) {
	idx := res.req.index
	switch res.req.op {
	case ioLoad:
		delete(s.loading, idx)
		if _, wanted := s.refs[idx]; !wanted {
			return
		}
		switch {
		case errors.Is(res.err, errNoChunkFile):
			s.log.Warn("saved chunk file missing, regenerating", zap.Stringer("chunk", idx))
			delete(s.saved, idx)
			s.generate(idx)
		case res.err != nil:
			s.log.Error("load chunk failed", zap.Stringer("chunk", idx), zap.Error(res.err))
			delete(s.refs, idx)
			s.emit(event.FailedLoad, idx)
		default:
			if err := s.planet.RestoreChunk(idx, res.types, s.build); err != nil {
				s.log.Error("restore chunk failed", zap.Stringer("chunk", idx), zap.Error(err))
				delete(s.refs, idx)
				s.emit(event.FailedLoad, idx)
				return
			}
			s.emit(event.Loaded, idx)
		}

	case ioSave:
		ticket, evicting := s.evicting[idx]
		current := evicting && ticket == res.req.ticket
		if res.err != nil {
			s.log.Error("save chunk failed", zap.Stringer("chunk", idx), zap.Error(res.err))
			if current {
				delete(s.evicting, idx)
				s.unloadFailed(idx)
			}
			return
		}
		s.saved[idx] = struct{}{}
		if !current {
			return
		}
		delete(s.evicting, idx)
		if err := s.planet.DeleteChunk(idx, s.build.Store); err != nil {
			s.log.Warn("evict chunk failed", zap.Stringer("chunk", idx), zap.Error(err))
		}
		s.emit(event.Unloaded, idx)
	}
}

// SavedChunks lists every chunk with a file on disk, sorted.
func (s *StreamingSystem) SavedChunks() []planet.ChunkIndex {
	out := make([]planet.ChunkIndex, 0, len(s.saved))
	for c := range s.saved {
		out = append(out, c)
	}
	slices.SortFunc(out, planet.ChunkIndex.Compare)
	return out
}

// Loading reports how many background loads are outstanding.
func (s *StreamingSystem) Loading() int { return len(s.loading) }

// Evicting reports how many chunks wait for their save before eviction.
func (s *StreamingSystem) Evicting() int { return len(s.evicting) }

// Retrying reports how many unrequested chunks stay resident because their
// save failed.
func (s *StreamingSystem) Retrying() int { return len(s.retry) }

// Shutdown stops background I/O, applies the results that were still in
// flight, then synchronously saves every resident chunk and deletes its tile
// entities. The planet is empty afterwards. Errors of individual chunks are
// joined; the remaining chunks are still saved. If the worker does not stop
// in time, chunks whose save it still holds are left to it.
func (s *StreamingSystem) Shutdown(ctx context.Context, store planet.ChunkWriter) error {
	var errs []error
	closeErr := s.io.Close(ctx)
	if closeErr != nil {
		errs = append(errs, closeErr)
	}
	for _, res := range s.io.Poll() {
		s.apply(res)
	}
	inFlight := make(map[planet.ChunkIndex]struct{})
	if closeErr != nil {
		for idx := range s.evicting {
			inFlight[idx] = struct{}{}
		}
	}
	s.pending = s.pending[:0]
	clear(s.refs)
	clear(s.evicting)
	clear(s.retry)

	saved, failed, skipped := 0, 0, 0
	for _, e := range s.planet.DrainChunks() {
		if _, ok := inFlight[e.Index]; ok {
			s.log.Warn("chunk save still in flight, not rewriting", zap.Stringer("chunk", e.Index))
			skipped++
		} else if err := store.WriteChunk(s.planet.LinearIndex(e.Index), e.Chunk.TileTypeMap()); err != nil {
			errs = append(errs, fmt.Errorf("save chunk %s: %w", e.Index, err))
			failed++
		} else {
			s.saved[e.Index] = struct{}{}
			saved++
		}
		for _, id := range e.Chunk.TileEntities() {
			if err := s.build.Store.Delete(id); err != nil {
				s.log.Warn("delete tile entity failed", zap.Stringer("chunk", e.Index), zap.Error(err))
			}
		}
	}
	s.log.Info("chunks saved on shutdown",
		zap.Int("saved", saved), zap.Int("failed", failed), zap.Int("skipped", skipped))
	return errors.Join(errs...)
}
