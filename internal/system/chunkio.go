package system

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/deepcore/drillship/internal/planet"
	"go.uber.org/zap"
)

// ChunkStore is the savegame side of streaming: write and read chunk files
// and find the file saved for a linear index.
type ChunkStore interface {
	planet.ChunkWriter
	planet.ChunkReader
	FindChunk(linear uint64) (string, bool)
}

// ChunkCatalog optionally records chunk saves outside the savegame files.
type ChunkCatalog interface {
	RecordChunkSave(ctx context.Context, game string, linear uint64, tiles int, digest [32]byte) error
}

// errNoChunkFile is returned by a load when no file exists for the chunk.
var errNoChunkFile = errors.New("no chunk file")

type ioOp uint8

const (
	ioLoad ioOp = iota
	ioSave
)

type ioRequest struct {
	op     ioOp
	index  planet.ChunkIndex
	linear uint64
	types  map[planet.TileIndex]planet.TileType // save only
	ticket uint64
}

type ioResult struct {
	req   ioRequest
	types map[planet.TileIndex]planet.TileType // load only
	err   error
}

// ChunkIO runs chunk file reads and writes on one background goroutine.
// Requests and results travel over channels; the game loop never blocks on
// disk except in Close.
type ChunkIO struct {
	store   ChunkStore
	catalog ChunkCatalog
	game    string
	log     *zap.Logger

	requests chan ioRequest
	results  chan ioResult

	mu      sync.Mutex // guards backlog
	backlog []ioResult
	closed  bool
	done    chan struct{}
}

// NewChunkIO starts the worker. catalog may be nil.
func NewChunkIO(store ChunkStore, catalog ChunkCatalog, game string, queueLen int, log *zap.Logger) *ChunkIO {
	if queueLen <= 0 {
		queueLen = 64
	}
	c := &ChunkIO{
		store:    store,
		catalog:  catalog,
		game:     game,
		log:      log,
		requests: make(chan ioRequest, queueLen),
		results:  make(chan ioResult, queueLen),
		done:     make(chan struct{}),
	}
	go c.run()
	return c
}

func (c *ChunkIO) run() {
	defer close(c.done)
	for req := range c.requests {
		res := c.handle(req)
		select {
		case c.results <- res:
		default:
			// The loop is behind; park the result instead of blocking the
			// worker so new requests keep flowing.
			c.mu.Lock()
			c.backlog = append(c.backlog, res)
			c.mu.Unlock()
		}
	}
}

func (c *ChunkIO) handle(req ioRequest) ioResult {
	res := ioResult{req: req}
	switch req.op {
	case ioLoad:
		path, ok := c.store.FindChunk(req.linear)
		if !ok {
			res.err = errNoChunkFile
			return res
		}
		res.types, res.err = c.store.ReadChunk(path)
	case ioSave:
		res.err = c.store.WriteChunk(req.linear, req.types)
		if res.err == nil && c.catalog != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := c.catalog.RecordChunkSave(ctx, c.game, req.linear, len(req.types), planet.DigestTypes(req.types))
			cancel()
			if err != nil {
				c.log.Warn("catalog chunk save failed", zap.Uint64("linear", req.linear), zap.Error(err))
			}
		}
	}
	return res
}

// Submit queues a request. It blocks only while the request queue is full.
// Submit and Close are called from the game loop goroutine only.
func (c *ChunkIO) Submit(req ioRequest) error {
	if c.closed {
		return fmt.Errorf("chunk io: submit %s after close", req.index)
	}
	c.requests <- req
	return nil
}

// Poll returns every result that is ready without waiting.
func (c *ChunkIO) Poll() []ioResult {
	var out []ioResult
	for {
		select {
		case res := <-c.results:
			out = append(out, res)
		default:
			c.mu.Lock()
			out = append(out, c.backlog...)
			c.backlog = c.backlog[:0]
			c.mu.Unlock()
			return out
		}
	}
}

// Close stops accepting requests and waits for the worker to finish those
// already queued, or for ctx to end. Results stay available to Poll.
func (c *ChunkIO) Close(ctx context.Context) error {
	if !c.closed {
		c.closed = true
		close(c.requests)
	}
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("chunk io: waiting for worker: %w", ctx.Err())
	}
}
