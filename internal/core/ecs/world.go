package ecs

import (
	"errors"
	"fmt"
)

// ErrStaleEntity is returned when destroying an entity that is not alive.
var ErrStaleEntity = errors.New("stale entity")

// World is the top-level ECS container. It owns the entity pool, the component
// registry and a deferred destruction queue flushed by CleanupSystem each tick.
type World struct {
	pool         *EntityPool
	registry     *Registry
	destroyQueue []EntityID
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		registry:     NewRegistry(),
		destroyQueue: make([]EntityID, 0, 64),
	}
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// Destroy removes an entity and all of its components immediately.
// Chunk eviction uses this path so the tile entities of an unloaded chunk are
// gone before the same chunk can be streamed back in.
func (w *World) Destroy(id EntityID) error {
	if !w.pool.Alive(id) {
		return fmt.Errorf("destroy entity %d: %w", id, ErrStaleEntity)
	}
	w.registry.RemoveAll(id)
	w.pool.Destroy(id)
	return nil
}

// MarkForDestruction queues an entity for end-of-tick cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// FlushDestroyQueue destroys all queued entities and clears their components.
// Entities destroyed earlier in the tick are skipped.
func (w *World) FlushDestroyQueue() int {
	n := 0
	for _, id := range w.destroyQueue {
		if !w.pool.Alive(id) {
			continue
		}
		w.registry.RemoveAll(id)
		w.pool.Destroy(id)
		n++
	}
	w.destroyQueue = w.destroyQueue[:0]
	return n
}

// Live returns the number of live entities.
func (w *World) Live() int { return w.pool.Live() }
