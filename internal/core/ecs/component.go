package ecs

// Removable is implemented by all component stores so the Registry can
// strip an entity from every store when it is destroyed.
type Removable interface {
	Remove(id EntityID) bool
}

// PtrComponentStore holds one component type as a sparse set: a dense slice
// of (entity, component) pairs plus an entity → slot index. Iteration walks
// the dense slice, so it is deterministic for a given sequence of Set and
// Remove calls. Remove swaps the last pair into the freed slot.
type PtrComponentStore[T any] struct {
	ids   []EntityID
	items []*T
	slot  map[EntityID]int
}

func NewPtrComponentStore[T any]() *PtrComponentStore[T] {
	return &PtrComponentStore[T]{
		ids:   make([]EntityID, 0, 256),
		items: make([]*T, 0, 256),
		slot:  make(map[EntityID]int, 256),
	}
}

// Set adds or replaces the component of id.
func (s *PtrComponentStore[T]) Set(id EntityID, c *T) {
	if i, ok := s.slot[id]; ok {
		s.items[i] = c
		return
	}
	s.slot[id] = len(s.ids)
	s.ids = append(s.ids, id)
	s.items = append(s.items, c)
}

func (s *PtrComponentStore[T]) Get(id EntityID) (*T, bool) {
	i, ok := s.slot[id]
	if !ok {
		return nil, false
	}
	return s.items[i], true
}

// Remove deletes the component of id, reporting whether there was one.
func (s *PtrComponentStore[T]) Remove(id EntityID) bool {
	i, ok := s.slot[id]
	if !ok {
		return false
	}
	last := len(s.ids) - 1
	if i != last {
		s.ids[i], s.items[i] = s.ids[last], s.items[last]
		s.slot[s.ids[i]] = i
	}
	s.items[last] = nil
	s.ids, s.items = s.ids[:last], s.items[:last]
	delete(s.slot, id)
	return true
}

func (s *PtrComponentStore[T]) Has(id EntityID) bool {
	_, ok := s.slot[id]
	return ok
}

func (s *PtrComponentStore[T]) Len() int {
	return len(s.ids)
}

// Each visits every stored component in slot order. fn must not add or
// remove components of this store; mark entities for destruction instead.
func (s *PtrComponentStore[T]) Each(fn func(EntityID, *T)) {
	for i, id := range s.ids {
		fn(id, s.items[i])
	}
}

// Register creates a store for T and registers it so destroyed entities are
// removed from it automatically.
func Register[T any](r *Registry) *PtrComponentStore[T] {
	s := NewPtrComponentStore[T]()
	r.Register(s)
	return s
}
