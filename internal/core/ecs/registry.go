package ecs

// Registry tracks every component store for bulk cleanup on destroy.
type Registry struct {
	stores []Removable
}

func NewRegistry() *Registry {
	return &Registry{stores: make([]Removable, 0, 16)}
}

func (r *Registry) Register(store Removable) {
	r.stores = append(r.stores, store)
}

// Stores returns how many component stores are registered.
func (r *Registry) Stores() int { return len(r.stores) }

// RemoveAll strips id from every registered store and returns how many
// components it had.
func (r *Registry) RemoveAll(id EntityID) int {
	n := 0
	for _, s := range r.stores {
		if s.Remove(id) {
			n++
		}
	}
	return n
}
