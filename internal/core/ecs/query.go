package ecs

// Each2 iterates over entities that have both component A and B.
// It walks the smaller store and probes the larger one.
func Each2[A, B any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], fn func(EntityID, *A, *B)) {
	if sa.Len() <= sb.Len() {
		for i, id := range sa.ids {
			if b, ok := sb.Get(id); ok {
				fn(id, sa.items[i], b)
			}
		}
		return
	}
	for i, id := range sb.ids {
		if a, ok := sa.Get(id); ok {
			fn(id, a, sb.items[i])
		}
	}
}

// Each3 iterates over entities that have components A, B, and C.
func Each3[A, B, C any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], sc *PtrComponentStore[C], fn func(EntityID, *A, *B, *C)) {
	var driver []EntityID
	switch smallest(sa.Len(), sb.Len(), sc.Len()) {
	case 0:
		driver = sa.ids
	case 1:
		driver = sb.ids
	default:
		driver = sc.ids
	}
	for _, id := range driver {
		a, ok := sa.Get(id)
		if !ok {
			continue
		}
		b, ok := sb.Get(id)
		if !ok {
			continue
		}
		c, ok := sc.Get(id)
		if !ok {
			continue
		}
		fn(id, a, b, c)
	}
}

// Each4 iterates over entities that have components A, B, C and D.
// The driving store is sd: callers pass the most selective component last
// (Engine, Position) so tile entities are never visited.
func Each4[A, B, C, D any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], sc *PtrComponentStore[C], sd *PtrComponentStore[D], fn func(EntityID, *A, *B, *C, *D)) {
	for i, id := range sd.ids {
		a, ok := sa.Get(id)
		if !ok {
			continue
		}
		b, ok := sb.Get(id)
		if !ok {
			continue
		}
		c, ok := sc.Get(id)
		if !ok {
			continue
		}
		fn(id, a, b, c, sd.items[i])
	}
}

func smallest(lens ...int) int {
	which := 0
	for i, n := range lens {
		if n < lens[which] {
			which = i
		}
	}
	return which
}
