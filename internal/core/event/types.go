package event

import "github.com/deepcore/drillship/internal/planet"

// ChunkEventKind tags a ChunkEvent.
type ChunkEventKind uint8

const (
	RequestingLoad ChunkEventKind = iota
	Loaded
	FailedLoad
	RequestingUnload
	Unloaded
	FailedUnload
)

func (k ChunkEventKind) String() string {
	switch k {
	case RequestingLoad:
		return "RequestingLoad"
	case Loaded:
		return "Loaded"
	case FailedLoad:
		return "FailedLoad"
	case RequestingUnload:
		return "RequestingUnload"
	case Unloaded:
		return "Unloaded"
	case FailedUnload:
		return "FailedUnload"
	}
	return "Unknown"
}

// ChunkEvent is broadcast by position tracking (requests) and by the
// streaming controller (outcomes).
type ChunkEvent struct {
	Kind  ChunkEventKind
	Index planet.ChunkIndex
}
