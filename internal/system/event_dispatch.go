package system

import (
	"time"

	"github.com/deepcore/drillship/internal/core/event"
	coresys "github.com/deepcore/drillship/internal/core/system"
)

// EventDispatchSystem makes last tick's events visible and delivers them to
// subscribers. Phase 1 (PreUpdate).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
