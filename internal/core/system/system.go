package system

import "time"

// Phase defines execution ordering within a single tick.
// A tick runs to completion before the next one starts; systems in the same
// phase run in registration order.
type Phase int

const (
	PhaseInput     Phase = iota // 0: sample input axes
	PhasePreUpdate              // 1: deliver last tick's events
	PhaseForces                 // 2: gravitation, then engine thrust
	PhaseMovement               // 3: integrate velocity and translation
	PhasePosition               // 4: derive chunk/tile indices, emit streaming requests
	PhaseStreaming              // 5: mutate the planet's chunk map
	PhasePersist                // 6: periodic session save
	PhaseCleanup                // 7: destroy queued entities
)

// System is the interface every ECS system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
