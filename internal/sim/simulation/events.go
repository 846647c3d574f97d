package simulation

import (
	"github.com/zeusync/sailsim/internal/core/events/bus"
	"github.com/zeusync/sailsim/internal/core/models"
	"github.com/zeusync/sailsim/internal/core/observability/log"
)

const (
	EventJoined     = "joined"
	EventFinished   = "finished"
	EventGrounded   = "grounded"
	EventStepFailed = "step_failed"
	EventReset      = "reset"
)

// Event reports something that happened to one client. Events from one
// Step may arrive in any order across clients.
type Event struct {
	Kind   string
	Client models.Ref[*Client]
	Tick   uint64
	// Course time for finishes, hull damage for groundings.
	Value float64
	Err   error
}

func (e Event) EventKind() string { return e.Kind }

// Events returns the bus the simulation publishes on.
func (s *Simulation) Events() *bus.Bus[Event] { return s.events }

func (s *Simulation) publish(e Event) {
	if err := s.events.Publish(e); err != nil {
		s.logger.Warn("event handler failed", log.String("kind", e.Kind), log.Error(err))
	}
}
