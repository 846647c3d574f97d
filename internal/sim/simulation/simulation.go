package simulation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/zeusync/sailsim/internal/core/events/bus"
	"github.com/zeusync/sailsim/internal/core/models"
	"github.com/zeusync/sailsim/internal/core/observability/log"
	"github.com/zeusync/sailsim/internal/core/systems/physics"
	"github.com/zeusync/sailsim/internal/sim/boat"
	"github.com/zeusync/sailsim/internal/sim/trace"
	"github.com/zeusync/sailsim/internal/sim/wind"
	"github.com/zeusync/sailsim/internal/sim/world"
	"github.com/zeusync/sailsim/pkg/concurrent"
)

// Options are the per-run inputs that are not settings.
type Options struct {
	Wind wind.Params
	// Where the wind initially blows toward, degrees.
	WindDirection float64
	Seed          uint64
	// Every tick is recorded here when set. The simulation does not close it.
	Trace *trace.Writer
}

// Simulation runs any number of boats on one course in one wind. A
// Simulation has a single owner; boats are stepped in parallel inside Step.
type Simulation struct {
	id       uuid.UUID
	settings Settings
	course   *world.Map
	types    map[string]*boat.Type
	wind     *wind.Generator
	clients  models.Dataset[*Client]
	paused   bool
	tick     uint64
	time     float64
	trace    *trace.Writer
	events   *bus.Bus[Event]
	logger   log.Log

	// updateBoat runs one boat's tick.
	updateBoat func(b *boat.Boat, dt float64, env boat.Environment, limits boat.Limits) error
}

// New starts an empty simulation on course with the given boat types
// available.
func New(settings Settings, course *world.Map, types []*boat.Type, opts Options, logger log.Log) (*Simulation, error) {
	gen, err := wind.New(opts.Wind, opts.WindDirection, opts.Seed)
	if err != nil {
		return nil, err
	}
	return newSimulation(uuid.New(), settings, course, types, gen, opts.Trace, logger)
}

func newSimulation(
	id uuid.UUID,
	settings Settings,
	course *world.Map,
	types []*boat.Type,
	gen *wind.Generator,
	tr *trace.Writer,
	logger log.Log,
) (*Simulation, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if err := course.Validate(); err != nil {
		return nil, err
	}
	index := make(map[string]*boat.Type, len(types))
	for _, t := range types {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, dup := index[t.Name]; dup {
			return nil, fmt.Errorf("%w: boat type %q defined twice", ErrInvalidSettings, t.Name)
		}
		index[t.Name] = t
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Simulation{
		id:       id,
		settings: settings,
		course:   course,
		types:    index,
		wind:     gen,
		clients:  models.NewDataset[*Client](),
		trace:    tr,
		events:   bus.New[Event](),
		logger:   logger.With(log.Stringer("simulation", id)),

		updateBoat: (*boat.Boat).Update,
	}, nil
}

func (s *Simulation) ID() uuid.UUID         { return s.id }
func (s *Simulation) Settings() Settings    { return s.settings }
func (s *Simulation) Course() *world.Map    { return s.course }
func (s *Simulation) Tick() uint64          { return s.tick }
func (s *Simulation) Time() float64         { return s.time }
func (s *Simulation) Wind() physics.Vec2    { return s.wind.Vector() }
func (s *Simulation) Paused() bool          { return s.paused }
func (s *Simulation) SetPaused(paused bool) { s.paused = paused }

// Clients returns the refs of every client in join order.
func (s *Simulation) Clients() []models.Ref[*Client] { return s.clients.Refs() }

func (s *Simulation) Client(q models.Query[*Client]) (*Client, bool) {
	e, ok := s.clients.Find(q)
	return e.Value, ok
}

// AddClient spawns a boat of the named type at the course start, facing the
// end, and registers it under name.
func (s *Simulation) AddClient(name, boatType string) (models.Ref[*Client], error) {
	t, ok := s.types[boatType]
	if !ok {
		return models.Ref[*Client]{}, fmt.Errorf("%w: %q", ErrUnknownBoatType, boatType)
	}
	if _, taken := s.clients.Find(models.ByAlias[*Client](name)); taken {
		return models.Ref[*Client]{}, fmt.Errorf("%w: %q", ErrClientExists, name)
	}
	heading := s.course.End.Sub(s.course.Start).Angle()
	b, err := boat.New(t, physics.NewIso(s.course.Start.X, s.course.Start.Y, heading))
	if err != nil {
		return models.Ref[*Client]{}, err
	}

	ref := s.clients.Insert(newClient(b))
	ref, _ = s.clients.SetAlias(ref.ToQuery(), name)
	s.logger.Debug("client joined", log.Stringer("client", ref), log.String("boat_type", boatType))
	s.publish(Event{Kind: EventJoined, Client: ref, Tick: s.tick})
	return ref, nil
}

func (s *Simulation) RemoveClient(q models.Query[*Client]) bool {
	return s.clients.Remove(q)
}

// Queue hands inputs to a client's boat for the next tick and returns the
// sheeting targets that name no sail.
func (s *Simulation) Queue(q models.Query[*Client], in boat.Inputs) ([]models.Query[boat.SailState], error) {
	c, ok := s.Client(q)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClient, q)
	}
	c.idle = 0
	return c.boat.Queue(in), nil
}

// Reset sends a client back to its start.
func (s *Simulation) Reset(q models.Query[*Client]) error {
	e, ok := s.clients.Find(q)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownClient, q)
	}
	if err := e.Value.reset(); err != nil {
		return err
	}
	s.publish(Event{Kind: EventReset, Client: e.Ref, Tick: s.tick})
	return nil
}

func (s *Simulation) SetClientPaused(q models.Query[*Client], paused bool) error {
	c, ok := s.Client(q)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownClient, q)
	}
	c.paused = paused
	return nil
}

// Connected reports whether the client has sent input within the client
// timeout.
func (s *Simulation) Connected(q models.Query[*Client]) bool {
	c, ok := s.Client(q)
	return ok && c.idle < s.settings.ClientTimeout
}

// Step advances the whole simulation by dt seconds, clamped to the maximum
// time step. Boats that fail are rolled back to the start of the tick and
// reported; the others keep their progress.
func (s *Simulation) Step(ctx context.Context, dt float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.paused || !(dt > 0) {
		return nil
	}
	if dt > s.settings.MaxTimeStep {
		s.logger.Debug("time step clamped",
			log.Float64("requested", dt),
			log.Float64("max", s.settings.MaxTimeStep),
		)
		dt = s.settings.MaxTimeStep
	}

	s.tick++
	s.time += dt
	s.wind.Step(dt)
	sc := stepContext{
		tick:     s.tick,
		dt:       dt,
		wind:     s.wind.Vector(),
		settings: &s.settings,
		course:   s.course,
		log:      s.logger,
		publish:  s.publish,
		update:   s.updateBoat,
	}
	err := concurrent.EachJoin(ctx, s.clients.Items, s.settings.Workers,
		func(_ context.Context, _ int, e models.Entry[*Client]) error {
			return e.Value.step(e.Ref, sc)
		})

	if s.trace != nil {
		if terr := s.trace.Write(s.traceTick(dt)); terr != nil {
			err = errors.Join(err, fmt.Errorf("trace: %w", terr))
		}
	}
	return err
}

func (s *Simulation) traceTick(dt float64) trace.Tick {
	boats := concurrent.ParallelMap(s.clients.Items, s.settings.Workers, func(e models.Entry[*Client]) trace.Boat {
		state := e.Value.boat.State()
		name, _ := e.Ref.Alias()
		return trace.Boat{
			ID:     e.Ref.ID,
			Name:   name,
			Pose:   state.Pose,
			Digest: state.Digest(),
		}
	})
	return trace.Tick{
		Tick:  s.tick,
		Time:  s.time,
		Dt:    dt,
		Wind:  s.wind.Vector(),
		Boats: boats,
	}
}
