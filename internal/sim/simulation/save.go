package simulation

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/zeusync/sailsim/internal/core/models"
	"github.com/zeusync/sailsim/internal/core/observability/log"
	"github.com/zeusync/sailsim/internal/core/systems/physics"
	"github.com/zeusync/sailsim/internal/sim/boat"
	"github.com/zeusync/sailsim/internal/sim/trace"
	"github.com/zeusync/sailsim/internal/sim/wind"
	"github.com/zeusync/sailsim/internal/sim/world"
	"github.com/zeusync/sailsim/pkg/concurrent"
)

// ClientSave is one client in a Save.
type ClientSave struct {
	Finished  bool           `json:"finished" yaml:"finished"`
	Paused    bool           `json:"paused" yaml:"paused"`
	Tracer    []physics.Vec2 `json:"tracer" yaml:"tracer"`
	Elapsed   float64        `json:"time_since_reset" yaml:"time_since_reset"`
	BestTime  float64        `json:"best_time" yaml:"best_time"`
	BoatStart boat.State     `json:"boat_start" yaml:"boat_start"`
	Boat      boat.State     `json:"boat" yaml:"boat"`
}

// Save is a snapshot of a whole simulation. Maps and boat types are not
// part of it; they are supplied again on Restore.
type Save struct {
	ID       uuid.UUID                  `json:"id" yaml:"id"`
	MapName  string                     `json:"map_name" yaml:"map_name"`
	Settings Settings                   `json:"settings" yaml:"settings"`
	Paused   bool                       `json:"paused" yaml:"paused"`
	Tick     uint64                     `json:"tick" yaml:"tick"`
	Time     float64                    `json:"time" yaml:"time"`
	Wind     wind.SaveState             `json:"wind" yaml:"wind"`
	Clients  models.Dataset[ClientSave] `json:"clients" yaml:"clients"`
}

func (s *Simulation) Save() (Save, error) {
	gen, err := s.wind.Save()
	if err != nil {
		return Save{}, err
	}
	clients := models.NewDataset[ClientSave]()
	for ref, c := range s.clients.All() {
		err := clients.InsertRef(models.UnsafeReinterpret[ClientSave](ref), ClientSave{
			Finished:  c.finished,
			Paused:    c.paused,
			Tracer:    c.Tracer(),
			Elapsed:   c.elapsed,
			BestTime:  c.best,
			BoatStart: c.start.Clone(),
			Boat:      c.boat.State(),
		})
		if err != nil {
			return Save{}, err
		}
	}
	return Save{
		ID:       s.id,
		MapName:  s.course.Name,
		Settings: s.settings,
		Paused:   s.paused,
		Tick:     s.tick,
		Time:     s.time,
		Wind:     gen,
		Clients:  clients,
	}, nil
}

// Restore resumes a saved simulation on course. Every boat in the save must
// be of one of types.
func Restore(save Save, course *world.Map, types []*boat.Type, tr *trace.Writer, logger log.Log) (*Simulation, error) {
	if save.MapName != course.Name {
		return nil, fmt.Errorf("%w: save is for map %q, not %q", ErrInvalidSettings, save.MapName, course.Name)
	}
	if err := save.Clients.Validate(); err != nil {
		return nil, err
	}
	gen, err := wind.Restore(save.Wind)
	if err != nil {
		return nil, err
	}
	s, err := newSimulation(save.ID, save.Settings, course, types, gen, tr, logger)
	if err != nil {
		return nil, err
	}
	s.paused, s.tick, s.time = save.Paused, save.Tick, save.Time

	restored := make([]*Client, save.Clients.Len())
	err = concurrent.Each(context.Background(), save.Clients.Items, s.settings.Workers,
		func(_ context.Context, i int, e models.Entry[ClientSave]) error {
			c, err := s.restoreClient(e.Value)
			if err != nil {
				return fmt.Errorf("client %s: %w", e.Ref, err)
			}
			restored[i] = c
			return nil
		})
	if err != nil {
		return nil, err
	}
	for i, c := range restored {
		ref := models.UnsafeReinterpret[*Client](save.Clients.At(i).Ref)
		if err := s.clients.InsertRef(ref, c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Simulation) restoreClient(cs ClientSave) (*Client, error) {
	t, ok := s.types[cs.Boat.TypeName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBoatType, cs.Boat.TypeName)
	}
	b, err := boat.Restore(t, cs.Boat)
	if err != nil {
		return nil, err
	}
	if _, err := boat.Restore(t, cs.BoatStart); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	return &Client{
		boat:     b,
		start:    cs.BoatStart.Clone(),
		tracer:   append([]physics.Vec2(nil), cs.Tracer...),
		elapsed:  cs.Elapsed,
		best:     cs.BestTime,
		finished: cs.Finished,
		paused:   cs.Paused,
	}, nil
}
