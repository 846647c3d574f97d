package simulation

import (
	"fmt"

	"github.com/zeusync/sailsim/internal/core/models"
	"github.com/zeusync/sailsim/internal/core/observability/log"
	"github.com/zeusync/sailsim/internal/core/systems/physics"
	"github.com/zeusync/sailsim/internal/sim/boat"
	"github.com/zeusync/sailsim/internal/sim/world"
)

// Client is one participant: a boat plus its run on the course.
type Client struct {
	boat  *boat.Boat
	start boat.State

	tracer   []physics.Vec2
	elapsed  float64
	best     float64
	finished bool
	paused   bool
	idle     float64
}

func newClient(b *boat.Boat) *Client {
	c := &Client{boat: b, start: b.State()}
	c.tracer = append(c.tracer, c.start.Pose.Translation)
	return c
}

// Boat returns the client's boat state.
func (c *Client) Boat() boat.State { return c.boat.State() }

// Tracer returns the recorded path.
func (c *Client) Tracer() []physics.Vec2 { return append([]physics.Vec2(nil), c.tracer...) }

// Elapsed is the time on the course since the last reset, s.
func (c *Client) Elapsed() float64 { return c.elapsed }

// BestTime is the fastest finish so far, or 0 before the first one.
func (c *Client) BestTime() float64 { return c.best }

func (c *Client) Finished() bool { return c.finished }
func (c *Client) Paused() bool   { return c.paused }

// reset puts the boat back at its start and clears the run, keeping the best
// time.
func (c *Client) reset() error {
	b, err := boat.Restore(c.boat.Type(), c.start)
	if err != nil {
		return err
	}
	c.boat = b
	c.tracer = append(c.tracer[:0], c.start.Pose.Translation)
	c.elapsed = 0
	c.finished = false
	return nil
}

type stepContext struct {
	tick     uint64
	dt       float64
	wind     physics.Vec2
	settings *Settings
	course   *world.Map
	log      log.Log
	publish  func(Event)
	update   func(b *boat.Boat, dt float64, env boat.Environment, limits boat.Limits) error
}

func (c *Client) step(ref models.Ref[*Client], sc stepContext) error {
	if c.paused {
		return nil
	}
	c.idle += sc.dt
	if st := c.boat.State(); st.Sunk() {
		return nil
	}

	before := c.boat.State().Pose.Translation
	if err := sc.update(c.boat, sc.dt, boat.Environment{Wind: sc.wind}, sc.settings.limits()); err != nil {
		sc.log.Warn("boat step failed, tick rolled back",
			log.Stringer("client", ref),
			log.Float64("dt", sc.dt),
			log.Error(err),
		)
		sc.publish(Event{Kind: EventStepFailed, Client: ref, Tick: sc.tick, Err: err})
		return fmt.Errorf("client %s: %w", ref, err)
	}

	at := c.boat.State().Pose.Translation
	if land, hit := c.collision(sc.course); hit {
		damage := c.boat.Ground(sc.settings.GroundingDamage)
		c.boat.MoveTo(before)
		at = before
		if land != nil {
			sc.log.Info("boat ran aground",
				log.Stringer("client", ref),
				log.Stringer("landmass", *land),
				log.Float64("damage", damage),
			)
		} else {
			sc.log.Info("boat hit the map edge",
				log.Stringer("client", ref),
				log.Float64("damage", damage),
			)
		}
		sc.publish(Event{Kind: EventGrounded, Client: ref, Tick: sc.tick, Value: damage})
	}

	if !c.finished {
		c.elapsed += sc.dt
		if sc.course.Finished(at) {
			c.finished = true
			if c.best == 0 || c.elapsed < c.best {
				c.best = c.elapsed
			}
			sc.log.Info("client finished",
				log.Stringer("client", ref),
				log.Float64("time", c.elapsed),
				log.Float64("best", c.best),
			)
			sc.publish(Event{Kind: EventFinished, Client: ref, Tick: sc.tick, Value: c.elapsed})
		}
	}

	if sc.settings.TracerEnabled {
		if n := len(c.tracer); n == 0 || physics.Distance2(c.tracer[n-1], at) >= sc.settings.TracerResolution {
			c.tracer = append(c.tracer, at)
		}
	}
	return nil
}

// collision reports whether any point of the hull is on land or off the map.
// The landmass is nil for the map edge.
func (c *Client) collision(course *world.Map) (*models.Ref[world.Landmass], bool) {
	for _, p := range c.boat.Outline() {
		if land, ok := course.LandAt(p); ok {
			return &land, true
		}
		if !course.InBounds(p) {
			return nil, true
		}
	}
	return nil, false
}
