package boat

import (
	"fmt"
	"math"

	"github.com/zeusync/sailsim/internal/core/models"
	"github.com/zeusync/sailsim/internal/core/systems/physics"
)

// Limits keep a boat from running away when something goes wrong.
type Limits struct {
	// Maximum speed, m/s.
	Speed float64 `json:"speed" yaml:"speed"`
	// Maximum angular speed, degrees per second.
	AngularSpeed float64 `json:"angular_speed" yaml:"angular_speed"`
	// Maximum rudder movement, degrees per second. Negative means unlimited.
	RudderRate float64 `json:"rudder_rate" yaml:"rudder_rate"`
}

// fullStep advances a boat's integrator by one tick.
var fullStep = physics.FullStep[*Type, Environment, *Integrator]

// Boat is one simulated boat: its shared type, its integrable state and the
// inputs waiting for the next tick. A Boat has a single owner.
type Boat struct {
	static  *Type
	physics *Integrator
	pending Inputs
}

// New returns a boat of type t at rest at pose. Boats of the same type share
// t; it must not be modified afterwards.
func New(t *Type, pose physics.Iso) (*Boat, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Boat{
		static:  t,
		physics: &Integrator{State: t.NewState(pose)},
	}, nil
}

// Restore returns a boat of type t continuing from a saved state.
func Restore(t *Type, state State) (*Boat, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if state.TypeName != t.Name {
		return nil, fmt.Errorf("%w: state is for boat type %q, not %q", physics.ErrInvalidConfiguration, state.TypeName, t.Name)
	}
	if err := state.Sails.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", physics.ErrInvalidConfiguration, err)
	}
	for ref := range state.Sails.All() {
		if _, ok := t.sailSpec(ref); !ok {
			return nil, fmt.Errorf("%w: sail %s not in boat type %q", physics.ErrStructuralMismatch, ref, t.Name)
		}
	}
	return &Boat{static: t, physics: &Integrator{State: state.Clone()}}, nil
}

// Type returns the boat's shared type.
func (b *Boat) Type() *Type { return b.static }

// State returns a copy of the boat's current state.
func (b *Boat) State() State { return b.physics.State.Clone() }

// Sails returns the boat's sails for resolving queries.
func (b *Boat) Sails() *models.Dataset[SailState] { return &b.physics.State.Sails }

// Queue merges in over the inputs waiting for the next tick and returns the
// sheeting targets that name no sail of this boat.
func (b *Boat) Queue(in Inputs) []models.Query[SailState] {
	return b.pending.Merge(in, &b.physics.State.Sails)
}

// Update runs one tick: pending inputs are applied to the starting state,
// then the state is advanced with physics.FullStep and clamped to limits.
// On error the boat is left exactly as it was before the tick.
func (b *Boat) Update(dt float64, env Environment, limits Limits) error {
	before := b.physics.Clone()
	pending := b.pending

	b.pending.apply(&b.physics.State, b.static.maxRudderAngle(), limits.RudderRate*dt)
	if err := fullStep(b.physics, dt, b.static, env); err != nil {
		b.physics = before
		b.pending = pending
		return fmt.Errorf("boat step: %w", err)
	}
	b.clamp(limits)
	return nil
}

// Ground stops the boat dead and takes damage proportional to its speed.
func (b *Boat) Ground(damagePerSpeed float64) float64 {
	s := &b.physics.State
	damage := s.Speed() * damagePerSpeed
	s.HullHP = math.Max(0, s.HullHP-damage)
	s.Velocity = physics.Vec2{}
	s.AngularVelocity = 0
	return damage
}

// Outline returns the hull perimeter in world coordinates, or just the
// boat's position when its type has no perimeter.
func (b *Boat) Outline() []physics.Vec2 {
	pose := b.physics.State.Pose
	if len(b.static.Perimeter) == 0 {
		return []physics.Vec2{pose.Translation}
	}
	out := make([]physics.Vec2, len(b.static.Perimeter))
	for i, p := range b.static.Perimeter {
		out[i] = pose.Apply(p)
	}
	return out
}

// MoveTo puts the boat at p without touching its heading or motion.
func (b *Boat) MoveTo(p physics.Vec2) {
	b.physics.State.Pose.Translation = p
}

func (b *Boat) clamp(limits Limits) {
	s := &b.physics.State
	if limits.Speed > 0 {
		s.Velocity = s.Velocity.ClampLen(limits.Speed)
	}
	if limits.AngularSpeed > 0 {
		limit := deg2rad(limits.AngularSpeed)
		s.AngularVelocity = physics.Clamp(s.AngularVelocity, -limit, limit)
	}
}
