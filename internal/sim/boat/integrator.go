package boat

import (
	"math"

	"github.com/zeusync/sailsim/internal/core/systems/physics"
)

// Environment is what a boat needs from the world for one step.
type Environment struct {
	// True wind, world frame, m/s.
	Wind physics.Vec2
}

// Integrator steps a boat's State. Its Static is the shared *Type.
type Integrator struct {
	State State
}

var _ physics.Integrator[*Type, Environment, *Integrator] = (*Integrator)(nil)

func (b *Integrator) Clone() *Integrator {
	return &Integrator{State: b.State.Clone()}
}

func (b *Integrator) Merge(other *Integrator, _ *Type, _ Environment) error {
	return b.State.Merge(other.State)
}

// PartialStep advances the boat by dt with a simplified force model: every
// sail swings as a flat foil in the apparent wind up to its sheeting limit,
// and the sail, rudder, hull and rigging forces drive the hull as a rigid
// body. Body frame is +X forward, +Y to port.
func (b *Integrator) PartialStep(dt float64, t *Type, env Environment) {
	s := &b.State
	// Merging sums rotations without renormalizing, so bring the length back
	// to one here before it can overflow over many ticks.
	s.Pose = s.Pose.Normalized()
	heading := s.Pose.Angle()
	vBody := s.Velocity.Unrotate(heading)
	appBody := env.Wind.Sub(s.Velocity).Unrotate(heading)

	var force physics.Vec2
	var torque float64

	// Sail angles are measured from aft, so the sail frame is the body frame
	// turned half a revolution.
	sailFlow := physics.FoilEnvironment{Flow: appBody.Scale(-1)}
	for i := range s.Sails.Items {
		entry := s.Sails.At(i)
		spec, ok := t.sailSpec(entry.Ref)
		if !ok {
			continue
		}
		params := spec.FoilParams()
		foil := &physics.Foil{
			Angle:           deg2rad(entry.Value.Angle),
			AngularVelocity: deg2rad(entry.Value.Swing),
		}
		foil.PartialStep(dt, params, sailFlow)
		if limit := deg2rad(entry.Value.SheetingAngle); math.Abs(foil.Angle) > limit {
			foil.Angle = math.Copysign(limit, foil.Angle)
			foil.AngularVelocity = 0
		}
		entry.Value.Angle = rad2deg(foil.Angle)
		entry.Value.Swing = rad2deg(foil.AngularVelocity)

		f := foil.NormalForce(params, sailFlow).Scale(-1)
		along := physics.V2(-math.Cos(foil.Angle), -math.Sin(foil.Angle))
		at := physics.V2(spec.Tack, 0).Add(along.Scale(spec.CenterOfEffort))
		force = force.Add(f)
		torque += at.Cross(f)
	}

	// Rudder, less effective as it gets damaged.
	if s.RudderHP > 0 {
		rudderAngle := deg2rad(s.RudderAngle)
		pivot := physics.V2(t.RudderPivot, 0)
		waterAtPivot := vBody.Add(physics.V2(0, s.AngularVelocity*t.RudderPivot))
		rudder := &physics.Foil{Angle: rudderAngle}
		rudderEnv := physics.FoilEnvironment{Flow: waterAtPivot}
		f := rudder.NormalForce(t.RudderFoil(), rudderEnv).Scale(-s.RudderHP / t.MaxRudderHP)
		along := physics.V2(-math.Cos(rudderAngle), -math.Sin(rudderAngle))
		at := pivot.Add(along.Scale(t.RudderCenterOfEffort))
		force = force.Add(f)
		torque += at.Cross(f)
	}

	// Hull drag, quadratic in each body axis.
	hull := physics.V2(
		-t.ForwardDrag*vBody.X*math.Abs(vBody.X),
		-t.SidewaysDrag*vBody.Y*math.Abs(vBody.Y),
	)
	force = force.Add(hull)
	torque += t.CenterOfLateralResistance * hull.Y

	// Rigging drag pushes along the apparent wind.
	force = force.Add(appBody.Scale(t.AirDrag * appBody.Len()))

	torque -= t.AngularDrag * s.AngularVelocity

	accel := force.Scale(1 / t.Mass).Rotate(heading)
	s.Velocity = s.Velocity.Add(accel.Scale(dt))
	s.AngularVelocity += torque / t.Moment * dt

	s.Pose.Translation = s.Pose.Translation.Add(s.Velocity.Scale(dt))
	s.Pose = s.Pose.Rotate(s.AngularVelocity * dt)
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }
func rad2deg(r float64) float64 { return r * 180 / math.Pi }
