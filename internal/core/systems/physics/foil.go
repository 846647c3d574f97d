package physics

import (
	"fmt"
	"math"
)

// FoilParams is the static configuration of a flat foil pivoting in a fluid,
// such as a sail on its mast or a rudder on its stock.
type FoilParams struct {
	Area             float64 `json:"area" yaml:"area"`
	CenterOfPressure float64 `json:"center_of_pressure" yaml:"center_of_pressure"`
	Moment           float64 `json:"moment" yaml:"moment"`
	AngularDrag      float64 `json:"angular_drag" yaml:"angular_drag"`
	FluidDensity     float64 `json:"fluid_density" yaml:"fluid_density"`
}

// Validate rejects parameters that would produce non-finite steps.
func (p FoilParams) Validate() error {
	switch {
	case !(p.Area > 0) || math.IsInf(p.Area, 0):
		return fmt.Errorf("%w: foil area must be positive, got %v", ErrInvalidConfiguration, p.Area)
	case !(p.Moment > 0) || math.IsInf(p.Moment, 0):
		return fmt.Errorf("%w: foil moment must be positive, got %v", ErrInvalidConfiguration, p.Moment)
	case !(p.FluidDensity > 0) || math.IsInf(p.FluidDensity, 0):
		return fmt.Errorf("%w: fluid density must be positive, got %v", ErrInvalidConfiguration, p.FluidDensity)
	case !(p.AngularDrag >= 0) || math.IsInf(p.AngularDrag, 0):
		return fmt.Errorf("%w: foil angular drag must be non-negative, got %v", ErrInvalidConfiguration, p.AngularDrag)
	case !(p.CenterOfPressure >= 0) || math.IsInf(p.CenterOfPressure, 0):
		return fmt.Errorf("%w: foil center of pressure must be non-negative, got %v", ErrInvalidConfiguration, p.CenterOfPressure)
	}
	return nil
}

// FoilEnvironment is the fluid flow seen at the pivot, in the foil's frame
// where angle 0 points along +X.
type FoilEnvironment struct {
	Flow Vec2
}

// Foil is the integrable state of a flat foil: its angle about the pivot and
// how fast it is swinging, both in radians.
type Foil struct {
	Angle           float64 `json:"angle" yaml:"angle"`
	AngularVelocity float64 `json:"angular_velocity" yaml:"angular_velocity"`
}

var _ Integrator[FoilParams, FoilEnvironment, *Foil] = (*Foil)(nil)

// Normal returns the unit normal of the foil, a quarter turn counterclockwise
// from the direction it points.
func (f *Foil) Normal() Vec2 {
	return V2(-math.Sin(f.Angle), math.Cos(f.Angle))
}

// NormalForce returns the pressure force the flow puts on the plate.
// It is proportional to the normal component of the flow times its speed.
func (f *Foil) NormalForce(p FoilParams, env FoilEnvironment) Vec2 {
	n := f.Normal()
	magnitude := 0.5 * p.FluidDensity * p.Area * env.Flow.Dot(n) * env.Flow.Len()
	return n.Scale(magnitude)
}

func (f *Foil) PartialStep(dt float64, p FoilParams, env FoilEnvironment) {
	force := f.NormalForce(p, env)
	torque := p.CenterOfPressure*force.Dot(f.Normal()) - p.AngularDrag*f.AngularVelocity
	f.AngularVelocity += torque / p.Moment * dt
	f.Angle += f.AngularVelocity * dt
}

func (f *Foil) Merge(other *Foil, _ FoilParams, _ FoilEnvironment) error {
	f.Angle = Mean(f.Angle, other.Angle)
	f.AngularVelocity = Mean(f.AngularVelocity, other.AngularVelocity)
	return nil
}

func (f *Foil) Clone() *Foil {
	c := *f
	return &c
}
