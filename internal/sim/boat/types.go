package boat

import (
	"fmt"
	"math"

	"github.com/zeusync/sailsim/internal/core/models"
	"github.com/zeusync/sailsim/internal/core/systems/physics"
)

const (
	WaterDensity = 1025.0
	AirDensity   = 1.225

	// DefaultSheetingAngle is how far a sail may swing out, in degrees, until
	// a sheeting input says otherwise.
	DefaultSheetingAngle = 90.0

	// DefaultMaxRudderAngle applies when a type leaves max_rudder_angle unset.
	DefaultMaxRudderAngle = 35.0
)

// Type describes one kind of boat. It is loaded once and shared read-only by
// every boat of that kind.
type Type struct {
	Name string `json:"name" yaml:"name"`
	// Hull outline in body coordinates, +X forward, +Y to port.
	Perimeter []physics.Vec2 `json:"perimeter" yaml:"perimeter"`
	// Distance from the center to the hull's center of lateral resistance,
	// + forward.
	CenterOfLateralResistance float64 `json:"center_of_lateral_resistance" yaml:"center_of_lateral_resistance"`
	ForwardDrag               float64 `json:"forward_drag" yaml:"forward_drag"`
	SidewaysDrag              float64 `json:"sideways_drag" yaml:"sideways_drag"`
	// Drag of the rigging excluding the sails.
	AirDrag  float64 `json:"air_drag" yaml:"air_drag"`
	MaxDraft float64 `json:"max_draft" yaml:"max_draft"`
	// Distance from the center to the rudder pivot, negative when aft.
	RudderPivot          float64 `json:"rudder_pivot" yaml:"rudder_pivot"`
	RudderArea           float64 `json:"rudder_area" yaml:"rudder_area"`
	RudderCenterOfEffort float64 `json:"rudder_center_of_effort" yaml:"rudder_center_of_effort"`
	RudderLen            float64 `json:"rudder_len" yaml:"rudder_len"`
	MaxRudderAngle       float64 `json:"max_rudder_angle,omitempty" yaml:"max_rudder_angle,omitempty"`
	Mass                 float64 `json:"mass" yaml:"mass"`
	Moment               float64 `json:"moment" yaml:"moment"`
	AngularDrag          float64 `json:"angular_drag" yaml:"angular_drag"`
	MaxHullHP            float64 `json:"max_hull_hp" yaml:"max_hull_hp"`
	MaxRudderHP          float64 `json:"max_rudder_hp" yaml:"max_rudder_hp"`
	// Used by the autopilot.
	UpwindMaxWindAngle   float64 `json:"upwind_max_wind_angle" yaml:"upwind_max_wind_angle"`
	UpwindMaxTotalLeeway float64 `json:"upwind_max_total_leeway" yaml:"upwind_max_total_leeway"`

	Sails models.Dataset[SailSpec] `json:"sails" yaml:"sails"`
}

// SailSpec is the static configuration of one sail.
type SailSpec struct {
	Area float64 `json:"area" yaml:"area"`
	// Distance from the tack to the center of effort, seen from above.
	CenterOfEffort float64 `json:"center_of_effort" yaml:"center_of_effort"`
	// Distance from the boat's center to the tack, + forward.
	Tack float64 `json:"tack" yaml:"tack"`
	// Display only.
	FootLen     float64 `json:"foot_len" yaml:"foot_len"`
	Moment      float64 `json:"moment" yaml:"moment"`
	AngularDrag float64 `json:"angular_drag" yaml:"angular_drag"`
}

// FoilParams returns the sail as a flat foil swinging in air.
func (s SailSpec) FoilParams() physics.FoilParams {
	return physics.FoilParams{
		Area:             s.Area,
		CenterOfPressure: s.CenterOfEffort,
		Moment:           s.Moment,
		AngularDrag:      s.AngularDrag,
		FluidDensity:     AirDensity,
	}
}

// RudderFoil returns the rudder as a flat foil in water. Only its force is
// used; the rudder angle itself is driven by input.
func (t *Type) RudderFoil() physics.FoilParams {
	return physics.FoilParams{
		Area:             t.RudderArea,
		CenterOfPressure: t.RudderCenterOfEffort,
		Moment:           1,
		FluidDensity:     WaterDensity,
	}
}

func (t *Type) maxRudderAngle() float64 {
	if t.MaxRudderAngle > 0 {
		return t.MaxRudderAngle
	}
	return DefaultMaxRudderAngle
}

// Validate rejects a type that would make stepping produce NaN or infinite
// values. It runs at load time so the integrator can assume a sane type.
func (t *Type) Validate() error {
	positive := map[string]float64{
		"mass":          t.Mass,
		"moment":        t.Moment,
		"rudder_area":   t.RudderArea,
		"max_hull_hp":   t.MaxHullHP,
		"max_rudder_hp": t.MaxRudderHP,
	}
	for name, v := range positive {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: boat type %q: %s must be positive, got %v", physics.ErrInvalidConfiguration, t.Name, name, v)
		}
	}

	nonNegative := map[string]float64{
		"forward_drag":            t.ForwardDrag,
		"sideways_drag":           t.SidewaysDrag,
		"air_drag":                t.AirDrag,
		"angular_drag":            t.AngularDrag,
		"rudder_center_of_effort": t.RudderCenterOfEffort,
		"max_rudder_angle":        t.MaxRudderAngle,
	}
	for name, v := range nonNegative {
		if !(v >= 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: boat type %q: %s must be non-negative, got %v", physics.ErrInvalidConfiguration, t.Name, name, v)
		}
	}
	for name, v := range map[string]float64{
		"center_of_lateral_resistance": t.CenterOfLateralResistance,
		"rudder_pivot":                 t.RudderPivot,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: boat type %q: %s must be finite, got %v", physics.ErrInvalidConfiguration, t.Name, name, v)
		}
	}

	if len(t.Perimeter) > 0 && len(t.Perimeter) < 3 {
		return fmt.Errorf("%w: boat type %q: perimeter needs at least 3 points", physics.ErrInvalidConfiguration, t.Name)
	}
	if err := t.Sails.Validate(); err != nil {
		return fmt.Errorf("%w: boat type %q: %w", physics.ErrInvalidConfiguration, t.Name, err)
	}
	for ref, sail := range t.Sails.All() {
		if err := sail.FoilParams().Validate(); err != nil {
			return fmt.Errorf("boat type %q: sail %s: %w", t.Name, ref, err)
		}
	}
	return nil
}

// NewState returns a boat of this type at rest at pose, fully repaired, with
// one sail state per sail of the type under the same ref.
func (t *Type) NewState(pose physics.Iso) State {
	sails := models.NewDataset[SailState]()
	for ref := range t.Sails.All() {
		// Sail states share ids with the type's sail specs.
		_ = sails.InsertRef(models.UnsafeReinterpret[SailState](ref), DefaultSailState())
	}
	return State{
		TypeName: t.Name,
		Pose:     pose,
		RudderHP: t.MaxRudderHP,
		HullHP:   t.MaxHullHP,
		Sails:    sails,
	}
}

// sailSpec finds the spec for a sail state ref.
func (t *Type) sailSpec(ref models.Ref[SailState]) (SailSpec, bool) {
	e, ok := t.Sails.Find(models.UnsafeReinterpret[SailSpec](ref).ToQuery())
	return e.Value, ok
}
