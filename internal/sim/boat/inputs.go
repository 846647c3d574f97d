package boat

import (
	"math"

	"github.com/zeusync/sailsim/internal/core/models"
)

// Inputs are the controls a player or the autopilot sends for one boat.
// They are folded into the state before a tick's step, never during one.
type Inputs struct {
	// Target rudder angle in degrees. Nil leaves the rudder alone.
	Rudder   *float64         `json:"rudder,omitempty" yaml:"rudder,omitempty"`
	Sheeting []SheetingTarget `json:"sheeting,omitempty" yaml:"sheeting,omitempty"`
}

// SheetingTarget sets how far one sail may swing out, in degrees.
type SheetingTarget struct {
	Sail  models.Query[SailState] `json:"sail" yaml:"sail"`
	Angle float64                 `json:"angle" yaml:"angle"`
}

// RudderInput is a convenience for building Inputs.
func RudderInput(angle float64) *float64 { return &angle }

// IsZero reports whether the inputs would change nothing.
func (in *Inputs) IsZero() bool {
	return in.Rudder == nil && len(in.Sheeting) == 0
}

// Merge folds newer over in. A newer rudder command replaces the older one.
// Sheeting targets are resolved against sails and stored by id, so a target
// named by alias replaces an older one named by id for the same sail.
// Targets, queued or newer, that name no sail are dropped and returned.
func (in *Inputs) Merge(newer Inputs, sails *models.Dataset[SailState]) []models.Query[SailState] {
	if newer.Rudder != nil {
		r := *newer.Rudder
		in.Rudder = &r
	}

	var missed []models.Query[SailState]
	resolved := make([]SheetingTarget, 0, len(in.Sheeting)+len(newer.Sheeting))
	for _, target := range in.Sheeting {
		id, ok := sails.FindID(target.Sail)
		if !ok {
			missed = append(missed, target.Sail)
			continue
		}
		resolved = append(resolved, SheetingTarget{Sail: models.ByID[SailState](id), Angle: target.Angle})
	}
	for _, target := range newer.Sheeting {
		id, ok := sails.FindID(target.Sail)
		if !ok {
			missed = append(missed, target.Sail)
			continue
		}
		next := SheetingTarget{Sail: models.ByID[SailState](id), Angle: target.Angle}
		replaced := false
		for i := range resolved {
			if existing, _ := resolved[i].Sail.ID(); existing == id {
				resolved[i] = next
				replaced = true
				break
			}
		}
		if !replaced {
			resolved = append(resolved, next)
		}
	}
	in.Sheeting = resolved
	return missed
}

// apply moves the rudder toward its target by at most maxStep degrees and
// sets sheeting limits, pulling in any sail that is now outside its limit.
func (in *Inputs) apply(s *State, maxRudder, maxStep float64) {
	if in.Rudder != nil {
		target := math.Max(-maxRudder, math.Min(maxRudder, *in.Rudder))
		delta := target - s.RudderAngle
		if maxStep >= 0 && math.Abs(delta) > maxStep {
			s.RudderAngle += math.Copysign(maxStep, delta)
		} else {
			s.RudderAngle = target
			in.Rudder = nil
		}
	}

	for _, target := range in.Sheeting {
		i, ok := s.Sails.FindIndex(target.Sail)
		if !ok {
			continue
		}
		sail := &s.Sails.At(i).Value
		sail.SheetingAngle = math.Min(180, math.Abs(target.Angle))
		if math.Abs(sail.Angle) > sail.SheetingAngle {
			sail.Angle = math.Copysign(sail.SheetingAngle, sail.Angle)
			sail.Swing = 0
		}
	}
	in.Sheeting = nil
}
