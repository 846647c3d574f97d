package boat

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/sailsim/internal/core/models"
	"github.com/zeusync/sailsim/internal/core/systems/physics"
	"github.com/zeusync/sailsim/pkg/generic"
)

// SailState is the live state of one sail. Angles are in degrees, measured
// from a line pointing straight aft from the mast, + counterclockwise.
type SailState struct {
	Angle float64 `json:"angle" yaml:"angle"`
	// Maximum |Angle| the sheet allows, always positive.
	SheetingAngle float64 `json:"sheeting_angle" yaml:"sheeting_angle"`
	// Swing rate in degrees per second.
	Swing float64 `json:"swing,omitempty" yaml:"swing,omitempty"`
}

func DefaultSailState() SailState {
	return SailState{SheetingAngle: DefaultSheetingAngle}
}

// Merge averages the live angle and swing with other. The sheeting angle is
// a setting, not a measurement, so the receiver's is kept.
func (s *SailState) Merge(other SailState) error {
	s.Angle = physics.Mean(s.Angle, other.Angle)
	s.Swing = physics.Mean(s.Swing, other.Swing)
	return nil
}

// State is everything that changes about a boat while it sails.
type State struct {
	// Name of the boat's Type.
	TypeName string      `json:"type_name" yaml:"type_name"`
	Pose     physics.Iso `json:"pose" yaml:"pose"`
	// World frame, m/s.
	Velocity physics.Vec2 `json:"velocity" yaml:"velocity"`
	// Radians per second, + counterclockwise.
	AngularVelocity float64 `json:"angular_velocity" yaml:"angular_velocity"`
	// Degrees, measured like sail angles.
	RudderAngle float64                   `json:"rudder_angle" yaml:"rudder_angle"`
	RudderHP    float64                   `json:"rudder_hp" yaml:"rudder_hp"`
	HullHP      float64                   `json:"hull_hp" yaml:"hull_hp"`
	Sails       models.Dataset[SailState] `json:"sails" yaml:"sails"`
}

// Clone deep-copies the state, including the sails.
func (s State) Clone() State {
	s.Sails = s.Sails.Clone()
	return s
}

// Merge folds other, a state of the same boat reached along a different
// path, into s. Scalars and velocities are averaged, the pose goes through
// physics.AverageIso and every sail is merged with the sail of other that
// has the same id. A sail missing from other fails the merge with
// physics.ErrStructuralMismatch and leaves s unchanged.
func (s *State) Merge(other State) error {
	if err := models.MergeDatasets(&s.Sails, other.Sails, (*SailState).Merge); err != nil {
		return err
	}
	s.Pose = physics.AverageIso(s.Pose, other.Pose)
	s.Velocity = s.Velocity.Mean(other.Velocity)
	s.AngularVelocity = physics.Mean(s.AngularVelocity, other.AngularVelocity)
	// Only reliable while the rudder does not cross 180°, which it cannot.
	s.RudderAngle = physics.Mean(s.RudderAngle, other.RudderAngle)
	s.RudderHP = physics.Mean(s.RudderHP, other.RudderHP)
	s.HullHP = physics.Mean(s.HullHP, other.HullHP)
	return nil
}

// Speed returns the boat's speed over ground.
func (s *State) Speed() float64 { return s.Velocity.Len() }

// Sunk reports whether the hull has no hit-points left.
func (s *State) Sunk() bool { return s.HullHP <= 0 }

var digests = generic.NewPool(xxhash.New, (*xxhash.Digest).Reset)

// Digest hashes the state so a client and the server can cheaply compare
// their estimates of the same boat. Equal states give equal digests.
func (s *State) Digest() uint64 {
	buf := make([]byte, 0, 8*(10+4*s.Sails.Len()))
	for _, f := range []float64{
		s.Pose.Translation.X, s.Pose.Translation.Y,
		real(s.Pose.Rotation), imag(s.Pose.Rotation),
		s.Velocity.X, s.Velocity.Y, s.AngularVelocity,
		s.RudderAngle, s.RudderHP, s.HullHP,
	} {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(f))
	}
	for ref, sail := range s.Sails.All() {
		buf = binary.LittleEndian.AppendUint64(buf, ref.ID)
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(sail.Angle))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(sail.SheetingAngle))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(sail.Swing))
	}
	return generic.With(digests, func(h *xxhash.Digest) uint64 {
		_, _ = h.WriteString(s.TypeName)
		_, _ = h.Write(buf)
		return h.Sum64()
	})
}
