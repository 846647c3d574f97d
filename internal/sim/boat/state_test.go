package boat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/sailsim/internal/core/models"
	"github.com/zeusync/sailsim/internal/core/systems/physics"
)

func stateWithSails(angles, sheeting []float64) State {
	sails := models.NewDataset[SailState]()
	for i := range angles {
		sails.Insert(SailState{Angle: angles[i], SheetingAngle: sheeting[i]})
	}
	return State{
		TypeName: "dinghy",
		Pose:     physics.NewIso(0, 0, 0),
		RudderHP: 10,
		HullHP:   100,
		Sails:    sails,
	}
}

func TestMergeScalarIsCommutative(t *testing.T) {
	a := stateWithSails(nil, nil)
	a.RudderAngle = 10.0
	b := stateWithSails(nil, nil)
	b.RudderAngle = 30.0

	ab := a.Clone()
	require.NoError(t, ab.Merge(b))
	ba := b.Clone()
	require.NoError(t, ba.Merge(a))

	assert.Equal(t, 20.0, ab.RudderAngle)
	assert.Equal(t, 20.0, ba.RudderAngle)
}

func TestMergeNestedSails(t *testing.T) {
	self := stateWithSails([]float64{10.0, -5.0}, []float64{45, 60})
	other := stateWithSails([]float64{20.0, 5.0}, []float64{90, 90})

	require.NoError(t, self.Merge(other))

	var angles, limits []float64
	for _, sail := range self.Sails.All() {
		angles = append(angles, sail.Angle)
		limits = append(limits, sail.SheetingAngle)
	}
	assert.Equal(t, []float64{15.0, 0.0}, angles)
	assert.Equal(t, []float64{45, 60}, limits)
}

func TestMergeMatchesSailsByRefNotPosition(t *testing.T) {
	self := stateWithSails([]float64{10, -5}, []float64{90, 90})
	other := stateWithSails(nil, nil)
	// Same sails, reverse order.
	for i := self.Sails.Len() - 1; i >= 0; i-- {
		e := self.Sails.At(i)
		require.NoError(t, other.Sails.InsertRef(e.Ref, SailState{Angle: e.Value.Angle + 10, SheetingAngle: 90}))
	}

	require.NoError(t, self.Merge(other))
	assert.Equal(t, 15.0, self.Sails.At(0).Value.Angle)
	assert.Equal(t, 0.0, self.Sails.At(1).Value.Angle)
}

func TestMergeMissingSailIsStructuralMismatch(t *testing.T) {
	self := stateWithSails([]float64{10, -5}, []float64{90, 90})
	self.RudderAngle = 4
	other := stateWithSails([]float64{20}, []float64{90})
	other.RudderAngle = 8

	err := self.Merge(other)
	require.Error(t, err)
	assert.ErrorIs(t, err, physics.ErrStructuralMismatch)

	// Nothing was half merged.
	assert.Equal(t, 4.0, self.RudderAngle)
	assert.Equal(t, 10.0, self.Sails.At(0).Value.Angle)
}

func TestMergeExtraSailInOtherIsIgnored(t *testing.T) {
	self := stateWithSails([]float64{10}, []float64{90})
	other := stateWithSails([]float64{20, 5}, []float64{90, 90})

	require.NoError(t, self.Merge(other))
	assert.Equal(t, 1, self.Sails.Len())
	assert.Equal(t, 15.0, self.Sails.At(0).Value.Angle)
}

func TestMergePose(t *testing.T) {
	self := stateWithSails(nil, nil)
	self.Pose = physics.NewIso(0, 0, 0.2)
	self.Velocity = physics.V2(1, 0)
	other := stateWithSails(nil, nil)
	other.Pose = physics.NewIso(4, 2, 0.4)
	other.Velocity = physics.V2(3, 2)

	require.NoError(t, self.Merge(other))
	assert.Equal(t, physics.V2(2, 1), self.Pose.Translation)
	assert.InDelta(t, 0.3, self.Pose.Angle(), 1e-12)
	assert.Greater(t, cmplxAbs(self.Pose.Rotation), 1.9)
	assert.Equal(t, physics.V2(2, 1), self.Velocity)
}

func TestCloneIsIndependent(t *testing.T) {
	s := stateWithSails([]float64{10}, []float64{90})
	c := s.Clone()
	c.Sails.At(0).Value.Angle = 50

	assert.Equal(t, 10.0, s.Sails.At(0).Value.Angle)
}

func TestDigest(t *testing.T) {
	s := stateWithSails([]float64{10, -5}, []float64{90, 90})
	c := s.Clone()
	assert.Equal(t, s.Digest(), c.Digest())

	c.Sails.At(1).Value.Angle = -4
	assert.NotEqual(t, s.Digest(), c.Digest())
}

func cmplxAbs(c complex128) float64 { return math.Hypot(real(c), imag(c)) }
