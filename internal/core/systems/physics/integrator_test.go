package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterStatic struct{ rate float64 }

type counter struct {
	value  float64
	steps  []float64
	merged []float64
}

func (c *counter) PartialStep(dt float64, s counterStatic, _ struct{}) {
	c.value += dt * s.rate
	c.steps = append(c.steps, c.value)
}

func (c *counter) Merge(other *counter, _ counterStatic, _ struct{}) error {
	c.merged = append(c.merged, c.value, other.value)
	c.value = Mean(c.value, other.value)
	return nil
}

func (c *counter) Clone() *counter {
	clone := *c
	clone.steps = append([]float64(nil), c.steps...)
	return &clone
}

func TestFullStepLinearIncrement(t *testing.T) {
	c := &counter{}
	require.NoError(t, FullStep(c, 3.0, counterStatic{rate: 1}, struct{}{}))

	require.Len(t, c.steps, 2)
	assert.InDelta(t, 2.0, c.steps[0], 1e-12)
	assert.InDelta(t, 4.0, c.steps[1], 1e-12)
	assert.InDelta(t, 4.0, c.merged[0], 1e-12, "end point is the receiver")
	assert.InDelta(t, 2.0, c.merged[1], 1e-12, "mid point is the argument")
	assert.InDelta(t, 3.0, c.value, 1e-12)
}

func TestFullStepTrivialDynamicsIsIdentity(t *testing.T) {
	c := &counter{value: 12.5}
	for range 10 {
		require.NoError(t, FullStep(c, 0.25, counterStatic{rate: 0}, struct{}{}))
	}
	assert.Equal(t, 12.5, c.value)
}

func TestSubStepFraction(t *testing.T) {
	assert.InDelta(t, 2.0/3.0, SubStepFraction, 0)
	assert.InDelta(t, 4.0/3.0, 2*SubStepFraction, 1e-15)
}

func TestAverageIso(t *testing.T) {
	a := NewIso(0, 0, 0)
	b := NewIso(2, 4, math.Pi/2)

	avg := AverageIso(a, b)
	assert.Equal(t, V2(1, 2), avg.Translation)
	assert.InDelta(t, math.Pi/4, avg.Angle(), 1e-12)
	// The rotation is summed, not renormalized.
	assert.InDelta(t, math.Sqrt2, math.Hypot(real(avg.Rotation), imag(avg.Rotation)), 1e-12)
}

func TestAverageIsoAcrossWrap(t *testing.T) {
	a := NewIso(0, 0, math.Pi-0.1)
	b := NewIso(0, 0, -math.Pi+0.1)

	assert.InDelta(t, math.Pi, math.Abs(AverageIso(a, b).Angle()), 1e-12)
}

func TestIsoJSON(t *testing.T) {
	iso := AverageIso(NewIso(1, 2, 0), NewIso(3, 4, 0))
	out, err := iso.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"translation":{"x":2,"y":3},"rotation":[2,0]}`, string(out))

	var back Iso
	require.NoError(t, back.UnmarshalJSON(out))
	assert.Equal(t, iso, back)
}

func TestIsoApplyMapsBodyToWorld(t *testing.T) {
	iso := NewIso(10, 5, math.Pi/2)
	bow := iso.Apply(V2(2, 0))
	assert.InDelta(t, 10, bow.X, 1e-12)
	assert.InDelta(t, 7, bow.Y, 1e-12)

	// A merged, non-unit rotation maps the same way.
	doubled := AverageIso(iso, iso)
	assert.Equal(t, V2(10, 5), doubled.Translation)
	got := doubled.Apply(V2(2, 0))
	assert.InDelta(t, bow.X, got.X, 1e-12)
	assert.InDelta(t, bow.Y, got.Y, 1e-12)
}
