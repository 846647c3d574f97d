package wind

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testParams = Params{
	SpeedAverage:          6,
	MaxGust:               4,
	MaxSpeedVariation:     2,
	MaxDirectionVariation: 5,
}

func TestGeneratorIsDeterministic(t *testing.T) {
	a, err := New(testParams, 90, 42)
	require.NoError(t, err)
	b, err := New(testParams, 90, 42)
	require.NoError(t, err)

	for range 500 {
		a.Step(0.1)
		b.Step(0.1)
	}
	assert.Equal(t, a.Vector(), b.Vector())
}

func TestGeneratorStaysInBounds(t *testing.T) {
	g, err := New(testParams, -30, 7)
	require.NoError(t, err)
	assert.InDelta(t, 330, g.Direction(), 1e-9)

	for range 5000 {
		g.Step(0.1)
		require.GreaterOrEqual(t, g.Speed(), 0.0)
		require.LessOrEqual(t, g.Speed(), testParams.SpeedAverage+testParams.MaxGust)
		require.GreaterOrEqual(t, g.Direction(), 0.0)
		require.Less(t, g.Direction(), 360.0)
	}
	assert.InDelta(t, g.Speed(), g.Vector().Len(), 1e-9)
}

func TestCalmParamsGiveSteadyWind(t *testing.T) {
	g, err := New(Params{SpeedAverage: 5}, 90, 1)
	require.NoError(t, err)
	for range 100 {
		g.Step(0.5)
	}
	v := g.Vector()
	assert.InDelta(t, 0, v.X, 1e-9)
	assert.InDelta(t, 5, v.Y, 1e-9)
}

func TestSaveRestoreContinuesIdentically(t *testing.T) {
	g, err := New(testParams, 0, 99)
	require.NoError(t, err)
	for range 50 {
		g.Step(0.2)
	}

	saved, err := g.Save()
	require.NoError(t, err)
	resumed, err := Restore(saved)
	require.NoError(t, err)
	for range 50 {
		g.Step(0.2)
		resumed.Step(0.2)
	}
	want, err := g.Save()
	require.NoError(t, err)
	got, err := resumed.Save()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestInvalidParams(t *testing.T) {
	_, err := New(Params{SpeedAverage: math.NaN()}, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = Restore(SaveState{Params: testParams, RNG: []byte("junk")})
	assert.ErrorIs(t, err, ErrInvalidParams)
}
