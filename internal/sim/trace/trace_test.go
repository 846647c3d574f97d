package trace

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/sailsim/internal/core/systems/physics"
)

func sampleTicks() []Tick {
	return []Tick{
		{Tick: 1, Time: 0.05, Dt: 0.05, Wind: physics.V2(0, 5), Boats: []Boat{
			{ID: 0, Name: "alice", Pose: physics.NewIso(1, 2, 0.5), Digest: 0xabc},
			{ID: 1, Name: "bob", Pose: physics.NewIso(3, 4, 0), Digest: 0xdef},
		}},
		{Tick: 2, Time: 0.1, Dt: 0.05, Wind: physics.V2(0.1, 5), Boats: []Boat{
			{ID: 0, Name: "alice", Pose: physics.NewIso(1.1, 2, 0.5), Digest: 0x123},
		}},
	}
}

func collect(t *testing.T, data []byte) []Tick {
	t.Helper()
	var got []Tick
	require.NoError(t, Read(bytes.NewReader(data), func(tick Tick) error {
		got = append(got, tick)
		return nil
	}))
	return got
}

func TestWriteRead(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)
	for _, tick := range sampleTicks() {
		require.NoError(t, w.Write(tick))
	}
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	got := collect(t, buf.Bytes())
	require.Len(t, got, 2)
	assert.Equal(t, uint64(0xabc), got[0].Boats[0].Digest)
	assert.Equal(t, "bob", got[0].Boats[1].Name)
	assert.InDelta(t, 0.5, got[0].Boats[0].Pose.Angle(), 1e-12)
	assert.NoError(t, Compare(sampleTicks(), got))

	assert.Error(t, w.Write(Tick{}))
}

func TestCreateAndOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "trace.jsonl.zst")
	w, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(sampleTicks()[0]))
	require.NoError(t, w.Close())

	n := 0
	require.NoError(t, Open(path, func(Tick) error { n++; return nil }))
	assert.Equal(t, 1, n)
}

func TestCompareFindsDivergence(t *testing.T) {
	a, b := sampleTicks(), sampleTicks()
	b[1].Boats[0].Digest = 0x124
	err := Compare(a, b)
	assert.ErrorIs(t, err, ErrDiverged)
	assert.Contains(t, err.Error(), "tick 2")

	b = sampleTicks()
	b[0].Boats = b[0].Boats[:1]
	assert.ErrorIs(t, Compare(a, b), ErrDiverged)

	assert.ErrorIs(t, Compare(a, a[:1]), ErrDiverged)
}
