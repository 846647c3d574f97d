package concurrent

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEachVisitsEveryElement(t *testing.T) {
	in := make([]int, 100)
	for i := range in {
		in[i] = i
	}
	var sum atomic.Int64
	err := Each(context.Background(), in, 4, func(_ context.Context, _ int, v int) error {
		sum.Add(int64(v))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4950), sum.Load())
}

func TestEachRespectsWorkerLimit(t *testing.T) {
	var running, peak atomic.Int32
	err := Each(context.Background(), make([]struct{}, 50), 3, func(context.Context, int, struct{}) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		running.Add(-1)
		return nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestEachReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	err := Each(context.Background(), []int{1, 2, 3}, 1, func(_ context.Context, _ int, v int) error {
		if v == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestEachJoinCollectsAllErrors(t *testing.T) {
	var visited atomic.Int32
	err := EachJoin(context.Background(), []int{1, 2, 3, 4}, 2, func(_ context.Context, i int, v int) error {
		visited.Add(1)
		if v%2 == 0 {
			return fmt.Errorf("element %d", i)
		}
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, int32(4), visited.Load())
	assert.Equal(t, "element 1\nelement 3", err.Error())
}

func TestParallelMapKeepsOrder(t *testing.T) {
	out := ParallelMap([]int{1, 2, 3, 4, 5}, 2, func(v int) int { return v * v })
	assert.Equal(t, []int{1, 4, 9, 16, 25}, out)
	assert.Empty(t, ParallelMap([]int(nil), 0, func(v int) int { return v }))
}
