package workerspool

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sumRange(t *testing.T, pool *Pool, n, minChunk int) int64 {
	t.Helper()
	var total atomic.Int64
	covered := make([]atomic.Bool, n)
	pool.For(n, minChunk, func(from, to int) {
		require.LessOrEqual(t, from, to)
		for i := from; i < to; i++ {
			require.False(t, covered[i].Swap(true), "index %d visited twice", i)
			total.Add(int64(i))
		}
	})
	for i := range covered {
		require.True(t, covered[i].Load(), "index %d never visited", i)
	}
	return total.Load()
}

func TestForCoversRange(t *testing.T) {
	pool := New()
	assert.True(t, pool.IsEnabled())
	assert.Equal(t, int64(99*100/2), sumRange(t, pool, 100, 8))
	assert.Equal(t, int64(0), sumRange(t, pool, 1, 8))
	pool.For(0, 8, func(int, int) { t.Fatal("must not be called for n == 0") })
}

func TestForDisabledRunsInline(t *testing.T) {
	pool := New()
	pool.SetMaxParallelism(0)
	calls := 0
	pool.For(100, 8, func(from, to int) {
		calls++
		assert.Equal(t, 0, from)
		assert.Equal(t, 100, to)
	})
	assert.Equal(t, 1, calls)
}

func TestForBoundedParallelism(t *testing.T) {
	pool := New()
	pool.SetMaxParallelism(2)
	assert.Equal(t, int64(999*1000/2), sumRange(t, pool, 1000, 1))
}

func TestForUnlimited(t *testing.T) {
	pool := New()
	pool.SetMaxParallelism(-1)
	assert.Equal(t, int64(49*50/2), sumRange(t, pool, 50, 10))
}
