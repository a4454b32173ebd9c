package idgen

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextOrderIDMonotonic(t *testing.T) {
	a := New()
	prev := uint64(0)
	for i := 0; i < 1000; i++ {
		id := a.NextOrderID()
		require.Greater(t, id, prev)
		prev = id
	}
}

func TestNextTradeIDIndependentFromOrderID(t *testing.T) {
	a := New()
	o := a.NextOrderID()
	tr := a.NextTradeID()
	assert.Equal(t, uint64(1), o)
	assert.Equal(t, uint64(1), tr)
}

func TestNextTimestampStrictlyIncreasingUnderConcurrency(t *testing.T) {
	a := New()
	const n = 2000
	stamps := make([]int64, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stamps[i] = a.NextTimestamp()
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool, n)
	for _, s := range stamps {
		require.False(t, seen[s], "timestamp %d produced twice", s)
		seen[s] = true
	}
}

func TestAllocatorsAreIndependent(t *testing.T) {
	a1 := New()
	a2 := New()
	a1.NextOrderID()
	a1.NextOrderID()
	assert.Equal(t, uint64(1), a2.NextOrderID())
}
