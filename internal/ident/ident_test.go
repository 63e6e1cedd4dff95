package ident

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequence_Monotonic(t *testing.T) {
	s := NewSequence()
	assert.Equal(t, 1, s.NextID())
	assert.Equal(t, 2, s.NextID())
	assert.Equal(t, 3, s.NextID())
}

func TestSequence_Reset(t *testing.T) {
	s := NewSequence()
	s.NextID()
	s.NextID()
	s.Reset()
	assert.Equal(t, 1, s.NextID())
}

func TestSequence_ConcurrentIDsAreUnique(t *testing.T) {
	s := NewSequence()
	const n = 100

	ids := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- s.NextID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int]bool)
	for id := range ids {
		assert.False(t, seen[id], "id %d issued twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestGenerators_IndependentSequences(t *testing.T) {
	g := NewGenerators()
	assert.Equal(t, 1, g.Stations.NextID())
	assert.Equal(t, 1, g.Users.NextID())
	assert.Equal(t, 2, g.Stations.NextID())

	g.Reset()
	assert.Equal(t, 1, g.Stations.NextID())
	assert.Equal(t, 1, g.Users.NextID())
}
