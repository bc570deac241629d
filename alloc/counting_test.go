package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountingTracksBlocks(t *testing.T) {
	c := NewCounting(nil)

	a, err := c.Allocate(32)
	require.NoError(t, err)
	b, err := c.Allocate(16)
	require.NoError(t, err)

	a, err = c.Reallocate(a, 64)
	require.NoError(t, err)

	s := c.Stats()
	assert.Equal(t, 2, s.Allocs)
	assert.Equal(t, 1, s.Reallocs)
	assert.Equal(t, 2, s.Live)
	assert.Equal(t, 80, s.LiveBytes)
	assert.Equal(t, 80, s.PeakBytes)

	c.Free(a)
	c.Free(b)
	s = c.Stats()
	assert.Equal(t, 2, s.Frees)
	assert.Zero(t, s.Live)
	assert.Zero(t, s.LiveBytes)
	assert.Zero(t, s.BadFrees)
}

func TestCountingRejectsBadFrees(t *testing.T) {
	c := NewCounting(NewHeap())

	b, err := c.Allocate(32)
	require.NoError(t, err)

	c.Free(b[:16])
	assert.Equal(t, 1, c.Stats().BadFrees, "wrong size")

	c.Free(b)
	c.Free(b)
	s := c.Stats()
	assert.Equal(t, 2, s.BadFrees, "double free")
	assert.Equal(t, 1, s.Frees)

	c.Free(make([]byte, 8))
	assert.Equal(t, 3, c.Stats().BadFrees, "foreign block")
}

func TestCountingName(t *testing.T) {
	assert.Equal(t, "counting(heap)", NewCounting(NewHeap()).Name())
}

func TestCountingReallocateForeignBlock(t *testing.T) {
	c := NewCounting(NewHeap())

	nb, err := c.Reallocate(make([]byte, 8), 16)
	require.NoError(t, err)
	s := c.Stats()
	assert.Equal(t, 16, s.LiveBytes)
	assert.Equal(t, 1, s.Live)

	c.Free(nb)
	assert.Zero(t, c.Stats().LiveBytes)
}
