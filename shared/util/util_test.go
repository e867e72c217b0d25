package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlockPosPackRoundTrip(t *testing.T) {
	tests := []BlockPos{
		{0, 0, 0},
		{1, 2, 3},
		{-1, -1, -1},
		{33554431, 2047, -33554432},
		{-30000000, -2048, 30000000},
	}

	for _, p := range tests {
		assert.Equal(t, p, UnpackBlockPos(p.Pack()), "pos %s", p)
	}
}

func TestRegionOfNegative(t *testing.T) {
	assert.Equal(t, RegionCoord{X: -16, Y: 0, Z: 16}, RegionOf(BlockPos{X: -1, Y: 15, Z: 31}))
	assert.Equal(t, RegionCoord{X: -32, Y: -16, Z: 0}, RegionOf(BlockPos{X: -17, Y: -16, Z: 0}))
}

func TestUniqueQueueKeepsPosition(t *testing.T) {
	q := NewUniqueQueue[string, int]()
	assert.True(t, q.Enqueue("a", 1))
	assert.True(t, q.Enqueue("b", 2))
	assert.False(t, q.Enqueue("a", 3))
	assert.Equal(t, 2, q.Len())

	k, v, ok := q.Dequeue()
	assert.True(t, ok)
	assert.Equal(t, "a", k)
	assert.Equal(t, 3, v)

	assert.True(t, q.Remove("b"))
	_, _, ok = q.Dequeue()
	assert.False(t, ok)
}
