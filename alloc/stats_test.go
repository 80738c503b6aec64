package alloc

import (
	"testing"

	"github.com/segalloc/segalloc/region"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsTracksUsage(t *testing.T) {
	h, err := New(region.NewMemory())
	require.NoError(t, err)

	before := h.Stats()
	assert.Equal(t, 0, before.UsedBytes)

	p := h.Alloc(64)
	require.NotEqual(t, NilPtr, p)

	after := h.Stats()
	assert.Greater(t, after.UsedBytes, before.UsedBytes)
	assert.Equal(t, after.UsedBytes+after.FreeBytes, after.TotalBytes-firstBlockOff-wordSize)

	h.Free(p)
	freed := h.Stats()
	assert.Equal(t, 0, freed.UsedBytes)
}

func TestClassStatsCoversAllLists(t *testing.T) {
	h, err := New(region.NewMemory())
	require.NoError(t, err)

	cs := h.ClassStats()
	assert.Equal(t, numLists, cs.Len())

	var total int
	cs.Do(func(v *ClassStat) {
		total += v.Count
	})
	assert.Greater(t, total, 0) // the initial free chunk lives in some class
}

func TestClassStatsReflectsFrees(t *testing.T) {
	h, err := New(region.NewMemory())
	require.NoError(t, err)

	p := h.Alloc(32)
	q := h.Alloc(32)
	h.Free(p)
	h.Free(q)

	cs := h.ClassStats()
	var freeCount int
	cs.Do(func(v *ClassStat) {
		freeCount += v.Count
	})
	assert.GreaterOrEqual(t, freeCount, 1)
}
