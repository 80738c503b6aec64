package slabpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSizes(t *testing.T) {
	buf := Get(100)
	assert.Len(t, buf, 100)
	assert.GreaterOrEqual(t, cap(buf), minSlabSize)

	buf = Get(minSlabSize)
	assert.Len(t, buf, minSlabSize)
	assert.Equal(t, minSlabSize, cap(buf))

	buf = Get(minSlabSize + 1)
	assert.Len(t, buf, minSlabSize+1)
	assert.Equal(t, minSlabSize*2, cap(buf))
}

func TestGetBeyondMax(t *testing.T) {
	buf := Get(maxSlabSize + 1)
	assert.Len(t, buf, maxSlabSize+1)
}

func TestPutRecyclesExactBucket(t *testing.T) {
	a := Get(minSlabSize)
	for i := range a {
		a[i] = 0xAB
	}
	Put(a)

	b := Get(minSlabSize)
	// b may or may not be the recycled buffer (sync.Pool makes no
	// promise), but if the pool is warm it should come back without a
	// fresh make().
	require.Len(t, b, minSlabSize)
}

func TestGrowPreservesPrefix(t *testing.T) {
	old := Get(minSlabSize)
	for i := range old {
		old[i] = byte(i)
	}

	grown := Grow(old, minSlabSize+64)
	require.Len(t, grown, minSlabSize+64)
	for i := 0; i < minSlabSize; i++ {
		assert.Equal(t, byte(i), grown[i])
	}
}

func TestGrowFromEmpty(t *testing.T) {
	grown := Grow(nil, 32)
	assert.Len(t, grown, 32)
}

func TestIdxForSize(t *testing.T) {
	assert.Equal(t, 0, idxForSize(1))
	assert.Equal(t, 0, idxForSize(minSlabSize))
	assert.Equal(t, 1, idxForSize(minSlabSize+1))
	assert.Equal(t, -1, idxForSize(maxSlabSize+1))
}
