package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackUnpackTag(t *testing.T) {
	for _, tc := range []struct {
		size  int
		alloc bool
	}{
		{16, true},
		{16, false},
		{4096, true},
		{8, false},
	} {
		v := packTag(tc.size, tc.alloc)
		size, alloc := unpackTag(v)
		assert.Equal(t, tc.size, size)
		assert.Equal(t, tc.alloc, alloc)
	}
}

func TestHeaderFooterRoundTrip(t *testing.T) {
	arena := make([]byte, 64)
	writeBoundaryTag(arena, 0, 32, true)

	size, alloc := readHeader(arena, 0)
	assert.Equal(t, 32, size)
	assert.True(t, alloc)

	fSize, fAlloc := readHeader(arena, footerOff(0, 32))
	assert.Equal(t, size, fSize)
	assert.Equal(t, alloc, fAlloc)
}

func TestNextPrevBlock(t *testing.T) {
	arena := make([]byte, 64)
	writeBoundaryTag(arena, 0, 16, false)
	writeBoundaryTag(arena, 16, 24, true)

	assert.Equal(t, 16, nextBlock(arena, 0))
	assert.Equal(t, 0, prevBlock(arena, 16))
}

func TestFreeListLinks(t *testing.T) {
	arena := make([]byte, 32)
	writeBoundaryTag(arena, 0, 16, false)

	setPrevLink(arena, 0, nilRef)
	setNextLink(arena, 0, 8)
	assert.Equal(t, nilRef, getPrevLink(arena, 0))
	assert.Equal(t, 8, getNextLink(arena, 0))
}

func TestAsize(t *testing.T) {
	assert.Equal(t, minBlockSize, asize(1))
	assert.Equal(t, minBlockSize, asize(8))
	assert.Equal(t, 24, asize(9))
	assert.Equal(t, 24, asize(16))
	assert.Equal(t, 32, asize(17))
}

func TestAlignUp8(t *testing.T) {
	assert.Equal(t, 0, alignUp8(0))
	assert.Equal(t, 8, alignUp8(1))
	assert.Equal(t, 8, alignUp8(8))
	assert.Equal(t, 16, alignUp8(9))
}
