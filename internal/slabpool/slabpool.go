// Package slabpool recycles power-of-two byte buffers through a bank of
// sync.Pool instances, one per size bucket. It exists so that growing a
// region.Memory's backing store repeatedly (as happens across
// table-driven tests and fuzz workers that each spin up their own heap)
// doesn't leave a trail of abandoned slices for the garbage collector.
package slabpool

import (
	"math/bits"
	"sync"
)

const (
	// minSlabSize is the smallest bucket handed out. Below this, Get
	// still returns a buffer of this size; there is no point in a
	// bucket smaller than a single page-ish chunk for a region that
	// only grows in CHUNKSIZE-ish increments.
	minSlabSize = 4 << 10 // 4KB

	// maxSlabSize is the largest bucket. Sbrk requests larger than this
	// fall back to a plain allocation outside the pool.
	maxSlabSize = 1 << 30 // 1GB
)

type slab struct {
	sync.Pool

	size int
}

var slabs []*slab

// bits2idx maps bits.Len(size) to the index of `slabs` holding that
// bucket. For size <= minSlabSize it maps to slabs[0], which is what we
// want.
var bits2idx [64]int

func init() {
	i := 0
	for sz := minSlabSize; sz <= maxSlabSize; sz <<= 1 {
		sz := sz // each bucket's New must capture its own size
		s := &slab{size: sz}
		s.New = func() interface{} {
			b := make([]byte, sz)
			return &b
		}
		slabs = append(slabs, s)
		bits2idx[bits.Len(uint(sz))] = i
		i++
	}
}

// idxForSize returns the index of the smallest bucket whose size is >=
// sz, or -1 if sz exceeds maxSlabSize.
func idxForSize(sz int) int {
	if sz <= minSlabSize {
		return 0
	}
	if sz > maxSlabSize {
		return -1
	}
	i := bits2idx[bits.Len(uint(sz))]
	if uint(sz)&(uint(sz)-1) == 0 {
		// already a power of two, fits its own bucket exactly
		return i
	}
	return i + 1
}

// Get returns a buffer with cap >= size and len == size. Bytes beyond
// any previously-written prefix are NOT zeroed: callers that grow a
// region must write every structurally significant byte (header,
// footer, free-list links) before trusting the new space. region.Memory
// writes nothing into it; alloc.Heap writes the boundary tags right
// after each Sbrk.
func Get(size int) []byte {
	i := idxForSize(size)
	if i < 0 {
		return make([]byte, size)
	}
	p := slabs[i]
	bufp := p.Get().(*[]byte)
	buf := *bufp
	if cap(buf) < size {
		// defensive: New() should always satisfy this for valid i
		return make([]byte, size)
	}
	return buf[:size]
}

// Put returns buf to its bucket if it was produced by Get and its cap is
// an exact bucket size. Buffers not recognized as pool-owned are
// silently dropped for the GC to reclaim.
func Put(buf []byte) {
	c := cap(buf)
	if c < minSlabSize || c > maxSlabSize {
		return
	}
	if uint(c)&uint(c-1) != 0 {
		return // not a power of two, can't have come from a bucket
	}
	i := bits2idx[bits.Len(uint(c))]
	if i >= len(slabs) || slabs[i].size != c {
		return
	}
	b := buf[:c]
	slabs[i].Put(&b)
}

// Grow returns a buffer of exactly newSize bytes whose first len(old)
// bytes equal old, recycling old back into the pool if it was
// pool-owned. newSize must be >= len(old).
func Grow(old []byte, newSize int) []byte {
	buf := Get(newSize)
	copy(buf, old)
	if cap(old) > 0 {
		Put(old)
	}
	return buf
}
