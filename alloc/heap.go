package alloc

import (
	"errors"
	"fmt"

	"github.com/segalloc/segalloc/region"
)

// Ptr is an opaque handle to a live allocation's payload. It plays the
// role a raw pointer plays in the original specification; the zero
// value is never valid (NilPtr is the only sentinel).
type Ptr int

// NilPtr is the null Ptr: what Alloc returns on failure, what Free is a
// no-op on, and what a consumed Realloc(p, 0) returns.
const NilPtr Ptr = -1

// Option configures a Heap at construction time.
type Option func(*Heap)

// WithCheckOnFree makes the heap run Check after every Free call and
// keep the violations it finds, readable through Heap.LastDiagnostics;
// Free itself returns nothing. This is the Go
// shape of spec.md §6's single compile-time "check on free" toggle: a
// constructor option instead of a preprocessor define, since a runtime
// switch composes better with table-driven tests that want the behavior
// both on and off in the same binary.
func WithCheckOnFree(enabled bool) Option {
	return func(h *Heap) { h.checkOnFree = enabled }
}

// Heap is a single segregated-fit allocator instance over one
// region.Provider. It is not safe for concurrent use.
type Heap struct {
	p region.Provider

	// freeHead holds the head offset of each of the numLists segregated
	// free lists. Per DESIGN.md's resolution of spec.md's Open Question
	// on directory placement, this lives on the Heap itself rather than
	// inside the arena: Go has no use for an in-arena directory whose
	// only purpose in the original model was to let offset zero double
	// as a null pointer.
	freeHead [numLists]blockRef

	checkOnFree bool
	lastDiag    []string
}

// New constructs a Heap over p, initializing p and laying down the
// prologue/epilogue sentinels and an initial CHUNKSIZE of free space.
// p must not already be in use by another Heap.
func New(p region.Provider, opts ...Option) (*Heap, error) {
	if p == nil {
		return nil, errors.New("alloc: nil provider")
	}
	h := &Heap{p: p}
	for i := range h.freeHead {
		h.freeHead[i] = nilRef
	}
	for _, o := range opts {
		o(h)
	}

	if err := p.Init(); err != nil {
		return nil, fmt.Errorf("alloc: provider init: %w", err)
	}

	// Request one word of leading padding, room for the prologue (a
	// permanently-allocated minimum-size block), and the epilogue (a
	// permanently-allocated zero-size header). The padding word is never
	// touched: without it, every header would sit at an offset that is a
	// multiple of 8, which would put every payload (header offset +
	// wordSize) at offset ≡ 4 (mod 8) instead of on an 8-byte boundary.
	// Shifting the prologue header to offset wordSize instead flips that:
	// headers land at ≡ wordSize (mod dsize) and payloads land ≡ 0.
	if _, err := p.Sbrk(wordSize + minBlockSize + wordSize); err != nil {
		return nil, fmt.Errorf("alloc: reserving prologue/epilogue: %w", err)
	}
	arena := h.arena()
	writeBoundaryTag(arena, wordSize, minBlockSize, true)
	writeHeader(arena, wordSize+minBlockSize, 0, true)

	if _, err := h.extendHeap(chunkSize / wordSize); err != nil {
		return nil, fmt.Errorf("alloc: initial extend: %w", err)
	}
	return h, nil
}

func (h *Heap) arena() []byte { return h.p.Bytes() }

func offToPtr(off blockRef) Ptr { return Ptr(off + wordSize) }
func ptrToOff(p Ptr) blockRef   { return int(p) - wordSize }

// Alloc returns a Ptr to a block holding at least n usable bytes, or
// NilPtr if n <= 0 or the region cannot be grown further.
func (h *Heap) Alloc(n int) Ptr {
	if n <= 0 {
		return NilPtr
	}
	need := asize(n)

	if off := h.findFit(need); off != nilRef {
		return offToPtr(h.place(off, need))
	}

	grow := need
	if grow < chunkSize {
		grow = chunkSize
	}
	off, err := h.extendHeap(grow / wordSize)
	if err != nil || off == nilRef {
		return NilPtr
	}
	return offToPtr(h.place(off, need))
}

// Cap returns the usable payload capacity of the block p points into
// (total block size minus header/footer overhead). It is always >= the
// n originally passed to Alloc or Realloc.
func (h *Heap) Cap(p Ptr) int {
	if p == NilPtr {
		return 0
	}
	return blockSize(h.arena(), ptrToOff(p)) - dsize
}

// Bytes returns a slice over p's usable payload, sized per Cap. The
// slice aliases the heap's arena and is invalidated by any later call
// that grows the region (Alloc/Realloc extending the heap); callers
// should re-fetch it after such a call rather than retain it across one.
func (h *Heap) Bytes(p Ptr) []byte {
	if p == NilPtr {
		return nil
	}
	off := ptrToOff(p)
	arena := h.arena()
	size := blockSize(arena, off)
	return arena[off+wordSize : off+size-wordSize]
}

// place removes a free block of at least `need` bytes from its free
// list and carves an allocated block of exactly `need` bytes from its
// front, returning the leftover to its free list if it's large enough
// to hold a block on its own.
func (h *Heap) place(off blockRef, need int) blockRef {
	h.freelistRemove(off)
	arena := h.arena()
	size := blockSize(arena, off)

	if size-need >= minBlockSize {
		writeBoundaryTag(arena, off, need, true)
		rem := off + need
		writeBoundaryTag(arena, rem, size-need, false)
		// off was free, so I4 already guaranteed both of its physical
		// neighbors were allocated; the leftover's next neighbor is
		// off's old next neighbor, still allocated, so no coalescing
		// is needed here.
		h.freelistInsert(rem)
	} else {
		writeBoundaryTag(arena, off, size, true)
	}
	return off
}

// extendHeap grows the region by at least words*wordSize bytes (rounded
// up to an even word count to preserve 8-byte alignment), lays down a
// new free block over the grown span by overlaying the old epilogue's
// header slot, writes a fresh epilogue after it, and immediately
// coalesces the new block with the heap's previous tail block if that
// tail was free.
func (h *Heap) extendHeap(words int) (blockRef, error) {
	if words%2 != 0 {
		words++
	}
	size := words * wordSize
	if size < minBlockSize {
		size = minBlockSize
	}

	off, err := h.p.Sbrk(size)
	if err != nil {
		return nilRef, err
	}
	arena := h.arena()

	blockOff := off - wordSize // the old epilogue's header slot
	writeBoundaryTag(arena, blockOff, size, false)
	writeHeader(arena, blockOff+size, 0, true) // new epilogue

	return h.coalesce(blockOff), nil
}

// coalesce merges the free block at off with whichever physical
// neighbors are also free, inserts the (possibly merged) result into
// its size class, and returns its final offset. off must already carry
// a free boundary tag and must not yet be linked into any free list.
func (h *Heap) coalesce(off blockRef) blockRef {
	arena := h.arena()
	size := blockSize(arena, off)
	prevOff := prevBlock(arena, off)
	nextOff := nextBlock(arena, off)
	prevAlloc := isAlloc(arena, prevOff)
	nextAlloc := isAlloc(arena, nextOff)

	switch {
	case prevAlloc && nextAlloc:
		h.freelistInsert(off)
		return off

	case prevAlloc && !nextAlloc:
		nsize := blockSize(arena, nextOff)
		h.freelistRemove(nextOff)
		writeBoundaryTag(arena, off, size+nsize, false)
		h.freelistInsert(off)
		return off

	case !prevAlloc && nextAlloc:
		psize := blockSize(arena, prevOff)
		h.freelistRemove(prevOff)
		writeBoundaryTag(arena, prevOff, psize+size, false)
		h.freelistInsert(prevOff)
		return prevOff

	default: // both free
		psize := blockSize(arena, prevOff)
		nsize := blockSize(arena, nextOff)
		h.freelistRemove(prevOff)
		h.freelistRemove(nextOff)
		writeBoundaryTag(arena, prevOff, psize+size+nsize, false)
		h.freelistInsert(prevOff)
		return prevOff
	}
}

// Free returns p's block to the heap, immediately coalescing it with
// any free physical neighbors. Freeing NilPtr is a no-op. Freeing a Ptr
// not returned by this Heap, or freeing the same Ptr twice, is
// undefined and is not detected, matching spec.md §7.
func (h *Heap) Free(p Ptr) {
	if p == NilPtr {
		return
	}
	off := ptrToOff(p)
	arena := h.arena()
	size := blockSize(arena, off)
	writeBoundaryTag(arena, off, size, false)
	h.coalesce(off)

	if h.checkOnFree {
		ok, diag := h.Diagnose()
		h.lastDiag = diag
		_ = ok
	}
}

// LastDiagnostics returns the diagnostic messages produced by the most
// recent automatic Check triggered by WithCheckOnFree, or nil if that
// option isn't set or no violation was found.
func (h *Heap) LastDiagnostics() []string { return h.lastDiag }

// Realloc resizes the block p points to, per spec.md §4.6:
//
//   - p == NilPtr: behaves as Alloc(n).
//   - n < 0: returns NilPtr, p remains valid.
//   - n == 0: frees p, returns NilPtr.
//   - the block already fits: shrinks in place when the leftover is
//     large enough to form its own block, otherwise returns p unchanged.
//   - growing and the next physical block is free and large enough:
//     merges with it in place, splitting off any surplus.
//   - otherwise: allocates a new block, copies min(old, new) usable
//     bytes, frees the old block, and returns the new one.
func (h *Heap) Realloc(p Ptr, n int) Ptr {
	if p == NilPtr {
		return h.Alloc(n)
	}
	if n < 0 {
		return NilPtr
	}
	if n == 0 {
		h.Free(p)
		return NilPtr
	}

	off := ptrToOff(p)
	arena := h.arena()
	current := blockSize(arena, off)
	required := asize(n)

	if required == current {
		return p
	}

	if required < current {
		if current-required < minBlockSize {
			return p
		}
		writeBoundaryTag(arena, off, required, true)
		rem := off + required
		writeBoundaryTag(arena, rem, current-required, false)
		// off was allocated, so its old next neighbor may be free:
		// coalesce the leftover rather than assume isolation.
		h.coalesce(rem)
		return p
	}

	nextOff := nextBlock(arena, off)
	if !isAlloc(arena, nextOff) {
		nsize := blockSize(arena, nextOff)
		if current+nsize >= required {
			h.freelistRemove(nextOff)
			merged := current + nsize
			if merged-required >= minBlockSize {
				writeBoundaryTag(arena, off, required, true)
				rem := off + required
				writeBoundaryTag(arena, rem, merged-required, false)
				// next's old next neighbor was forced allocated by I4
				// (next was free), so the leftover needs no coalescing.
				h.freelistInsert(rem)
			} else {
				writeBoundaryTag(arena, off, merged, true)
			}
			return p
		}
	}

	q := h.Alloc(n)
	if q == NilPtr {
		return NilPtr
	}
	arena = h.arena() // Alloc may have grown (and relocated) the region
	copyLen := current - dsize
	if newCap := required - dsize; newCap < copyLen {
		copyLen = newCap
	}
	copy(arena[int(q):int(q)+copyLen], arena[int(p):int(p)+copyLen])
	h.Free(p)
	return q
}
