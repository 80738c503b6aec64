package alloc

import "fmt"

// firstBlockOff is the offset of the first real (non-sentinel) block:
// immediately after the leading alignment pad and the fixed-size
// prologue (see the comment in Heap.New).
const firstBlockOff = wordSize + minBlockSize

// Check reports whether every structural invariant from spec.md §4.7
// currently holds. It never mutates the heap.
func (h *Heap) Check() bool {
	ok, _ := h.Diagnose()
	return ok
}

// Diagnose is Check with the list of violations found, if any. It
// implements spec.md §4.7 exactly:
//
//   - every block reachable from a free-list head is marked free;
//   - every block reachable from a free-list head has both physical
//     neighbors allocated (I4: no two adjacent free blocks);
//   - walking the heap from the prologue to the epilogue, every block's
//     header equals its footer (I1), every block after the first has
//     size >= 16 (I2), and no footer overruns the next header (I6);
//   - the number of blocks reachable from the directory equals the
//     number of free blocks found during the walk (I5/P5).
func (h *Heap) Diagnose() (bool, []string) {
	arena := h.arena()
	var diag []string
	ok := true
	fail := func(format string, args ...interface{}) {
		ok = false
		diag = append(diag, fmt.Sprintf(format, args...))
	}

	reachable := make(map[blockRef]bool)
	directoryCount := 0
	for k := 0; k < numLists; k++ {
		for cur := h.freeHead[k]; cur != nilRef; cur = getNextLink(arena, cur) {
			directoryCount++
			reachable[cur] = true

			size, alloc := readHeader(arena, cur)
			if alloc {
				fail("block at %d is on free list %d but marked allocated", cur, k)
			}
			if gotClass := class(size); gotClass != k {
				fail("block at %d (size %d) is on free list %d, belongs on %d", cur, size, k, gotClass)
			}

			prevOff := prevBlock(arena, cur)
			nextOff := nextBlock(arena, cur)
			if !isAlloc(arena, prevOff) {
				fail("free block at %d has a free left neighbor at %d (I4 violated)", cur, prevOff)
			}
			if !isAlloc(arena, nextOff) {
				fail("free block at %d has a free right neighbor at %d (I4 violated)", cur, nextOff)
			}
		}
	}

	walkFreeCount := 0
	heapHi := h.p.HeapHi()
	off := wordSize // the prologue header
	first := true
	for off < heapHi {
		size, alloc := readHeader(arena, off)
		if size == 0 {
			break // epilogue
		}
		if !first && size < minBlockSize {
			fail("block at %d has size %d < minimum %d", off, size, minBlockSize)
		}
		if size%8 != 0 {
			fail("block at %d has size %d, not a multiple of 8", off, size)
		}

		fOff := footerOff(off, size)
		if fOff+wordSize > heapHi {
			fail("block at %d (size %d) footer runs past the end of the heap", off, size)
			break
		}
		fSize, fAlloc := readHeader(arena, fOff)
		if fSize != size || fAlloc != alloc {
			fail("block at %d header (size=%d alloc=%v) disagrees with its footer (size=%d alloc=%v)",
				off, size, alloc, fSize, fAlloc)
		}

		next := off + size
		if next <= off {
			fail("block at %d does not advance the heap walk (size %d)", off, size)
			break
		}
		if fOff >= next {
			fail("block at %d footer at %d overlaps the next block's header at %d", off, fOff, next)
		}

		if !alloc {
			walkFreeCount++
			if !reachable[off] {
				fail("free block at %d is not reachable from any free-list head", off)
			}
		}

		off = next
		first = false
	}

	if directoryCount != walkFreeCount {
		fail("free-list directory holds %d blocks but the heap walk found %d free blocks", directoryCount, walkFreeCount)
	}

	return ok, diag
}
