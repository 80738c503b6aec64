package alloc

import "github.com/segalloc/segalloc/container/ring"

// Stats summarizes the current state of a Heap's whole arena.
type Stats struct {
	// TotalBytes is the full size of the region handed out by the
	// provider so far, prologue and epilogue included.
	TotalBytes int
	// UsedBytes is the sum of the sizes of every allocated block.
	UsedBytes int
	// FreeBytes is the sum of the sizes of every free block.
	FreeBytes int
	// BlockCount is the total number of blocks in the arena, allocated
	// or free, excluding the prologue and epilogue sentinels.
	BlockCount int
	// FreeBlockCount is the number of those blocks that are free.
	FreeBlockCount int
}

// ClassStat summarizes one segregated free list.
type ClassStat struct {
	// Class is the free-list index, 0 through numLists-1.
	Class int
	// Count is the number of free blocks currently on this list.
	Count int
	// Bytes is the sum of their sizes.
	Bytes int
}

// Stats walks the whole arena once and reports aggregate occupancy.
// Unlike Diagnose, it assumes the heap is already structurally sound
// and does no invariant checking of its own.
func (h *Heap) Stats() Stats {
	arena := h.arena()
	var s Stats
	s.TotalBytes = h.p.HeapHi()

	off := firstBlockOff
	heapHi := h.p.HeapHi()
	for off < heapHi {
		size, alloc := readHeader(arena, off)
		if size == 0 {
			break // epilogue
		}
		s.BlockCount++
		if alloc {
			s.UsedBytes += size
		} else {
			s.FreeBlockCount++
			s.FreeBytes += size
		}
		off += size
	}
	return s
}

// ClassStats returns a fixed-size snapshot of every segregated free
// list: one ClassStat per list, in class order. Each call builds a new
// []ClassStat and a new Ring of exactly numLists items from the current
// free lists; the Ring never grows.
func (h *Heap) ClassStats() *ring.Ring[ClassStat] {
	arena := h.arena()
	raw := make([]ClassStat, numLists)
	for k := 0; k < numLists; k++ {
		raw[k].Class = k
		for cur := h.freeHead[k]; cur != nilRef; cur = getNextLink(arena, cur) {
			raw[k].Count++
			raw[k].Bytes += blockSize(arena, cur)
		}
	}
	return ring.NewFromSlice(raw)
}
