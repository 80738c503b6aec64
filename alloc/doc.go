// Package alloc implements the placement engine: a segregated-fit
// allocator over a single contiguous, monotonically growable byte arena
// supplied by a region.Provider.
//
// The arena is organized as a prologue sentinel block, a sequence of
// user blocks delimited by boundary tags, and an epilogue sentinel.
// Every block carries a redundant header/footer pair so that a block's
// physical neighbors can be located in O(1) without walking the heap.
// Free blocks additionally thread a doubly-linked list through their
// payload area; which of 12 size-class lists a free block belongs to is
// fully determined by its size (see class in seglist.go).
//
// A Heap is not safe for concurrent use: the whole package assumes a
// single mutator, matching the allocator it generalizes.
package alloc
