// Command heapfuzz runs randomized allocate/free/reallocate sequences
// against independent Heap instances and checks every structural
// invariant after every operation.
//
// Usage:
//
//	heapfuzz -workers 8 -ops 20000 -maxsize 4096
//
// A worker that observes a violation, or that finds two live
// allocations overlapping in the arena, reports it to stderr and the
// process exits with status 1.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"

	"github.com/segalloc/segalloc/alloc"
	"github.com/segalloc/segalloc/concurrency/gopool"
	"github.com/segalloc/segalloc/region"
)

func main() {
	workers := flag.Int("workers", 4, "number of independent fuzz workers")
	ops := flag.Int("ops", 20000, "number of allocate/free/realloc operations per worker")
	maxSize := flag.Int("maxsize", 4096, "largest single allocation request, in bytes")
	limit := flag.Int("limit", 64<<20, "per-worker region byte limit (0 means unlimited)")
	seed := flag.Int64("seed", 1, "base PRNG seed; worker i uses seed+int64(i)")
	flag.Parse()

	var failed int32
	pool := gopool.NewGoPool("heapfuzz", nil)
	pool.SetPanicHandler(func(ctx context.Context, r interface{}) {
		atomic.StoreInt32(&failed, 1)
		fmt.Fprintf(os.Stderr, "heapfuzz: worker panicked: %v\n", r)
	})

	var wg sync.WaitGroup
	wg.Add(*workers)
	for i := 0; i < *workers; i++ {
		i := i
		pool.Go(func() {
			defer wg.Done()
			if violation := runWorker(i, *ops, *maxSize, *limit, *seed+int64(i)); violation != "" {
				atomic.StoreInt32(&failed, 1)
				fmt.Fprintf(os.Stderr, "heapfuzz: worker %d: %s\n", i, violation)
			}
		})
	}
	wg.Wait()

	if atomic.LoadInt32(&failed) != 0 {
		os.Exit(1)
	}
	log.Printf("heapfuzz: %d workers, %d ops each: all invariants held", *workers, *ops)
}

// liveAlloc tracks one allocation this worker believes is still live,
// so runWorker can detect two allocations overlapping in the arena —
// a bug Check alone (which only inspects boundary tags) cannot catch
// on its own, since a corrupted tag could still look locally
// consistent.
type liveAlloc struct {
	ptr alloc.Ptr
	off int
	cap int
}

// runWorker drives one independent Heap through a random sequence of
// Alloc/Free/Realloc calls, calling Check after every one, and returns
// a non-empty description of the first violation it finds.
func runWorker(id, ops, maxSize, limit int, seed int64) string {
	rnd := rand.New(rand.NewSource(seed))
	p := region.NewMemory()
	p.Limit = limit
	h, err := alloc.New(p, alloc.WithCheckOnFree(true))
	if err != nil {
		return fmt.Sprintf("alloc.New: %v", err)
	}

	var live []liveAlloc
	for step := 0; step < ops; step++ {
		switch {
		case len(live) == 0 || rnd.Intn(3) != 0:
			n := 1 + rnd.Intn(maxSize)
			ptr := h.Alloc(n)
			if ptr == alloc.NilPtr {
				break
			}
			live = append(live, liveAlloc{ptr: ptr, off: int(ptr), cap: h.Cap(ptr)})
			if v := checkOverlapAt(live, len(live)-1); v != "" {
				return v
			}

		case rnd.Intn(2) == 0:
			idx := rnd.Intn(len(live))
			h.Free(live[idx].ptr)
			live[idx] = live[len(live)-1]
			live = live[:len(live)-1]

		default:
			idx := rnd.Intn(len(live))
			n := 1 + rnd.Intn(maxSize)
			np := h.Realloc(live[idx].ptr, n)
			if np == alloc.NilPtr {
				break
			}
			live[idx] = liveAlloc{ptr: np, off: int(np), cap: h.Cap(np)}
			if v := checkOverlapAt(live, idx); v != "" {
				return v
			}
		}

		if ok, diag := h.Diagnose(); !ok {
			return fmt.Sprintf("step %d: invariant violation: %v", step, diag)
		}
	}
	return ""
}

// checkOverlapAt verifies that live[idx]'s payload span doesn't
// intersect any other entry's payload span.
func checkOverlapAt(live []liveAlloc, idx int) string {
	a := live[idx]
	aLo, aHi := a.off, a.off+a.cap
	for j, b := range live {
		if j == idx {
			continue
		}
		bLo, bHi := b.off, b.off+b.cap
		if aLo < bHi && bLo < aHi {
			return fmt.Sprintf("allocation at ptr %d overlaps allocation at ptr %d", a.ptr, b.ptr)
		}
	}
	return ""
}
