package region

import (
	"fmt"

	"github.com/segalloc/segalloc/internal/slabpool"
)

// Memory is the default in-process Provider: a single growable []byte
// recycled through internal/slabpool so repeated Init/Sbrk cycles (one
// per test case, one per fuzz worker) don't each leave a fresh slice for
// the garbage collector to chase down.
type Memory struct {
	buf []byte

	// Limit caps how large the region may grow, in bytes. Zero means
	// unlimited. Exists so tests and cmd/heapfuzz can exercise the
	// "region provider refuses growth" path from spec.md §7 without an
	// actual multi-gigabyte allocation.
	Limit int
}

// NewMemory returns a ready-to-use in-process region provider. Calling
// Init is optional; NewMemory already starts from an empty region.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Init() error {
	if cap(m.buf) > 0 {
		slabpool.Put(m.buf)
	}
	m.buf = nil
	return nil
}

func (m *Memory) Sbrk(n int) (int, error) {
	if n < 0 {
		return -1, fmt.Errorf("region: negative grow amount %d", n)
	}
	off := len(m.buf)
	newSize := off + n
	if m.Limit > 0 && newSize > m.Limit {
		return -1, fmt.Errorf("region: grow to %d exceeds limit %d: %w", newSize, m.Limit, ErrProviderExhausted)
	}
	m.buf = slabpool.Grow(m.buf, newSize)
	return off, nil
}

func (m *Memory) Bytes() []byte { return m.buf }

func (m *Memory) HeapLo() int { return 0 }

func (m *Memory) HeapHi() int { return len(m.buf) }
