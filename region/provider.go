// Package region defines the region-provider contract consumed by the
// placement engine in package alloc, plus a default in-process
// implementation of it.
//
// This is the Go-native shape of the external collaborator the original
// specification calls "the region provider": a monotonic sbrk-style
// primitive that extends a contiguous byte range and never shrinks it.
package region

import "errors"

// ErrProviderExhausted is returned by Sbrk when the provider refuses to
// grow the region any further.
var ErrProviderExhausted = errors.New("region: provider refused to grow")

// Provider is the sbrk-style growth primitive the allocator core builds
// its heap on top of. A Provider is single-use: Init resets it to an
// empty region, and it must not be shared between two concurrently-live
// heaps.
type Provider interface {
	// Init resets the region so the next Sbrk starts from offset 0.
	Init() error

	// Sbrk extends the region by exactly n bytes and returns the offset
	// of the first newly-available byte. It returns a non-nil error
	// (ErrProviderExhausted or a wrapped cause) on failure; the region
	// is left unchanged when it does.
	Sbrk(n int) (off int, err error)

	// Bytes returns the current backing storage for the region, from
	// offset 0 to HeapHi(). The returned slice aliases the provider's
	// storage: writes through it are writes to the region. It is
	// revalidated after every Sbrk call, since growth may relocate the
	// backing array.
	Bytes() []byte

	// HeapLo returns the lowest valid offset in the region (always 0
	// once Init has been called).
	HeapLo() int

	// HeapHi returns one past the highest valid offset in the region,
	// i.e. the current region size in bytes.
	HeapHi() int
}
