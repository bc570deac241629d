package alloc

import "github.com/cockroachdb/errors"

var (
	// ErrOutOfMemory indicates that the allocator could not provide the requested bytes.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrInvalidSize indicates a zero, negative or overflowing size.
	ErrInvalidSize = errors.New("alloc: invalid size")

	// ErrShrink indicates a Reallocate call asking for fewer bytes than the block holds.
	ErrShrink = errors.New("alloc: reallocate cannot shrink a block")

	// ErrInvalidAlignment indicates an alignment that is not a positive power of two.
	ErrInvalidAlignment = errors.New("alloc: alignment must be a power of two")
)

// Allocator is the capability every container allocates through.
//
// Implementations:
//   - Heap: Go heap allocations
//   - PageHeap: mmap-backed pages
//   - Counting: accounting wrapper around another Allocator
//   - Aligned: alignment adapter around another Allocator
//   - memkit.Stack, memkit.Arena, memkit.SafeArena: bump allocators
type Allocator interface {
	// Name identifies the allocator in diagnostics.
	Name() string

	// Allocate returns a zeroed block of exactly size bytes.
	Allocate(size int) ([]byte, error)

	// Reallocate grows b to size bytes. The result may live at a new
	// address, in which case b must no longer be used. Bytes [len(b), size)
	// are zero. On error b remains valid and unchanged.
	Reallocate(b []byte, size int) ([]byte, error)

	// Free releases b, which must be a block returned by this allocator.
	Free(b []byte)
}

// DefaultAllocator is a shared Heap without a limit.
var DefaultAllocator Allocator = NewHeap()

// checkGrow validates a Reallocate request. It reports done when b already
// has the requested size.
func checkGrow(b []byte, size int) (done bool, err error) {
	if size <= 0 {
		return false, errors.Wrapf(ErrInvalidSize, "reallocate to %d bytes", size)
	}
	if size < len(b) {
		return false, errors.Wrapf(ErrShrink, "%d -> %d bytes", len(b), size)
	}
	return size == len(b), nil
}
