package alloc

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// Heap allocates from the Go heap. A Heap created with NewLimitedHeap
// refuses requests that would take its live bytes past the limit, which
// makes allocation failure reproducible.
type Heap struct {
	limit int64
	inUse atomic.Int64
}

// NewHeap returns a Heap without a limit.
func NewHeap() *Heap {
	return &Heap{}
}

// NewLimitedHeap returns a Heap that holds at most limit live bytes.
// A limit <= 0 means no limit.
func NewLimitedHeap(limit int) *Heap {
	return &Heap{limit: int64(limit)}
}

// Name implements Allocator.
func (h *Heap) Name() string { return "heap" }

// InUse returns the number of live bytes handed out by h.
func (h *Heap) InUse() int { return int(h.inUse.Load()) }

// Allocate implements Allocator.
func (h *Heap) Allocate(size int) ([]byte, error) {
	if size <= 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "allocate %d bytes", size)
	}
	if err := h.reserve(size); err != nil {
		return nil, err
	}
	return make([]byte, size), nil
}

// Reallocate implements Allocator. The Go heap cannot grow a block in
// place, so the contents are always copied into a new block.
func (h *Heap) Reallocate(b []byte, size int) ([]byte, error) {
	done, err := checkGrow(b, size)
	if err != nil || done {
		return b, err
	}
	if err := h.reserve(size - len(b)); err != nil {
		return b, err
	}
	nb := make([]byte, size)
	copy(nb, b)
	return nb, nil
}

// Free implements Allocator. The memory itself is reclaimed by the garbage
// collector; Free only returns the bytes to the limit.
func (h *Heap) Free(b []byte) {
	h.inUse.Add(-int64(len(b)))
}

func (h *Heap) reserve(n int) error {
	if h.limit <= 0 {
		h.inUse.Add(int64(n))
		return nil
	}
	for {
		cur := h.inUse.Load()
		next := cur + int64(n)
		if next > h.limit {
			return errors.Wrapf(ErrOutOfMemory, "heap limit %d: %d in use, %d requested", h.limit, cur, n)
		}
		if h.inUse.CompareAndSwap(cur, next) {
			return nil
		}
	}
}

var _ Allocator = (*Heap)(nil)
