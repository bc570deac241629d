//go:build unix

package alloc

import (
	"os"
	"sync/atomic"
	"unsafe"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"

	"github.com/pavanmanishd/memkit/internal/logger"
)

// PageHeap maps anonymous private pages for every block, keeping container
// storage outside the Go heap. Fresh pages are zero-filled by the kernel.
type PageHeap struct {
	pageSize int
	mapped   atomic.Int64
	failed   atomic.Int64
}

// NewPageHeap returns a PageHeap using the system page size.
func NewPageHeap() *PageHeap {
	return &PageHeap{pageSize: os.Getpagesize()}
}

// Name implements Allocator.
func (p *PageHeap) Name() string { return "pages" }

// Mapped returns the number of bytes currently mapped.
func (p *PageHeap) Mapped() int { return int(p.mapped.Load()) }

// FailedFrees returns the number of Free calls whose munmap failed.
func (p *PageHeap) FailedFrees() int { return int(p.failed.Load()) }

func (p *PageHeap) roundUp(n int) int {
	return (n + p.pageSize - 1) &^ (p.pageSize - 1)
}

// mapping returns the whole page-rounded mapping that starts at b. It is
// derived from len(b) since callers may hand back a block whose capacity
// was trimmed.
func (p *PageHeap) mapping(b []byte) []byte {
	return unsafe.Slice(unsafe.SliceData(b), p.roundUp(len(b)))
}

// Allocate implements Allocator.
func (p *PageHeap) Allocate(size int) ([]byte, error) {
	if size <= 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "allocate %d bytes", size)
	}
	n := p.roundUp(size)
	data, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrapf(ErrOutOfMemory, "mmap %d bytes: %v", n, err)
	}
	p.mapped.Add(int64(n))
	return data[:size], nil
}

// Reallocate implements Allocator. Growth within the last mapped page is
// done in place.
func (p *PageHeap) Reallocate(b []byte, size int) ([]byte, error) {
	done, err := checkGrow(b, size)
	if err != nil || done {
		return b, err
	}
	if len(b) == 0 {
		return p.Allocate(size)
	}
	if m := p.mapping(b); size <= len(m) {
		nb := m[:size]
		clear(nb[len(b):])
		return nb, nil
	}
	nb, err := p.Allocate(size)
	if err != nil {
		return b, err
	}
	copy(nb, b)
	p.Free(b)
	return nb, nil
}

// Free implements Allocator. A failed munmap is logged and counted.
func (p *PageHeap) Free(b []byte) {
	if len(b) == 0 {
		return
	}
	m := p.mapping(b)
	if err := unix.Munmap(m); err != nil {
		p.failed.Add(1)
		logger.L().Warn("alloc: munmap failed", "size", len(b), "cap", cap(b), "mapping", len(m), "err", err)
		return
	}
	p.mapped.Add(-int64(len(m)))
}

var _ Allocator = (*PageHeap)(nil)
