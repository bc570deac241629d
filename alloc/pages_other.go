//go:build !unix

package alloc

// PageHeap falls back to the Go heap on platforms without mmap.
type PageHeap struct {
	Heap
}

// NewPageHeap returns a PageHeap backed by the Go heap.
func NewPageHeap() *PageHeap {
	return &PageHeap{}
}

// Name implements Allocator.
func (p *PageHeap) Name() string { return "pages" }

// Mapped returns the number of live bytes.
func (p *PageHeap) Mapped() int { return p.InUse() }

// FailedFrees always returns 0; the Go heap cannot reject a free.
func (p *PageHeap) FailedFrees() int { return 0 }

var _ Allocator = (*PageHeap)(nil)
