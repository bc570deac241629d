package memkit

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/pavanmanishd/memkit/alloc"
	"github.com/pavanmanishd/memkit/internal/logger"
)

// DefaultChunkSize is the default chunk size for new arenas (64 KiB).
const DefaultChunkSize = 1 << 16

// chunk is one block obtained from the parent allocator.
type chunk struct {
	buf    []byte  // backing memory
	offset uintptr // allocation offset within buf
}

// Arena is a growable bump allocator. It carves pointer-aligned blocks out of
// chunks obtained from a parent allocator and adds a chunk whenever the
// current one is full. Not goroutine-safe; use SafeArena for concurrent access.
type Arena struct {
	parent    alloc.Allocator
	chunks    []chunk
	chunkSize int
	current   int // index of the chunk allocations come from
}

// NewArena creates an Arena drawing chunks of chunkSize bytes from
// alloc.DefaultAllocator. If chunkSize <= 0, DefaultChunkSize is used.
func NewArena(chunkSize int) *Arena {
	a, err := NewArenaWithOptions(Options{ChunkSize: chunkSize})
	if err != nil {
		panic(err)
	}
	return a
}

// NewArenaWithOptions creates an Arena and allocates its first chunk.
func NewArenaWithOptions(opts Options) (*Arena, error) {
	opts = opts.withDefaults()
	a := &Arena{parent: opts.Parent, chunkSize: opts.ChunkSize}
	if err := a.grow(opts.ChunkSize); err != nil {
		return nil, err
	}
	return a, nil
}

// Name implements alloc.Allocator.
func (a *Arena) Name() string { return "arena(" + a.parent.Name() + ")" }

// Allocate implements alloc.Allocator. The block is zeroed even when it
// reuses memory handed out before a Reset.
func (a *Arena) Allocate(size int) ([]byte, error) {
	if size <= 0 {
		return nil, errors.Wrapf(alloc.ErrInvalidSize, "arena: allocate %d bytes", size)
	}
	b, err := a.bump(size)
	if err != nil {
		return nil, err
	}
	clear(b)
	return b, nil
}

// AllocBytes returns n bytes from the arena without clearing them. Memory
// from a fresh chunk is zero; memory reused after Reset holds old contents.
// Returns nil if n <= 0 or the parent allocator is exhausted.
func (a *Arena) AllocBytes(n int) []byte {
	if n <= 0 {
		return nil
	}
	b, err := a.bump(n)
	if err != nil {
		return nil
	}
	return b
}

// Reallocate implements alloc.Allocator. The most recent block grows in
// place while its chunk has room; otherwise the contents move to a new block.
func (a *Arena) Reallocate(b []byte, size int) ([]byte, error) {
	if len(b) == 0 {
		return a.Allocate(size)
	}
	if size < len(b) {
		return b, errors.Wrapf(alloc.ErrShrink, "arena: %d -> %d bytes", len(b), size)
	}
	if size == len(b) {
		return b, nil
	}
	a.panicIfReleased()
	c := &a.chunks[a.current]
	if start, ok := c.lastBlock(b); ok && start+uintptr(size) <= uintptr(len(c.buf)) {
		c.offset = start + uintptr(size)
		nb := c.buf[start:c.offset:c.offset]
		clear(nb[len(b):])
		return nb, nil
	}
	nb, err := a.Allocate(size)
	if err != nil {
		return b, err
	}
	copy(nb, b)
	return nb, nil
}

// Free implements alloc.Allocator. Freeing the most recent block rewinds the
// current chunk; other blocks are reclaimed only by Reset or Release.
func (a *Arena) Free(b []byte) {
	if a.chunks == nil {
		return
	}
	c := &a.chunks[a.current]
	if start, ok := c.lastBlock(b); ok {
		c.offset = start
	}
}

// EnsureCapacity ensures the current chunk has at least n free bytes,
// moving to a later empty chunk that fits or growing the arena if needed.
func (a *Arena) EnsureCapacity(n int) error {
	a.panicIfReleased()
	c := &a.chunks[a.current]
	if alignPtr(c.offset)+uintptr(n) <= uintptr(len(c.buf)) {
		return nil
	}
	// Chunks past current are empty; reuse the first one that fits.
	for i := a.current + 1; i < len(a.chunks); i++ {
		if n <= len(a.chunks[i].buf) {
			a.current = i
			return nil
		}
	}
	return a.grow(n)
}

// Reset rewinds every chunk but keeps them for reuse.
func (a *Arena) Reset() {
	a.panicIfReleased()
	for i := range a.chunks {
		a.chunks[i].offset = 0
	}
	a.current = 0
}

// Release returns all chunks to the parent allocator and makes the arena
// unusable. Any subsequent allocation panics.
func (a *Arena) Release() {
	for _, c := range a.chunks {
		a.parent.Free(c.buf)
	}
	a.chunks = nil
	a.current = 0
}

// bump carves n pointer-aligned bytes, moving to the next reusable chunk or
// growing when the current one is full.
func (a *Arena) bump(n int) ([]byte, error) {
	a.panicIfReleased()
	for {
		c := &a.chunks[a.current]
		off := alignPtr(c.offset)
		if off+uintptr(n) <= uintptr(len(c.buf)) {
			c.offset = off + uintptr(n)
			return c.buf[off:c.offset:c.offset], nil
		}
		if a.current == len(a.chunks)-1 {
			break
		}
		a.current++
	}
	if err := a.grow(n); err != nil {
		return nil, err
	}
	c := &a.chunks[a.current]
	c.offset = uintptr(n)
	return c.buf[:n:n], nil
}

// grow appends a new chunk of at least n bytes and makes it current.
func (a *Arena) grow(n int) error {
	size := max(a.chunkSize, n)
	buf, err := a.parent.Allocate(size)
	if err != nil {
		return errors.Wrapf(err, "arena: grow by %d bytes", size)
	}
	a.chunks = append(a.chunks, chunk{buf: buf})
	a.current = len(a.chunks) - 1
	logger.L().Debug("arena: new chunk", "size", size, "chunks", len(a.chunks), "parent", a.parent.Name())
	return nil
}

// panicIfReleased panics if the arena has been released.
func (a *Arena) panicIfReleased() {
	if a.chunks == nil {
		panic("memkit: arena used after Release()")
	}
}

// lastBlock reports whether b is the most recent block carved from c and
// returns its start offset.
func (c *chunk) lastBlock(b []byte) (uintptr, bool) {
	if len(b) == 0 || len(c.buf) == 0 {
		return 0, false
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(c.buf)))
	p := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	if p < base || p-base+uintptr(len(b)) != c.offset {
		return 0, false
	}
	return p - base, true
}

// alignPtr aligns the offset up to pointer size alignment.
func alignPtr(off uintptr) uintptr {
	const align = unsafe.Sizeof(uintptr(0))
	return alloc.AlignUp(off, align)
}

var _ alloc.Allocator = (*Arena)(nil)
