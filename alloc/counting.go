package alloc

import (
	"sync"
	"unsafe"

	"github.com/pavanmanishd/memkit/internal/logger"
)

// CountingStats is a snapshot of the accounting kept by Counting.
type CountingStats struct {
	Allocs    int // Successful Allocate calls
	Reallocs  int // Successful Reallocate calls
	Frees     int // Accepted Free calls
	BadFrees  int // Free calls for unknown blocks or with a wrong size
	Live      int // Blocks currently outstanding
	LiveBytes int // Bytes currently outstanding
	PeakBytes int // Highest LiveBytes observed
}

// Counting wraps an Allocator and tracks every outstanding block by its
// base address. Frees of unknown blocks, double frees and frees with a
// size other than the one handed out are counted and dropped instead of
// being forwarded to the parent.
type Counting struct {
	parent Allocator

	mu    sync.Mutex
	live  map[uintptr]int
	stats CountingStats
}

// NewCounting wraps parent. A nil parent selects DefaultAllocator.
func NewCounting(parent Allocator) *Counting {
	if parent == nil {
		parent = DefaultAllocator
	}
	return &Counting{parent: parent, live: make(map[uintptr]int)}
}

// Name implements Allocator.
func (c *Counting) Name() string { return "counting(" + c.parent.Name() + ")" }

// Stats returns a snapshot of the accounting.
func (c *Counting) Stats() CountingStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Live = len(c.live)
	return s
}

// Allocate implements Allocator.
func (c *Counting) Allocate(size int) ([]byte, error) {
	b, err := c.parent.Allocate(size)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.track(b)
	c.stats.Allocs++
	return b, nil
}

// Reallocate implements Allocator.
func (c *Counting) Reallocate(b []byte, size int) ([]byte, error) {
	nb, err := c.parent.Reallocate(b, size)
	if err != nil {
		return b, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.live[addr(b)]; ok && len(b) > 0 {
		c.untrack(b)
	}
	c.track(nb)
	c.stats.Reallocs++
	return nb, nil
}

// Free implements Allocator.
func (c *Counting) Free(b []byte) {
	c.mu.Lock()
	size, ok := c.live[addr(b)]
	if !ok || size != len(b) {
		c.stats.BadFrees++
		c.mu.Unlock()
		logger.L().Warn("alloc: rejected free", "allocator", c.parent.Name(), "size", len(b), "known", ok, "want", size)
		return
	}
	c.untrack(b)
	c.stats.Frees++
	c.mu.Unlock()

	c.parent.Free(b)
}

func (c *Counting) track(b []byte) {
	c.live[addr(b)] = len(b)
	c.stats.LiveBytes += len(b)
	c.stats.PeakBytes = max(c.stats.PeakBytes, c.stats.LiveBytes)
}

func (c *Counting) untrack(b []byte) {
	delete(c.live, addr(b))
	c.stats.LiveBytes -= len(b)
}

func addr(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

var _ Allocator = (*Counting)(nil)
