package memkit

import (
	"sync"

	"github.com/pavanmanishd/memkit/alloc"
)

// SafeArena is a mutex-protected Arena for concurrent access. Every
// operation takes the lock, so SafeArena suits moderate contention; hot
// multi-producer paths over a fixed buffer are better served by
// Stack.AtomicPush.
type SafeArena struct {
	mu sync.Mutex
	a  *Arena
}

// NewSafeArena creates a thread-safe arena with the specified chunk size.
// If chunkSize <= 0, DefaultChunkSize is used.
func NewSafeArena(chunkSize int) *SafeArena {
	return &SafeArena{a: NewArena(chunkSize)}
}

// NewSafeArenaWithOptions creates a thread-safe arena from opts.
func NewSafeArenaWithOptions(opts Options) (*SafeArena, error) {
	a, err := NewArenaWithOptions(opts)
	if err != nil {
		return nil, err
	}
	return &SafeArena{a: a}, nil
}

// Name implements alloc.Allocator.
func (s *SafeArena) Name() string { return "safe-" + s.a.Name() }

// Allocate implements alloc.Allocator.
func (s *SafeArena) Allocate(size int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Allocate(size)
}

// Reallocate implements alloc.Allocator.
func (s *SafeArena) Reallocate(b []byte, size int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Reallocate(b, size)
}

// Free implements alloc.Allocator.
func (s *SafeArena) Free(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Free(b)
}

// AllocBytes thread-safely allocates n bytes without clearing them.
func (s *SafeArena) AllocBytes(n int) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.AllocBytes(n)
}

// Reset thread-safely rewinds the arena for reuse.
func (s *SafeArena) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Reset()
}

// Release thread-safely returns all chunks and makes the arena unusable.
func (s *SafeArena) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Release()
}

// EnsureCapacity thread-safely ensures the current chunk has n free bytes.
func (s *SafeArena) EnsureCapacity(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.EnsureCapacity(n)
}

// SizeInUse thread-safely returns the number of bytes allocated.
func (s *SafeArena) SizeInUse() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.SizeInUse()
}

// NumChunks thread-safely returns the number of chunks.
func (s *SafeArena) NumChunks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.NumChunks()
}

// Capacity thread-safely returns the total chunk capacity in bytes.
func (s *SafeArena) Capacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Capacity()
}

// ChunkSize returns the default chunk size.
func (s *SafeArena) ChunkSize() int {
	return s.a.ChunkSize()
}

// Utilization thread-safely returns the ratio of bytes in use to capacity.
func (s *SafeArena) Utilization() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Utilization()
}

// Metrics thread-safely returns a snapshot of arena statistics.
func (s *SafeArena) Metrics() ArenaMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Metrics()
}

// SafeAlloc thread-safely returns a zeroed T stored inside the arena.
func SafeAlloc[T any](s *SafeArena) *T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Alloc[T](s.a)
}

// SafeAllocSlice thread-safely allocates a zeroed slice of n elements.
func SafeAllocSlice[T any](s *SafeArena, n int) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return AllocSlice[T](s.a, n)
}

var _ alloc.Allocator = (*SafeArena)(nil)
