// Package alloc defines the allocator abstraction every memkit container
// requests storage through, plus the allocators and adapters built on it.
//
// # Allocator Contract
//
// An Allocator hands out byte slices:
//
//   - Allocate(size) returns a zeroed block of exactly size bytes.
//   - Reallocate(b, size) grows b, possibly relocating it. Only the new tail
//     [len(b), size) is guaranteed zero. On failure b is left untouched.
//   - Free(b) releases a block exactly as it was returned.
//
// Containers rely on the zeroed-tail guarantee instead of clearing memory
// after growth.
//
// # Implementations
//
//   - Heap: Go heap with an optional byte limit
//   - PageHeap: anonymous mmap pages outside the Go heap (unix)
//   - Counting: accounting wrapper that rejects unknown or mismatched frees
//   - Aligned: adapter returning blocks aligned to a power of two
//
// # Aligned Blocks
//
// AllocateAligned over-allocates size+alignment+HeaderSize bytes and stores,
// in the 8-byte header just before the aligned data, the distance back to
// the start of the underlying block. ReallocateAligned and FreeAligned read
// the header to recover that block, so they must be given the same
// alignment the block was allocated with.
//
// # Thread Safety
//
// Heap, PageHeap and Counting are safe for concurrent use. Aligned is as safe
// as its parent.
package alloc
