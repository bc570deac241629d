// Package memkit provides region-style allocators for Go and the containers
// built on top of them.
//
// # Overview
//
// Every allocator in memkit implements alloc.Allocator, a four-method
// interface (Name, Allocate, Reallocate, Free) over byte blocks. The root
// package provides two region allocators:
//
//   - Stack: a fixed buffer handed out in LIFO order, with plain and
//     lock-free (compare-and-swap) operation families
//   - Arena: a growable chunked bump allocator drawing chunks from a parent
//     allocator, with bulk Reset and Release
//
// The container packages (container/array, container/queue,
// container/hashmap) take any alloc.Allocator, so a container can live on
// the heap, on mapped pages, in an arena or on a stack.
//
// # Basic Usage
//
//	a := memkit.NewArena(0) // Use default chunk size
//	defer a.Release()       // Return chunks to the parent allocator
//
//	buf, err := a.Allocate(1024) // zeroed
//	ptr := memkit.Alloc[Point](a)
//	pts := memkit.AllocSlice[Point](a, 100)
//
//	a.Reset() // Reuse chunks
//
//	s := memkit.NewStack(make([]byte, 4096))
//	hdr, err := s.PushAligned(64, 16)
//	s.PopAligned(64, 16)
//
// # Thread Safety
//
// Arena and the plain Stack operations are not goroutine-safe. SafeArena
// wraps an Arena in a mutex. Stack.AtomicPush, Stack.AtomicPop and the
// alloc.Allocator returned by Stack.Atomic are lock-free; a push that
// succeeds never overlaps another and never overruns the buffer.
//
// # Memory Layout
//
// Arena blocks are pointer-aligned. Aligned stack blocks reserve
// size+alignment+8 bytes and keep the distance back to the raw block in the
// 8 bytes before the returned slice; see package alloc.
//
// # Important Notes
//
//   - Memory handed out by Stack and Arena is only valid until it is popped,
//     Reset or Released
//   - Arena memory is not scanned by the garbage collector, so Alloc and
//     AllocSlice only accept types without Go pointers
//   - Allocate, Push and AtomicPush return zeroed memory; Arena.AllocBytes
//     may return stale bytes after a Reset
//   - SetLogger enables debug logging of chunk and container growth
package memkit
