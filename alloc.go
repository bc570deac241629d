package memkit

import (
	"unsafe"

	"github.com/pavanmanishd/memkit/internal/layout"
)

func mustPointerFree[T any]() {
	if !layout.PointerFree[T]() {
		panic("memkit: arena values must not contain Go pointers")
	}
}

// Alloc returns a pointer to a zeroed T stored inside the arena. T must not
// contain Go pointers: arena memory is not scanned by the garbage collector.
// The pointer is valid until the arena is Reset or Released.
func Alloc[T any](a *Arena) *T {
	mustPointerFree[T]()
	size := layout.Stride[T]()
	if size == 0 {
		return new(T)
	}
	b, err := a.Allocate(size)
	if err != nil {
		panic(err)
	}
	return (*T)(unsafe.Pointer(unsafe.SliceData(b)))
}

// AllocSlice allocates a zeroed slice of n elements of type T inside the
// arena. Returns nil if n <= 0.
func AllocSlice[T any](a *Arena, n int) []T {
	mustPointerFree[T]()
	size := layout.Stride[T]()
	if n <= 0 || size == 0 {
		return nil
	}
	b, err := a.Allocate(size * n)
	if err != nil {
		panic(err)
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n)
}
