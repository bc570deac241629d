package array

import (
	"iter"

	"github.com/cockroachdb/errors"
	"github.com/pavanmanishd/memkit/alloc"
	"github.com/pavanmanishd/memkit/internal/layout"
)

// Array is a growable array of T stored in memory from an alloc.Allocator.
// T must not contain Go pointers.
type Array[T any] struct {
	raw   Raw
	alloc alloc.Allocator
}

// New creates an Array with room for capacity elements. A nil allocator
// selects alloc.DefaultAllocator.
func New[T any](a alloc.Allocator, capacity int) (*Array[T], error) {
	if !layout.PointerFree[T]() {
		return nil, errors.Wrapf(ErrPointerElem, "%T", *new(T))
	}
	if a == nil {
		a = alloc.DefaultAllocator
	}
	raw, err := FromAllocator(a, layout.Stride[T](), capacity)
	if err != nil {
		return nil, err
	}
	return &Array[T]{raw: raw, alloc: a}, nil
}

// Raw exposes the type-erased engine.
func (arr *Array[T]) Raw() *Raw { return &arr.raw }

// Len returns the number of elements.
func (arr *Array[T]) Len() int { return arr.raw.Len() }

// Cap returns the number of elements the array holds without growing.
func (arr *Array[T]) Cap() int { return arr.raw.Cap() }

// Push appends v, growing the array if needed.
func (arr *Array[T]) Push(v T) error { return arr.raw.Push(arr.alloc, layout.Bytes(&v)) }

// TryPush appends v without growing.
func (arr *Array[T]) TryPush(v T) error { return arr.raw.TryPush(layout.Bytes(&v)) }

// Emplace inserts v at index at, growing the array if needed.
func (arr *Array[T]) Emplace(at int, v T) error {
	return arr.raw.Emplace(arr.alloc, at, layout.Bytes(&v))
}

// TryEmplace inserts v at index at without growing.
func (arr *Array[T]) TryEmplace(at int, v T) error {
	return arr.raw.TryEmplace(at, layout.Bytes(&v))
}

// Insert inserts vs at index at, growing the array if needed.
func (arr *Array[T]) Insert(at int, vs ...T) error {
	return arr.raw.Insert(arr.alloc, at, layout.SliceBytes(vs))
}

// TryInsert inserts vs at index at without growing.
func (arr *Array[T]) TryInsert(at int, vs ...T) error {
	return arr.raw.TryInsert(at, layout.SliceBytes(vs))
}

// Remove deletes the element at index at, shifting later elements down.
func (arr *Array[T]) Remove(at int) error { return arr.raw.Remove(at) }

// RemoveRange deletes n elements starting at index at.
func (arr *Array[T]) RemoveRange(at, n int) error { return arr.raw.RemoveRange(at, n) }

// Pop removes and returns the last element.
func (arr *Array[T]) Pop() (T, bool) {
	var v T
	ok := arr.raw.Pop(layout.Bytes(&v))
	return v, ok
}

// At returns element i. It panics if i is out of range.
func (arr *Array[T]) At(i int) T { return layout.Load[T](arr.raw.At(i)) }

// Set overwrites element i. It panics if i is out of range.
func (arr *Array[T]) Set(i int, v T) { layout.Store(arr.raw.At(i), v) }

// Grow adds room for n more elements.
func (arr *Array[T]) Grow(n int) error { return arr.raw.Grow(arr.alloc, n) }

// Clone copies the array into a new allocation from the same allocator.
func (arr *Array[T]) Clone() (*Array[T], error) {
	raw, err := arr.raw.Clone(arr.alloc)
	if err != nil {
		return nil, err
	}
	return &Array[T]{raw: raw, alloc: arr.alloc}, nil
}

// Clear drops every element but keeps the capacity.
func (arr *Array[T]) Clear() { arr.raw.Clear() }

// Free returns the backing memory. The array is empty afterwards and must
// not be used again.
func (arr *Array[T]) Free() { arr.raw.Free(arr.alloc) }

// All iterates over the elements in order.
func (arr *Array[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, b := range arr.raw.All() {
			if !yield(i, layout.Load[T](b)) {
				return
			}
		}
	}
}

// AppendTo appends the elements to dst and returns the extended slice.
func (arr *Array[T]) AppendTo(dst []T) []T {
	for _, v := range arr.All() {
		dst = append(dst, v)
	}
	return dst
}
