// Package array implements a contiguous growable array whose backing memory
// comes from an alloc.Allocator.
//
// Raw is the type-erased engine: it stores elements as stride-sized byte
// records and takes the allocator on every call that may allocate. Array is
// the typed wrapper most code should use.
package array

import (
	"iter"

	"github.com/cockroachdb/errors"
	"github.com/pavanmanishd/memkit/alloc"
	"github.com/pavanmanishd/memkit/internal/logger"
)

// Raw is a type-erased array of stride-sized elements. The zero value is
// not usable; create one with FromAllocator. A Raw has a single owner and
// must not be copied while in use.
type Raw struct {
	stride int
	len    int
	cap    int
	buf    []byte
}

// FromAllocator creates an array of elements of stride bytes with room for
// capacity elements. A zero capacity defers the first allocation to the
// first grow.
func FromAllocator(a alloc.Allocator, stride, capacity int) (Raw, error) {
	if stride <= 0 {
		return Raw{}, errors.Wrapf(ErrInvalidStride, "stride %d", stride)
	}
	if capacity < 0 {
		return Raw{}, errors.Wrapf(ErrOutOfRange, "capacity %d", capacity)
	}
	r := Raw{stride: stride, cap: capacity}
	if capacity > 0 {
		buf, err := a.Allocate(stride * capacity)
		if err != nil {
			return Raw{}, errors.Wrapf(err, "array: allocate %d x %d bytes", capacity, stride)
		}
		r.buf = buf
	}
	return r, nil
}

// Stride returns the element size in bytes.
func (r *Raw) Stride() int { return r.stride }

// Len returns the number of elements.
func (r *Raw) Len() int { return r.len }

// Cap returns the number of elements the array can hold without growing.
func (r *Raw) Cap() int { return r.cap }

// Free returns the backing memory to a and zeroes the descriptor.
func (r *Raw) Free(a alloc.Allocator) {
	if r.buf != nil {
		a.Free(r.buf)
	}
	*r = Raw{}
}

// Clear removes every element and zeroes their slots. Capacity is kept.
func (r *Raw) Clear() {
	clear(r.buf[:r.len*r.stride])
	r.len = 0
}

// Grow adds room for amount more elements. On failure the array is unchanged.
func (r *Raw) Grow(a alloc.Allocator, amount int) error {
	if amount <= 0 {
		return nil
	}
	newCap := r.cap + amount
	buf, err := a.Reallocate(r.buf, newCap*r.stride)
	if err != nil {
		return errors.Wrapf(err, "array: grow %d -> %d elements", r.cap, newCap)
	}
	logger.L().Debug("array: grow", "stride", r.stride, "from", r.cap, "to", newCap, "allocator", a.Name())
	r.buf = buf
	r.cap = newCap
	return nil
}

// growFor grows the array so it can take n more elements: capacity doubles
// (at least one slot) or, for larger insertions, grows just enough.
func (r *Raw) growFor(a alloc.Allocator, n int) error {
	return r.Grow(a, max(r.cap, 1, r.len+n-r.cap))
}

// slot returns the bytes of element i, which may be at most cap-1.
func (r *Raw) slot(i int) []byte {
	return r.buf[i*r.stride : (i+1)*r.stride : (i+1)*r.stride]
}

func (r *Raw) checkElems(elems []byte) (int, error) {
	if len(elems)%r.stride != 0 {
		return 0, errors.Wrapf(ErrStrideMismatch, "%d bytes for stride %d", len(elems), r.stride)
	}
	return len(elems) / r.stride, nil
}

// TryPush appends one element. It fails with ErrCapacityExceeded when the
// array is full.
func (r *Raw) TryPush(elem []byte) error {
	return r.TryInsert(r.len, elem)
}

// Push appends one element, growing the array if needed.
func (r *Raw) Push(a alloc.Allocator, elem []byte) error {
	return r.Insert(a, r.len, elem)
}

// TryEmplace inserts one element at index at, shifting later elements up.
func (r *Raw) TryEmplace(at int, elem []byte) error {
	if len(elem) != r.stride {
		return errors.Wrapf(ErrStrideMismatch, "%d bytes for stride %d", len(elem), r.stride)
	}
	return r.TryInsert(at, elem)
}

// Emplace inserts one element at index at, growing the array if needed.
func (r *Raw) Emplace(a alloc.Allocator, at int, elem []byte) error {
	if len(elem) != r.stride {
		return errors.Wrapf(ErrStrideMismatch, "%d bytes for stride %d", len(elem), r.stride)
	}
	return r.Insert(a, at, elem)
}

// TryInsert inserts the elements packed in elems at index at, keeping the
// order of the existing elements.
func (r *Raw) TryInsert(at int, elems []byte) error {
	n, err := r.checkElems(elems)
	if err != nil {
		return err
	}
	if at < 0 || at > r.len {
		return errors.Wrapf(ErrOutOfRange, "insert at %d of %d", at, r.len)
	}
	if n == 0 {
		return nil
	}
	if r.len+n > r.cap {
		return errors.Wrapf(ErrCapacityExceeded, "insert %d into %d/%d", n, r.len, r.cap)
	}
	s := r.stride
	copy(r.buf[(at+n)*s:(r.len+n)*s], r.buf[at*s:r.len*s])
	copy(r.buf[at*s:(at+n)*s], elems)
	r.len += n
	return nil
}

// Insert is TryInsert that grows the array and retries once when it is full.
func (r *Raw) Insert(a alloc.Allocator, at int, elems []byte) error {
	err := r.TryInsert(at, elems)
	if !errors.Is(err, ErrCapacityExceeded) {
		return err
	}
	if err := r.growFor(a, len(elems)/r.stride); err != nil {
		return err
	}
	return r.TryInsert(at, elems)
}

// Remove deletes the element at index at, shifting later elements down and
// zeroing the vacated slot.
func (r *Raw) Remove(at int) error {
	if at < 0 || at >= r.len {
		return errors.Wrapf(ErrOutOfRange, "remove %d of %d", at, r.len)
	}
	s := r.stride
	copy(r.buf[at*s:], r.buf[(at+1)*s:r.len*s])
	r.len--
	clear(r.slot(r.len))
	return nil
}

// RemoveRange deletes n elements starting at index at, one at a time.
func (r *Raw) RemoveRange(at, n int) error {
	if at < 0 || n < 0 || at+n > r.len {
		return errors.Wrapf(ErrOutOfRange, "remove [%d, %d) of %d", at, at+n, r.len)
	}
	for range n {
		if err := r.Remove(at); err != nil {
			return err
		}
	}
	return nil
}

// Pop removes the last element, copying it into dst when dst is not nil.
// It reports false when the array is empty.
func (r *Raw) Pop(dst []byte) bool {
	if r.len == 0 {
		return false
	}
	r.len--
	last := r.slot(r.len)
	copy(dst, last)
	clear(last)
	return true
}

// Clone copies the array into a new allocation from a with room for eight
// more elements.
func (r *Raw) Clone(a alloc.Allocator) (Raw, error) {
	c, err := FromAllocator(a, r.stride, r.len+8)
	if err != nil {
		return Raw{}, err
	}
	copy(c.buf, r.Bytes())
	c.len = r.len
	return c, nil
}

// At returns the bytes of element i. The slice aliases the array and is
// invalidated by the next grow. At panics if i is out of range.
func (r *Raw) At(i int) []byte {
	if i < 0 || i >= r.len {
		panic(errors.Wrapf(ErrOutOfRange, "index %d of %d", i, r.len))
	}
	return r.slot(i)
}

// Bytes returns the packed elements.
func (r *Raw) Bytes() []byte {
	return r.buf[:r.len*r.stride]
}

// All iterates over the elements in order.
func (r *Raw) All() iter.Seq2[int, []byte] {
	return func(yield func(int, []byte) bool) {
		for i := range r.len {
			if !yield(i, r.slot(i)) {
				return
			}
		}
	}
}
