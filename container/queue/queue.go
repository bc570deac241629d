// Package queue implements a FIFO ring buffer whose backing memory comes
// from an alloc.Allocator.
package queue

import (
	"github.com/cockroachdb/errors"
	"github.com/pavanmanishd/memkit/alloc"
	"github.com/pavanmanishd/memkit/internal/layout"
	"github.com/pavanmanishd/memkit/internal/logger"
)

var (
	// ErrFull is returned by TryEnqueue when every slot is occupied. The
	// queue is left unchanged.
	ErrFull = errors.New("queue: full")
	// ErrInvalidCapacity is returned for a capacity < 1.
	ErrInvalidCapacity = errors.New("queue: capacity must be at least 1")
	// ErrInvalidStride is returned for a stride <= 0.
	ErrInvalidStride = errors.New("queue: invalid stride")
	// ErrStrideMismatch is returned for an element whose size is not the stride.
	ErrStrideMismatch = errors.New("queue: element size does not match stride")
	// ErrPointerElem is returned by New for element types holding Go pointers.
	ErrPointerElem = errors.New("queue: element type contains pointers")
)

// Raw is a type-erased ring of cap slots of stride bytes. head and tail
// only ever increase; a slot index is the counter modulo cap.
type Raw struct {
	stride int
	cap    uint64
	head   uint64
	tail   uint64
	buf    []byte
}

// FromAllocator creates a queue with capacity slots of stride bytes.
func FromAllocator(a alloc.Allocator, stride, capacity int) (Raw, error) {
	if stride <= 0 {
		return Raw{}, errors.Wrapf(ErrInvalidStride, "stride %d", stride)
	}
	if capacity < 1 {
		return Raw{}, errors.Wrapf(ErrInvalidCapacity, "capacity %d", capacity)
	}
	buf, err := a.Allocate(stride * capacity)
	if err != nil {
		return Raw{}, errors.Wrapf(err, "queue: allocate %d x %d bytes", capacity, stride)
	}
	return Raw{stride: stride, cap: uint64(capacity), buf: buf}, nil
}

// Stride returns the element size in bytes.
func (q *Raw) Stride() int { return q.stride }

// Cap returns the number of slots.
func (q *Raw) Cap() int { return int(q.cap) }

// Len returns the number of queued elements.
func (q *Raw) Len() int { return int(q.tail - q.head) }

// Empty reports whether the queue holds no elements.
func (q *Raw) Empty() bool { return q.head == q.tail }

// Full reports whether every slot is occupied.
func (q *Raw) Full() bool { return q.tail-q.head == q.cap }

func (q *Raw) slot(n uint64) []byte {
	i := int(n % q.cap)
	return q.buf[i*q.stride : (i+1)*q.stride : (i+1)*q.stride]
}

// TryEnqueue copies elem into the tail slot. It fails with ErrFull without
// touching the queue when no slot is free.
func (q *Raw) TryEnqueue(elem []byte) error {
	if len(elem) != q.stride {
		return errors.Wrapf(ErrStrideMismatch, "%d bytes for stride %d", len(elem), q.stride)
	}
	if q.Full() {
		return errors.Wrapf(ErrFull, "%d slots", q.cap)
	}
	copy(q.slot(q.tail), elem)
	q.tail++
	return nil
}

// Enqueue is TryEnqueue that doubles the capacity once when the queue is full.
func (q *Raw) Enqueue(a alloc.Allocator, elem []byte) error {
	err := q.TryEnqueue(elem)
	if !errors.Is(err, ErrFull) {
		return err
	}
	if err := q.Grow(a, q.Cap()); err != nil {
		return err
	}
	return q.TryEnqueue(elem)
}

// Dequeue removes the head element, copying it into dst when dst is not
// nil, and zeroes its slot. It reports false when the queue is empty.
func (q *Raw) Dequeue(dst []byte) bool {
	if q.Empty() {
		return false
	}
	s := q.slot(q.head)
	copy(dst, s)
	clear(s)
	q.head++
	return true
}

// Peek returns the bytes of the head element without removing it. The
// slice aliases the queue.
func (q *Raw) Peek() ([]byte, bool) {
	if q.Empty() {
		return nil, false
	}
	return q.slot(q.head), true
}

// Clear drops every element and zeroes the buffer.
func (q *Raw) Clear() {
	clear(q.buf)
	q.head, q.tail = 0, 0
}

// Free returns the backing memory to a and zeroes the descriptor.
func (q *Raw) Free(a alloc.Allocator) {
	if q.buf != nil {
		a.Free(q.buf)
	}
	*q = Raw{}
}

// Grow adds amount slots. The elements move in FIFO order into a freshly
// allocated queue, which then replaces q. On failure q is unchanged.
func (q *Raw) Grow(a alloc.Allocator, amount int) error {
	if amount <= 0 {
		return nil
	}
	next, err := FromAllocator(a, q.stride, q.Cap()+amount)
	if err != nil {
		return errors.Wrapf(err, "queue: grow %d -> %d slots", q.cap, q.Cap()+amount)
	}
	logger.L().Debug("queue: grow", "stride", q.stride, "from", q.cap, "to", next.cap, "len", q.Len(), "allocator", a.Name())
	for n := q.head; n != q.tail; n++ {
		copy(next.slot(next.tail), q.slot(n))
		next.tail++
	}
	a.Free(q.buf)
	*q = next
	return nil
}

// Queue is a FIFO queue of T stored in memory from an alloc.Allocator.
// T must not contain Go pointers.
type Queue[T any] struct {
	raw   Raw
	alloc alloc.Allocator
}

// New creates a Queue with room for capacity elements. A nil allocator
// selects alloc.DefaultAllocator.
func New[T any](a alloc.Allocator, capacity int) (*Queue[T], error) {
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
	return &Queue[T]{raw: raw, alloc: a}, nil
}

// Raw exposes the type-erased engine.
func (q *Queue[T]) Raw() *Raw { return &q.raw }

// Len returns the number of queued elements.
func (q *Queue[T]) Len() int { return q.raw.Len() }

// Cap returns the number of slots.
func (q *Queue[T]) Cap() int { return q.raw.Cap() }

// Empty reports whether the queue holds no elements.
func (q *Queue[T]) Empty() bool { return q.raw.Empty() }

// Full reports whether every slot is occupied.
func (q *Queue[T]) Full() bool { return q.raw.Full() }

// Enqueue appends v, growing the queue if it is full.
func (q *Queue[T]) Enqueue(v T) error { return q.raw.Enqueue(q.alloc, layout.Bytes(&v)) }

// TryEnqueue appends v without growing.
func (q *Queue[T]) TryEnqueue(v T) error { return q.raw.TryEnqueue(layout.Bytes(&v)) }

// Dequeue removes and returns the oldest element.
func (q *Queue[T]) Dequeue() (T, bool) {
	var v T
	ok := q.raw.Dequeue(layout.Bytes(&v))
	return v, ok
}

// Peek returns the oldest element without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	b, ok := q.raw.Peek()
	if !ok {
		var zero T
		return zero, false
	}
	return layout.Load[T](b), true
}

// Grow adds room for n more elements.
func (q *Queue[T]) Grow(n int) error { return q.raw.Grow(q.alloc, n) }

// Clear drops every element but keeps the capacity.
func (q *Queue[T]) Clear() { q.raw.Clear() }

// Free returns the backing memory. The queue must not be used again.
func (q *Queue[T]) Free() { q.raw.Free(q.alloc) }
