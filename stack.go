package memkit

import (
	"sync/atomic"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/pavanmanishd/memkit/alloc"
)

// Stack is a bump allocator over a caller-owned buffer. It owns no memory:
// Push hands out consecutive ranges of the buffer and Pop gives back the most
// recent ones in LIFO order.
//
// Two operation families share the cursor. Push/Pop and the alloc.Allocator
// methods are plain and must not run concurrently. AtomicPush/AtomicPop and
// the AtomicStack view are lock-free and may be called from many goroutines.
// Mixing the families concurrently is a data race.
type Stack struct {
	buf     []byte
	current uintptr
}

// NewStack returns a Stack allocating from buf.
func NewStack(buf []byte) *Stack {
	return &Stack{buf: buf}
}

// Size returns the length of the backing buffer.
func (s *Stack) Size() int { return len(s.buf) }

// Current returns the cursor: the number of bytes pushed.
func (s *Stack) Current() int { return int(atomic.LoadUintptr(&s.current)) }

// Available returns the number of bytes that can still be pushed.
func (s *Stack) Available() int { return len(s.buf) - s.Current() }

// Reset pops everything.
func (s *Stack) Reset() { atomic.StoreUintptr(&s.current, 0) }

func (s *Stack) outOfSpace(size int, current uintptr) error {
	return errors.Wrapf(alloc.ErrOutOfMemory, "stack: push %d bytes at %d/%d", size, current, len(s.buf))
}

// Push reserves size zeroed bytes. It fails without moving the cursor when
// the buffer cannot hold them.
func (s *Stack) Push(size int) ([]byte, error) {
	if size <= 0 {
		return nil, errors.Wrapf(alloc.ErrInvalidSize, "stack: push %d bytes", size)
	}
	start := s.current
	if uintptr(size) > uintptr(len(s.buf))-start {
		return nil, s.outOfSpace(size, start)
	}
	s.current = start + uintptr(size)
	return s.take(start, s.current), nil
}

// Pop releases the last size bytes. Popping more than was pushed is a
// no-op and reports false.
func (s *Stack) Pop(size int) bool {
	if size <= 0 || uintptr(size) > s.current {
		return false
	}
	s.current -= uintptr(size)
	return true
}

// PushAligned reserves size zeroed bytes aligned to alignment. It consumes
// alloc.AlignedSize(size, alignment) bytes of the stack.
func (s *Stack) PushAligned(size, alignment int) ([]byte, error) {
	if err := checkAligned(size, alignment); err != nil {
		return nil, err
	}
	raw, err := s.Push(alloc.AlignedSize(size, alignment))
	if err != nil {
		return nil, err
	}
	return alloc.Place(raw, size, alignment), nil
}

// PopAligned releases a block pushed with PushAligned(size, alignment).
func (s *Stack) PopAligned(size, alignment int) bool {
	return s.Pop(alloc.AlignedSize(size, alignment))
}

// AtomicPush is the lock-free Push. The bounds check and the cursor advance
// happen in a single compare-and-swap, so a reservation that succeeds never
// overruns the buffer.
func (s *Stack) AtomicPush(size int) ([]byte, error) {
	if size <= 0 {
		return nil, errors.Wrapf(alloc.ErrInvalidSize, "stack: push %d bytes", size)
	}
	for {
		start := atomic.LoadUintptr(&s.current)
		if uintptr(size) > uintptr(len(s.buf))-start {
			return nil, s.outOfSpace(size, start)
		}
		end := start + uintptr(size)
		if atomic.CompareAndSwapUintptr(&s.current, start, end) {
			return s.take(start, end), nil
		}
	}
}

// AtomicPop is the lock-free Pop.
func (s *Stack) AtomicPop(size int) bool {
	if size <= 0 {
		return false
	}
	for {
		cur := atomic.LoadUintptr(&s.current)
		if uintptr(size) > cur {
			return false
		}
		if atomic.CompareAndSwapUintptr(&s.current, cur, cur-uintptr(size)) {
			return true
		}
	}
}

// AtomicPushAligned is the lock-free PushAligned.
func (s *Stack) AtomicPushAligned(size, alignment int) ([]byte, error) {
	if err := checkAligned(size, alignment); err != nil {
		return nil, err
	}
	raw, err := s.AtomicPush(alloc.AlignedSize(size, alignment))
	if err != nil {
		return nil, err
	}
	return alloc.Place(raw, size, alignment), nil
}

// AtomicPopAligned is the lock-free PopAligned.
func (s *Stack) AtomicPopAligned(size, alignment int) bool {
	return s.AtomicPop(alloc.AlignedSize(size, alignment))
}

func (s *Stack) take(start, end uintptr) []byte {
	b := s.buf[start:end:end]
	clear(b)
	return b
}

// offsetOf returns the position of b inside the stack buffer.
func (s *Stack) offsetOf(b []byte) (uintptr, bool) {
	if len(b) == 0 || len(s.buf) == 0 {
		return 0, false
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(s.buf)))
	p := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	if p < base || p-base+uintptr(len(b)) > uintptr(len(s.buf)) {
		return 0, false
	}
	return p - base, true
}

func checkAligned(size, alignment int) error {
	if !alloc.IsPowerOfTwo(alignment) {
		return errors.Wrapf(alloc.ErrInvalidAlignment, "alignment %d", alignment)
	}
	if size <= 0 {
		return errors.Wrapf(alloc.ErrInvalidSize, "aligned block of %d bytes", size)
	}
	return nil
}

// Name implements alloc.Allocator.
func (s *Stack) Name() string { return "stack" }

// Allocate implements alloc.Allocator with Push.
func (s *Stack) Allocate(size int) ([]byte, error) { return s.Push(size) }

// Reallocate implements alloc.Allocator. The most recent block grows in
// place; any other block is copied to a fresh push and its old bytes stay
// reserved until popped.
func (s *Stack) Reallocate(b []byte, size int) ([]byte, error) {
	if len(b) == 0 {
		return s.Push(size)
	}
	if size < len(b) {
		return b, errors.Wrapf(alloc.ErrShrink, "stack: %d -> %d bytes", len(b), size)
	}
	if size == len(b) {
		return b, nil
	}
	if off, ok := s.offsetOf(b); ok && off+uintptr(len(b)) == s.current {
		if _, err := s.Push(size - len(b)); err != nil {
			return b, err
		}
		return s.buf[off : off+uintptr(size) : off+uintptr(size)], nil
	}
	nb, err := s.Push(size)
	if err != nil {
		return b, err
	}
	copy(nb, b)
	return nb, nil
}

// Free implements alloc.Allocator. Only the most recent block is given
// back; freeing any other block is a no-op.
func (s *Stack) Free(b []byte) {
	if off, ok := s.offsetOf(b); ok && off+uintptr(len(b)) == s.current {
		s.current = off
	}
}

// Atomic returns a view of s that implements alloc.Allocator with the
// lock-free operation family.
func (s *Stack) Atomic() *AtomicStack {
	return &AtomicStack{s: s}
}

// AtomicStack is the lock-free alloc.Allocator view of a Stack.
type AtomicStack struct {
	s *Stack
}

// Name implements alloc.Allocator.
func (a *AtomicStack) Name() string { return "stack(atomic)" }

// Allocate implements alloc.Allocator with AtomicPush.
func (a *AtomicStack) Allocate(size int) ([]byte, error) { return a.s.AtomicPush(size) }

// Reallocate implements alloc.Allocator. The block grows in place when it
// is still the most recent one at the moment of the compare-and-swap.
func (a *AtomicStack) Reallocate(b []byte, size int) ([]byte, error) {
	if len(b) == 0 {
		return a.s.AtomicPush(size)
	}
	if size < len(b) {
		return b, errors.Wrapf(alloc.ErrShrink, "stack: %d -> %d bytes", len(b), size)
	}
	if size == len(b) {
		return b, nil
	}
	if off, ok := a.s.offsetOf(b); ok {
		end := off + uintptr(len(b))
		newEnd := off + uintptr(size)
		if newEnd <= uintptr(len(a.s.buf)) && atomic.CompareAndSwapUintptr(&a.s.current, end, newEnd) {
			nb := a.s.buf[off:newEnd:newEnd]
			clear(nb[len(b):])
			return nb, nil
		}
	}
	nb, err := a.s.AtomicPush(size)
	if err != nil {
		return b, err
	}
	copy(nb, b)
	return nb, nil
}

// Free implements alloc.Allocator. Only the most recent block is given back.
func (a *AtomicStack) Free(b []byte) {
	if off, ok := a.s.offsetOf(b); ok {
		atomic.CompareAndSwapUintptr(&a.s.current, off+uintptr(len(b)), off)
	}
}

var (
	_ alloc.Allocator = (*Stack)(nil)
	_ alloc.Allocator = (*AtomicStack)(nil)
)
