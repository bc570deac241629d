package alloc

import (
	"encoding/binary"
	"strconv"
	"unsafe"

	"github.com/cockroachdb/errors"
)

// HeaderSize is the size of the slot preceding an aligned block.
const HeaderSize = 8

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// AlignUp rounds n up to a multiple of alignment, a power of two.
func AlignUp(n, alignment uintptr) uintptr {
	return (n + alignment - 1) &^ (alignment - 1)
}

// AlignedSize returns the number of raw bytes reserved for an aligned block.
func AlignedSize(size, alignment int) int {
	return size + alignment + HeaderSize
}

func checkAligned(size, alignment int) error {
	if !IsPowerOfTwo(alignment) {
		return errors.Wrapf(ErrInvalidAlignment, "alignment %d", alignment)
	}
	if size <= 0 {
		return errors.Wrapf(ErrInvalidSize, "aligned block of %d bytes", size)
	}
	return nil
}

// Place carves an aligned block of size bytes out of raw, which must hold at
// least AlignedSize(size, alignment) bytes, and records the offset of the
// block inside raw in the header slot just before it.
func Place(raw []byte, size, alignment int) []byte {
	base := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	off := int(AlignUp(base+HeaderSize, uintptr(alignment)) - base)
	binary.NativeEndian.PutUint64(raw[off-HeaderSize:off], uint64(off))
	return raw[off : off+size : off+size]
}

// headerOffset reads the offset stored before an aligned block.
func headerOffset(b []byte) int {
	p := unsafe.Add(unsafe.Pointer(unsafe.SliceData(b)), -HeaderSize)
	return int(binary.NativeEndian.Uint64(unsafe.Slice((*byte)(p), HeaderSize)))
}

// rawBlock recovers the underlying block of an aligned block.
func rawBlock(b []byte, alignment int) []byte {
	off := headerOffset(b)
	p := unsafe.Add(unsafe.Pointer(unsafe.SliceData(b)), -off)
	return unsafe.Slice((*byte)(p), AlignedSize(len(b), alignment))
}

// AllocateAligned returns a zeroed block of size bytes whose address is a
// multiple of alignment.
func AllocateAligned(a Allocator, size, alignment int) ([]byte, error) {
	if err := checkAligned(size, alignment); err != nil {
		return nil, err
	}
	raw, err := a.Allocate(AlignedSize(size, alignment))
	if err != nil {
		return nil, err
	}
	return Place(raw, size, alignment), nil
}

// ReallocateAligned grows an aligned block to size bytes, keeping its
// alignment. alignment must be the value b was allocated with.
func ReallocateAligned(a Allocator, b []byte, size, alignment int) ([]byte, error) {
	if len(b) == 0 {
		return AllocateAligned(a, size, alignment)
	}
	if err := checkAligned(size, alignment); err != nil {
		return b, err
	}
	if size < len(b) {
		return b, errors.Wrapf(ErrShrink, "%d -> %d bytes", len(b), size)
	}
	if size == len(b) {
		return b, nil
	}

	oldOff := headerOffset(b)
	oldSize := len(b)
	raw, err := a.Reallocate(rawBlock(b, alignment), AlignedSize(size, alignment))
	if err != nil {
		return b, err
	}

	// The parent may have moved the block to an address with a different
	// distance to the next aligned boundary.
	base := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	off := int(AlignUp(base+HeaderSize, uintptr(alignment)) - base)
	if off != oldOff {
		copy(raw[off:off+oldSize], raw[oldOff:oldOff+oldSize])
	}
	nb := Place(raw, size, alignment)
	clear(nb[oldSize:])
	return nb, nil
}

// FreeAligned releases a block returned by AllocateAligned or
// ReallocateAligned. alignment must be the value b was allocated with.
func FreeAligned(a Allocator, b []byte, alignment int) {
	if len(b) == 0 {
		return
	}
	a.Free(rawBlock(b, alignment))
}

// Aligned adapts an Allocator so that every block it returns is aligned to
// a fixed power of two.
type Aligned struct {
	parent    Allocator
	alignment int
}

// NewAligned wraps parent. A nil parent selects DefaultAllocator.
func NewAligned(parent Allocator, alignment int) (*Aligned, error) {
	if !IsPowerOfTwo(alignment) {
		return nil, errors.Wrapf(ErrInvalidAlignment, "alignment %d", alignment)
	}
	if parent == nil {
		parent = DefaultAllocator
	}
	return &Aligned{parent: parent, alignment: alignment}, nil
}

// Name implements Allocator.
func (a *Aligned) Name() string {
	return "aligned" + strconv.Itoa(a.alignment) + "(" + a.parent.Name() + ")"
}

// Alignment returns the alignment of every block.
func (a *Aligned) Alignment() int { return a.alignment }

// Allocate implements Allocator.
func (a *Aligned) Allocate(size int) ([]byte, error) {
	return AllocateAligned(a.parent, size, a.alignment)
}

// Reallocate implements Allocator.
func (a *Aligned) Reallocate(b []byte, size int) ([]byte, error) {
	return ReallocateAligned(a.parent, b, size, a.alignment)
}

// Free implements Allocator.
func (a *Aligned) Free(b []byte) {
	FreeAligned(a.parent, b, a.alignment)
}

var _ Allocator = (*Aligned)(nil)
