package array

import "github.com/cockroachdb/errors"

var (
	// ErrCapacityExceeded is returned by the Try operations when the array
	// is full. The array is left unchanged.
	ErrCapacityExceeded = errors.New("array: capacity exceeded")
	// ErrOutOfRange is returned for an index outside the array.
	ErrOutOfRange = errors.New("array: index out of range")
	// ErrStrideMismatch is returned when element bytes are not a whole
	// number of elements.
	ErrStrideMismatch = errors.New("array: element size does not match stride")
	// ErrInvalidStride is returned for a stride <= 0.
	ErrInvalidStride = errors.New("array: invalid stride")
	// ErrPointerElem is returned by New for element types holding Go pointers.
	ErrPointerElem = errors.New("array: element type contains pointers")
)
