// Package layout converts between typed values and the raw element bytes
// stored by the type-erased containers.
package layout

import (
	"reflect"
	"unsafe"
)

// Stride returns the in-memory size of one T, trailing padding included,
// which is also the distance between consecutive elements of a []T.
func Stride[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// PointerFree reports whether T holds no Go pointers. Values stored in
// allocator memory are invisible to the garbage collector, so only
// pointer-free types may live there.
func PointerFree[T any]() bool {
	return pointerFree(reflect.TypeFor[T]())
}

func pointerFree(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return t.Len() == 0 || pointerFree(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if !pointerFree(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Bytes views the memory of *v as a byte slice.
func Bytes[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v))
}

// SliceBytes views the backing memory of s as a byte slice.
func SliceBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*Stride[T]())
}

// Load copies one element out of b. Copying keeps reads safe when b is not
// aligned for T.
func Load[T any](b []byte) T {
	var v T
	copy(Bytes(&v), b)
	return v
}

// Store copies v into b.
func Store[T any](b []byte, v T) {
	copy(b, Bytes(&v))
}
