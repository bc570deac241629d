// Package hashmap implements a sorted map from 64-bit keys to fixed-size
// values, stored in one allocation from an alloc.Allocator.
//
// The allocation holds cap value slots followed by cap key slots. Entries
// are kept in ascending key order in both regions, so lookups are binary
// searches and inserting keys in ascending order is an append.
package hashmap

import (
	"encoding/binary"
	"iter"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/pavanmanishd/memkit/alloc"
	"github.com/pavanmanishd/memkit/internal/logger"
)

const keySize = 8

var (
	// ErrCapacityExceeded is returned by TryInsert when the map is full. The
	// map is left unchanged.
	ErrCapacityExceeded = errors.New("hashmap: capacity exceeded")
	// ErrDuplicateKey is returned when inserting a key that is present.
	ErrDuplicateKey = errors.New("hashmap: duplicate key")
	// ErrInvalidStride is returned for a stride <= 0.
	ErrInvalidStride = errors.New("hashmap: invalid stride")
	// ErrInvalidCapacity is returned for a negative capacity.
	ErrInvalidCapacity = errors.New("hashmap: invalid capacity")
	// ErrStrideMismatch is returned for a value whose size is not the stride.
	ErrStrideMismatch = errors.New("hashmap: value size does not match stride")
	// ErrPointerElem is returned by New for value types holding Go pointers.
	ErrPointerElem = errors.New("hashmap: value type contains pointers")
)

// Raw is the type-erased map engine. largestKey caches the last key, or 0
// when the map is empty.
type Raw struct {
	stride     int
	len        int
	cap        int
	largestKey uint64
	buf        []byte
}

// FromAllocator creates a map of stride-byte values with room for capacity
// entries. A zero capacity defers the first allocation to the first grow.
func FromAllocator(a alloc.Allocator, stride, capacity int) (Raw, error) {
	if stride <= 0 {
		return Raw{}, errors.Wrapf(ErrInvalidStride, "stride %d", stride)
	}
	if capacity < 0 {
		return Raw{}, errors.Wrapf(ErrInvalidCapacity, "capacity %d", capacity)
	}
	m := Raw{stride: stride, cap: capacity}
	if capacity > 0 {
		buf, err := a.Allocate((stride + keySize) * capacity)
		if err != nil {
			return Raw{}, errors.Wrapf(err, "hashmap: allocate %d entries of %d bytes", capacity, stride)
		}
		m.buf = buf
	}
	return m, nil
}

// Stride returns the value size in bytes.
func (m *Raw) Stride() int { return m.stride }

// Len returns the number of entries.
func (m *Raw) Len() int { return m.len }

// Cap returns the number of entries the map holds without growing.
func (m *Raw) Cap() int { return m.cap }

// LargestKey returns the largest key present, or 0 for an empty map.
func (m *Raw) LargestKey() uint64 { return m.largestKey }

func (m *Raw) keyOff() int { return m.stride * m.cap }

func (m *Raw) keyBytes(i int) []byte {
	off := m.keyOff() + i*keySize
	return m.buf[off : off+keySize]
}

func (m *Raw) valueBytes(i int) []byte {
	return m.buf[i*m.stride : (i+1)*m.stride : (i+1)*m.stride]
}

// Key returns the i-th smallest key.
func (m *Raw) Key(i int) uint64 {
	return binary.NativeEndian.Uint64(m.keyBytes(i))
}

// Value returns the value stored with the i-th smallest key. The slice
// aliases the map and is invalidated by the next grow.
func (m *Raw) Value(i int) []byte {
	return m.valueBytes(i)
}

// search returns the position of key, or the position it would be
// inserted at.
func (m *Raw) search(key uint64) (int, bool) {
	i := sort.Search(m.len, func(i int) bool { return m.Key(i) >= key })
	return i, i < m.len && m.Key(i) == key
}

// Index returns the position of key.
func (m *Raw) Index(key uint64) (int, bool) {
	if m.len == 0 || key > m.largestKey {
		return 0, false
	}
	return m.search(key)
}

// IndexRef returns the value stored under key. The slice aliases the map.
func (m *Raw) IndexRef(key uint64) ([]byte, bool) {
	i, ok := m.Index(key)
	if !ok {
		return nil, false
	}
	return m.valueBytes(i), true
}

// TryInsert adds key with value. Keys above LargestKey are appended; others
// are placed by binary search, shifting both regions. It fails with
// ErrCapacityExceeded when the map is full and ErrDuplicateKey when key is
// present, leaving the map unchanged in both cases.
func (m *Raw) TryInsert(key uint64, value []byte) error {
	if len(value) != m.stride {
		return errors.Wrapf(ErrStrideMismatch, "%d bytes for stride %d", len(value), m.stride)
	}
	at := m.len
	if m.len > 0 && key <= m.largestKey {
		i, found := m.search(key)
		if found {
			return errors.Wrapf(ErrDuplicateKey, "key %#x", key)
		}
		at = i
	}
	if m.len == m.cap {
		return errors.Wrapf(ErrCapacityExceeded, "%d entries", m.cap)
	}

	if at < m.len {
		s, ko := m.stride, m.keyOff()
		copy(m.buf[(at+1)*s:(m.len+1)*s], m.buf[at*s:m.len*s])
		copy(m.buf[ko+(at+1)*keySize:ko+(m.len+1)*keySize], m.buf[ko+at*keySize:ko+m.len*keySize])
	}
	copy(m.valueBytes(at), value)
	binary.NativeEndian.PutUint64(m.keyBytes(at), key)
	m.len++
	if at == m.len-1 {
		m.largestKey = key
	}
	return nil
}

// Insert is TryInsert that doubles the capacity and retries once when the
// map is full.
func (m *Raw) Insert(a alloc.Allocator, key uint64, value []byte) error {
	err := m.TryInsert(key, value)
	if !errors.Is(err, ErrCapacityExceeded) {
		return err
	}
	if err := m.Grow(a, max(m.cap, 1)); err != nil {
		return err
	}
	return m.TryInsert(key, value)
}

// Set stores value under key, overwriting an existing entry.
func (m *Raw) Set(a alloc.Allocator, key uint64, value []byte) error {
	if len(value) != m.stride {
		return errors.Wrapf(ErrStrideMismatch, "%d bytes for stride %d", len(value), m.stride)
	}
	if v, ok := m.IndexRef(key); ok {
		copy(v, value)
		return nil
	}
	return m.Insert(a, key, value)
}

// Remove deletes key and reports whether it was present.
func (m *Raw) Remove(key uint64) bool {
	at, ok := m.Index(key)
	if !ok {
		return false
	}
	s, ko := m.stride, m.keyOff()
	copy(m.buf[at*s:], m.buf[(at+1)*s:m.len*s])
	copy(m.buf[ko+at*keySize:], m.buf[ko+(at+1)*keySize:ko+m.len*keySize])
	m.len--
	clear(m.valueBytes(m.len))
	clear(m.keyBytes(m.len))
	if at == m.len {
		m.largestKey = 0
		if m.len > 0 {
			m.largestKey = m.Key(m.len - 1)
		}
	}
	return true
}

// Grow adds room for amount entries. The buffer is reallocated and the key
// region moved to its new offset behind the larger value region. On failure
// the map is unchanged.
func (m *Raw) Grow(a alloc.Allocator, amount int) error {
	if amount <= 0 {
		return nil
	}
	newCap := m.cap + amount
	buf, err := a.Reallocate(m.buf, (m.stride+keySize)*newCap)
	if err != nil {
		return errors.Wrapf(err, "hashmap: grow %d -> %d entries", m.cap, newCap)
	}
	oldOff, newOff := m.stride*m.cap, m.stride*newCap
	copy(buf[newOff:newOff+m.len*keySize], buf[oldOff:oldOff+m.len*keySize])
	clear(buf[oldOff:newOff])
	logger.L().Debug("hashmap: grow", "stride", m.stride, "from", m.cap, "to", newCap, "len", m.len, "allocator", a.Name())
	m.buf = buf
	m.cap = newCap
	return nil
}

// Clear removes every entry. Capacity is kept.
func (m *Raw) Clear() {
	clear(m.buf)
	m.len = 0
	m.largestKey = 0
}

// Free returns the backing memory to a and zeroes the descriptor.
func (m *Raw) Free(a alloc.Allocator) {
	if m.buf != nil {
		a.Free(m.buf)
	}
	*m = Raw{}
}

// Keys iterates over the keys in ascending order.
func (m *Raw) Keys() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for i := range m.len {
			if !yield(m.Key(i)) {
				return
			}
		}
	}
}

// All iterates over the entries in ascending key order.
func (m *Raw) All() iter.Seq2[uint64, []byte] {
	return func(yield func(uint64, []byte) bool) {
		for i := range m.len {
			if !yield(m.Key(i), m.valueBytes(i)) {
				return
			}
		}
	}
}
