package hashmap

import (
	"iter"

	"github.com/cockroachdb/errors"
	"github.com/pavanmanishd/memkit/alloc"
	"github.com/pavanmanishd/memkit/hash"
	"github.com/pavanmanishd/memkit/internal/layout"
)

// Map is a sorted map from uint64 keys to values of type V. Byte-string
// keys are turned into uint64 keys by the map's hash function; two inputs
// that collide share an entry. V must not contain Go pointers.
type Map[V any] struct {
	raw   Raw
	alloc alloc.Allocator
	hash  hash.Func
}

// New creates a Map with room for capacity entries that hashes byte keys
// with hash.Default. A nil allocator selects alloc.DefaultAllocator.
func New[V any](a alloc.Allocator, capacity int) (*Map[V], error) {
	return NewWithHash[V](a, capacity, hash.Default)
}

// NewWithHash is New with an explicit hash function for byte keys.
func NewWithHash[V any](a alloc.Allocator, capacity int, h hash.Func) (*Map[V], error) {
	if !layout.PointerFree[V]() {
		return nil, errors.Wrapf(ErrPointerElem, "%T", *new(V))
	}
	if a == nil {
		a = alloc.DefaultAllocator
	}
	if h == nil {
		h = hash.Default
	}
	raw, err := FromAllocator(a, layout.Stride[V](), capacity)
	if err != nil {
		return nil, err
	}
	return &Map[V]{raw: raw, alloc: a, hash: h}, nil
}

// Raw exposes the type-erased engine.
func (m *Map[V]) Raw() *Raw { return &m.raw }

// Len returns the number of entries.
func (m *Map[V]) Len() int { return m.raw.Len() }

// Cap returns the number of entries the map holds without growing.
func (m *Map[V]) Cap() int { return m.raw.Cap() }

// LargestKey returns the largest key present, or 0 for an empty map.
func (m *Map[V]) LargestKey() uint64 { return m.raw.LargestKey() }

// Insert adds a new entry, growing the map if needed. It fails with
// ErrDuplicateKey if key is present.
func (m *Map[V]) Insert(key uint64, v V) error {
	return m.raw.Insert(m.alloc, key, layout.Bytes(&v))
}

// TryInsert adds a new entry without growing.
func (m *Map[V]) TryInsert(key uint64, v V) error {
	return m.raw.TryInsert(key, layout.Bytes(&v))
}

// Set stores v under key, replacing any existing value.
func (m *Map[V]) Set(key uint64, v V) error {
	return m.raw.Set(m.alloc, key, layout.Bytes(&v))
}

// Get returns the value stored under key.
func (m *Map[V]) Get(key uint64) (V, bool) {
	b, ok := m.raw.IndexRef(key)
	if !ok {
		var zero V
		return zero, false
	}
	return layout.Load[V](b), true
}

// Contains reports whether key is present.
func (m *Map[V]) Contains(key uint64) bool {
	_, ok := m.raw.Index(key)
	return ok
}

// Remove deletes key and reports whether it was present.
func (m *Map[V]) Remove(key uint64) bool { return m.raw.Remove(key) }

// KeyOf returns the key used for the byte key k.
func (m *Map[V]) KeyOf(k []byte) uint64 { return m.hash(k) }

// InsertBytes is Insert keyed by the hash of k.
func (m *Map[V]) InsertBytes(k []byte, v V) error { return m.Insert(m.hash(k), v) }

// SetBytes is Set keyed by the hash of k.
func (m *Map[V]) SetBytes(k []byte, v V) error { return m.Set(m.hash(k), v) }

// GetBytes is Get keyed by the hash of k.
func (m *Map[V]) GetBytes(k []byte) (V, bool) { return m.Get(m.hash(k)) }

// RemoveBytes is Remove keyed by the hash of k.
func (m *Map[V]) RemoveBytes(k []byte) bool { return m.Remove(m.hash(k)) }

// SetString is Set keyed by the hash of k.
func (m *Map[V]) SetString(k string, v V) error { return m.Set(hash.String(m.hash, k), v) }

// GetString is Get keyed by the hash of k.
func (m *Map[V]) GetString(k string) (V, bool) { return m.Get(hash.String(m.hash, k)) }

// Grow adds room for n more entries.
func (m *Map[V]) Grow(n int) error { return m.raw.Grow(m.alloc, n) }

// Clear drops every entry but keeps the capacity.
func (m *Map[V]) Clear() { m.raw.Clear() }

// Free returns the backing memory. The map must not be used again.
func (m *Map[V]) Free() { m.raw.Free(m.alloc) }

// Keys iterates over the keys in ascending order.
func (m *Map[V]) Keys() iter.Seq[uint64] { return m.raw.Keys() }

// All iterates over the entries in ascending key order.
func (m *Map[V]) All() iter.Seq2[uint64, V] {
	return func(yield func(uint64, V) bool) {
		for k, b := range m.raw.All() {
			if !yield(k, layout.Load[V](b)) {
				return
			}
		}
	}
}
