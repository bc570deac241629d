package hashmap

import (
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/pavanmanishd/memkit"
	"github.com/pavanmanishd/memkit/alloc"
	"github.com/pavanmanishd/memkit/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quote struct {
	Bid, Ask float64
	Size     uint32
}

func TestMapTyped(t *testing.T) {
	m, err := New[quote](nil, 2)
	require.NoError(t, err)
	defer m.Free()

	require.NoError(t, m.Insert(30, quote{Bid: 3}))
	require.NoError(t, m.Insert(10, quote{Bid: 1}))
	require.NoError(t, m.Insert(20, quote{Bid: 2}))
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, uint64(30), m.LargestKey())

	q, ok := m.Get(20)
	require.True(t, ok)
	assert.Equal(t, quote{Bid: 2}, q)
	assert.True(t, m.Contains(10))
	assert.False(t, m.Contains(15))

	require.NoError(t, m.Set(20, quote{Bid: 2, Ask: 2.5}))
	q, _ = m.Get(20)
	assert.Equal(t, 2.5, q.Ask)

	assert.True(t, errors.Is(m.Insert(10, quote{}), ErrDuplicateKey))

	var bids []float64
	for _, q := range m.All() {
		bids = append(bids, q.Bid)
	}
	assert.Equal(t, []float64{1, 2, 3}, bids)

	require.True(t, m.Remove(30))
	assert.Equal(t, uint64(20), m.LargestKey())
	_, ok = m.Get(30)
	assert.False(t, ok)
}

func TestMapByteKeys(t *testing.T) {
	for _, name := range []string{"city64", "murmur64", "elf64", "xxh64"} {
		t.Run(name, func(t *testing.T) {
			h, ok := hash.ByName(name)
			require.True(t, ok)
			m, err := NewWithHash[int32](nil, 0, h)
			require.NoError(t, err)
			defer m.Free()

			for i := range 50 {
				require.NoError(t, m.SetBytes(fmt.Appendf(nil, "pair-%03d", i), int32(i)))
			}
			require.NoError(t, m.SetString("pair-007", -7))

			for i := range 50 {
				want := int32(i)
				if i == 7 {
					want = -7
				}
				v, ok := m.GetString(fmt.Sprintf("pair-%03d", i))
				require.True(t, ok, "pair-%03d", i)
				assert.Equal(t, want, v)
			}
			assert.Equal(t, h([]byte("pair-001")), m.KeyOf([]byte("pair-001")))

			assert.True(t, m.RemoveBytes([]byte("pair-001")))
			_, ok = m.GetBytes([]byte("pair-001"))
			assert.False(t, ok)
			assert.Equal(t, 49, m.Len())
		})
	}
}

func TestMapDefaultHash(t *testing.T) {
	m, err := New[uint8](nil, 1)
	require.NoError(t, err)
	require.NoError(t, m.InsertBytes([]byte("hello"), 1))
	assert.True(t, m.Contains(hash.City64([]byte("hello"))))
}

func TestMapRejectsPointerValues(t *testing.T) {
	_, err := New[map[string]int](nil, 1)
	assert.True(t, errors.Is(err, ErrPointerElem))
}

func TestMapOnStackAllocator(t *testing.T) {
	s := memkit.NewStack(make([]byte, 1024))
	c := alloc.NewCounting(s)

	m, err := New[uint64](c, 1)
	require.NoError(t, err)
	for k := uint64(64); k > 0; k-- {
		require.NoError(t, m.Insert(k, k*k))
	}
	for k := uint64(1); k <= 64; k++ {
		v, ok := m.Get(k)
		require.True(t, ok)
		require.Equal(t, k*k, v)
	}
	assert.Equal(t, 64*16, s.Current())

	m.Free()
	assert.Zero(t, s.Current())
	assert.Zero(t, c.Stats().BadFrees)
}

func BenchmarkMapInsertAscending(b *testing.B) {
	m, err := New[uint64](nil, 1024)
	require.NoError(b, err)
	defer m.Free()

	k := uint64(0)
	for b.Loop() {
		k++
		if err := m.Insert(k, k); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMapGet(b *testing.B) {
	m, err := New[uint64](nil, 1<<16)
	require.NoError(b, err)
	defer m.Free()
	for k := range uint64(1 << 16) {
		require.NoError(b, m.Insert(k*7, k))
	}

	k := uint64(0)
	for b.Loop() {
		m.Get((k % (1 << 16)) * 7)
		k++
	}
}
