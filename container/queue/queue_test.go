package queue

import (
	"encoding/binary"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/pavanmanishd/memkit"
	"github.com/pavanmanishd/memkit/alloc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u16(v uint16) []byte { return binary.LittleEndian.AppendUint16(nil, v) }

func TestFromAllocatorValidation(t *testing.T) {
	_, err := FromAllocator(alloc.NewHeap(), 2, 0)
	assert.True(t, errors.Is(err, ErrInvalidCapacity))

	_, err = FromAllocator(alloc.NewHeap(), 0, 4)
	assert.True(t, errors.Is(err, ErrInvalidStride))

	_, err = FromAllocator(alloc.NewLimitedHeap(4), 2, 4)
	assert.True(t, errors.Is(err, alloc.ErrOutOfMemory))
}

func TestFIFOOrder(t *testing.T) {
	q, err := FromAllocator(alloc.NewHeap(), 2, 4)
	require.NoError(t, err)

	for i := range 4 {
		require.NoError(t, q.TryEnqueue(u16(uint16(i))))
	}
	assert.True(t, q.Full())

	dst := make([]byte, 2)
	for i := range 4 {
		require.True(t, q.Dequeue(dst))
		assert.Equal(t, uint16(i), binary.LittleEndian.Uint16(dst))
	}
	assert.True(t, q.Empty())
	assert.False(t, q.Dequeue(dst))
}

func TestTryEnqueueFullDoesNotMutate(t *testing.T) {
	q, err := FromAllocator(alloc.NewHeap(), 2, 2)
	require.NoError(t, err)
	require.NoError(t, q.TryEnqueue(u16(1)))
	require.NoError(t, q.TryEnqueue(u16(2)))

	tail := q.tail
	before := append([]byte(nil), q.buf...)
	err = q.TryEnqueue(u16(3))
	assert.True(t, errors.Is(err, ErrFull))
	assert.Equal(t, tail, q.tail)
	assert.Equal(t, before, q.buf)

	assert.True(t, errors.Is(q.TryEnqueue([]byte{1}), ErrStrideMismatch))
}

func TestWraparound(t *testing.T) {
	q, err := FromAllocator(alloc.NewHeap(), 2, 3)
	require.NoError(t, err)

	dst := make([]byte, 2)
	next := uint16(0)
	want := uint16(0)
	for round := range 10 {
		for range round%3 + 1 {
			require.NoError(t, q.TryEnqueue(u16(next)))
			next++
		}
		for q.Dequeue(dst) {
			assert.Equal(t, want, binary.LittleEndian.Uint16(dst))
			want++
		}
	}
	assert.Equal(t, next, want)
	assert.Equal(t, make([]byte, 6), q.buf, "vacated slots are zeroed")
}

func TestPeek(t *testing.T) {
	q, err := FromAllocator(alloc.NewHeap(), 2, 2)
	require.NoError(t, err)

	_, ok := q.Peek()
	assert.False(t, ok)

	require.NoError(t, q.TryEnqueue(u16(7)))
	b, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, u16(7), b)
	assert.Equal(t, 1, q.Len())
}

func TestGrowPreservesOrderAcrossWrap(t *testing.T) {
	c := alloc.NewCounting(nil)
	q, err := FromAllocator(c, 2, 4)
	require.NoError(t, err)

	dst := make([]byte, 2)
	for i := range 4 {
		require.NoError(t, q.TryEnqueue(u16(uint16(i))))
	}
	q.Dequeue(dst)
	q.Dequeue(dst)
	require.NoError(t, q.TryEnqueue(u16(4)))
	require.NoError(t, q.TryEnqueue(u16(5))) // wrapped: head=2, tail=6

	require.NoError(t, q.Enqueue(c, u16(6)))
	assert.Equal(t, 8, q.Cap())
	assert.Equal(t, 5, q.Len())

	for want := uint16(2); want <= 6; want++ {
		require.True(t, q.Dequeue(dst))
		assert.Equal(t, want, binary.LittleEndian.Uint16(dst))
	}

	q.Free(c)
	st := c.Stats()
	assert.Zero(t, st.Live)
	assert.Zero(t, st.BadFrees)
}

func TestGrowFailureLeavesQueueIntact(t *testing.T) {
	h := alloc.NewLimitedHeap(10)
	q, err := FromAllocator(h, 2, 4)
	require.NoError(t, err)
	for i := range 4 {
		require.NoError(t, q.TryEnqueue(u16(uint16(i))))
	}

	err = q.Enqueue(h, u16(4))
	assert.True(t, errors.Is(err, alloc.ErrOutOfMemory))
	assert.Equal(t, 4, q.Cap())
	assert.Equal(t, 4, q.Len())
	b, _ := q.Peek()
	assert.Equal(t, u16(0), b)
}

func TestClearAndFree(t *testing.T) {
	h := alloc.NewHeap()
	q, err := FromAllocator(h, 2, 3)
	require.NoError(t, err)
	require.NoError(t, q.TryEnqueue(u16(1)))

	q.Clear()
	assert.True(t, q.Empty())
	assert.Equal(t, 3, q.Cap())

	q.Free(h)
	assert.Equal(t, Raw{}, q)
	assert.Zero(t, h.InUse())
}

type event struct {
	Seq  uint64
	Kind uint8
}

func TestQueueTyped(t *testing.T) {
	q, err := New[event](nil, 1)
	require.NoError(t, err)
	defer q.Free()

	for i := range 10 {
		require.NoError(t, q.Enqueue(event{Seq: uint64(i), Kind: uint8(i % 3)}))
	}
	assert.Equal(t, 16, q.Cap())

	head, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, event{Seq: 0}, head)

	for i := range 10 {
		ev, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, uint64(i), ev.Seq)
	}
	_, ok = q.Dequeue()
	assert.False(t, ok)

	require.NoError(t, q.TryEnqueue(event{Seq: 99}))
	q.Clear()
	assert.True(t, q.Empty())

	_, err = New[[]byte](nil, 1)
	assert.True(t, errors.Is(err, ErrPointerElem))
}

func TestQueueOnArena(t *testing.T) {
	a := memkit.NewArena(1024)
	defer a.Release()

	q, err := New[uint32](a, 2)
	require.NoError(t, err)
	for i := range 64 {
		require.NoError(t, q.Enqueue(uint32(i)))
	}
	v, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, uint32(0), v)
	assert.Equal(t, 63, q.Len())
}

func BenchmarkQueue(b *testing.B) {
	q, err := New[uint64](nil, 1024)
	require.NoError(b, err)
	defer q.Free()

	i := uint64(0)
	for b.Loop() {
		_ = q.TryEnqueue(i)
		q.Dequeue()
		i++
	}
}
