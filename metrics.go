package memkit

// SizeInUse returns the total number of bytes currently allocated in the arena.
// This includes internal fragmentation due to alignment.
func (a *Arena) SizeInUse() int {
	sum := 0
	for _, c := range a.chunks {
		sum += int(c.offset)
	}
	return sum
}

// NumChunks returns the number of chunks currently held by the arena.
func (a *Arena) NumChunks() int {
	return len(a.chunks)
}

// Capacity returns the total capacity (in bytes) of all chunks in the arena.
func (a *Arena) Capacity() int {
	sum := 0
	for _, c := range a.chunks {
		sum += len(c.buf)
	}
	return sum
}

// Utilization returns the ratio of bytes in use to total capacity (0.0 to 1.0).
func (a *Arena) Utilization() float64 {
	return ratio(a.SizeInUse(), a.Capacity())
}

// ChunkSize returns the default chunk size used by this arena.
func (a *Arena) ChunkSize() int {
	return a.chunkSize
}

// Metrics returns a snapshot of arena statistics.
func (a *Arena) Metrics() ArenaMetrics {
	return ArenaMetrics{
		SizeInUse:   a.SizeInUse(),
		Capacity:    a.Capacity(),
		NumChunks:   a.NumChunks(),
		ChunkSize:   a.ChunkSize(),
		Utilization: a.Utilization(),
	}
}

// ArenaMetrics contains statistical information about an arena.
type ArenaMetrics struct {
	SizeInUse   int     // Bytes currently allocated
	Capacity    int     // Total capacity in bytes
	NumChunks   int     // Number of chunks
	ChunkSize   int     // Default chunk size
	Utilization float64 // Ratio of used to total capacity (0.0-1.0)
}

// StackMetrics contains statistical information about a stack.
type StackMetrics struct {
	Size        int     // Length of the backing buffer
	InUse       int     // Bytes pushed
	Available   int     // Bytes left
	Utilization float64 // Ratio of InUse to Size (0.0-1.0)
}

// Metrics returns a snapshot of stack statistics. It reads the cursor
// atomically and may be called while atomic pushes are in flight.
func (s *Stack) Metrics() StackMetrics {
	used := s.Current()
	return StackMetrics{
		Size:        len(s.buf),
		InUse:       used,
		Available:   len(s.buf) - used,
		Utilization: ratio(used, len(s.buf)),
	}
}

func ratio(used, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(used) / float64(total)
}
