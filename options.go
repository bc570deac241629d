package memkit

import (
	"log/slog"

	"github.com/pavanmanishd/memkit/alloc"
	"github.com/pavanmanishd/memkit/internal/logger"
)

// Options configures an Arena.
type Options struct {
	ChunkSize int             // Bytes per chunk. <= 0 selects DefaultChunkSize.
	Parent    alloc.Allocator // Source of chunks. nil selects alloc.DefaultAllocator.
}

func (o Options) withDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.Parent == nil {
		o.Parent = alloc.DefaultAllocator
	}
	return o
}

// SetLogger directs memkit diagnostics (chunk and container growth, rejected
// frees) to l. Logging is discarded until SetLogger is called; a nil l
// discards it again.
func SetLogger(l *slog.Logger) {
	logger.Set(l)
}
