package memkit

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/pavanmanishd/memkit/alloc"
)

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	if o.ChunkSize != DefaultChunkSize {
		t.Errorf("ChunkSize = %d, want %d", o.ChunkSize, DefaultChunkSize)
	}
	if o.Parent != alloc.DefaultAllocator {
		t.Errorf("Parent = %s, want the default allocator", o.Parent.Name())
	}

	pages := alloc.NewPageHeap()
	o = Options{ChunkSize: 4096, Parent: pages}.withDefaults()
	if o.ChunkSize != 4096 || o.Parent != pages {
		t.Errorf("explicit options overridden: %+v", o)
	}
}

func TestArenaOnPageHeap(t *testing.T) {
	pages := alloc.NewPageHeap()
	a, err := NewArenaWithOptions(Options{ChunkSize: 4096, Parent: pages})
	if err != nil {
		t.Fatal(err)
	}
	if got := a.Name(); got != "arena(pages)" {
		t.Errorf("Name() = %q", got)
	}
	for range 10 {
		if _, err := a.Allocate(1000); err != nil {
			t.Fatal(err)
		}
	}
	if pages.Mapped() < a.Capacity() {
		t.Errorf("Mapped() = %d, want at least %d", pages.Mapped(), a.Capacity())
	}

	a.Release()
	if pages.Mapped() != 0 {
		t.Errorf("Mapped() after Release = %d, want 0", pages.Mapped())
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)

	a := NewArena(128)
	a.AllocBytes(100)
	a.AllocBytes(100) // second chunk

	out := buf.String()
	if n := strings.Count(out, "arena: new chunk"); n != 2 {
		t.Errorf("logged %d chunk events, want 2:\n%s", n, out)
	}
	if !strings.Contains(out, "chunks=2") {
		t.Errorf("missing chunk count in log:\n%s", out)
	}

	SetLogger(nil)
	buf.Reset()
	a.AllocBytes(500)
	if buf.Len() != 0 {
		t.Errorf("logging after SetLogger(nil): %s", buf.String())
	}
}
