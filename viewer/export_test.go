package viewer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/wudi/pdfview/engine"
	"github.com/wudi/pdfview/engine/enginetest"
)

func TestExportReloadRoundTrip(t *testing.T) {
	fx := enginetest.Fixture{Pages: []enginetest.PageFixture{
		{Width: 200, Height: 100},
		{Width: 300, Height: 150},
	}}
	c, f := newTestController(t, fx)
	data, err := c.ExportBytes(engine.SaveNoIncremental, 0)
	if err != nil {
		t.Fatalf("ExportBytes: %v", err)
	}
	if f.SaveBufferFrees != 1 {
		t.Fatalf("SaveBufferFrees = %d, want 1", f.SaveBufferFrees)
	}

	if err := c.Load(context.Background(), bytes.NewReader(data)); err != nil {
		t.Fatalf("reload exported bytes: %v", err)
	}
	n, err := c.PageCount()
	if err != nil {
		t.Fatalf("PageCount: %v", err)
	}
	if n != 2 {
		t.Fatalf("PageCount = %d, want 2", n)
	}
	w, h, err := c.PageSize(1)
	if err != nil {
		t.Fatalf("PageSize: %v", err)
	}
	if w != 300 || h != 150 {
		t.Fatalf("page 1 = %gx%g, want 300x150", w, h)
	}
}

func TestExportEmptyBufferStillFreed(t *testing.T) {
	c, f := newTestController(t, enginetest.SinglePage(100, 100))
	f.SaveEmpty = true
	_, err := c.ExportBytes(engine.SaveNoIncremental, 0)
	var ne *NativeError
	if !errors.As(err, &ne) {
		t.Fatalf("ExportBytes error = %v, want *NativeError", err)
	}
	if f.SaveBufferFrees != 1 {
		t.Fatalf("SaveBufferFrees = %d, want 1 even on failure", f.SaveBufferFrees)
	}
}

func TestExportWithoutDocument(t *testing.T) {
	c := New(enginetest.New())
	if _, err := c.ExportBytes(engine.SaveNoIncremental, 0); err != ErrNoDocument {
		t.Fatalf("ExportBytes error = %v, want ErrNoDocument", err)
	}
}
