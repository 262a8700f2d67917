package viewer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/wudi/pdfview/engine"
	"github.com/wudi/pdfview/engine/enginetest"
)

// hookReader serves data but runs hook once before the first Read,
// which lets a test inject a competing operation mid-load.
type hookReader struct {
	r    io.Reader
	once sync.Once
	hook func()
}

func (h *hookReader) Read(p []byte) (int, error) {
	h.once.Do(h.hook)
	return h.r.Read(p)
}

func TestLoadRequiresInitialize(t *testing.T) {
	c := New(enginetest.New())
	err := c.Load(context.Background(), bytes.NewReader([]byte("{}")))
	if err != ErrNotInitialized {
		t.Fatalf("Load error = %v, want ErrNotInitialized", err)
	}
}

func TestLoadRejectionCarriesEngineCode(t *testing.T) {
	f := enginetest.New()
	f.FailLoadCode = engine.ErrCodeFormat
	c := New(f)
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	err := c.Load(context.Background(), bytes.NewReader([]byte("whatever")))
	var ne *NativeError
	if !errors.As(err, &ne) {
		t.Fatalf("Load error = %v, want *NativeError", err)
	}
	if ne.Code != engine.ErrCodeFormat {
		t.Fatalf("NativeError.Code = %d, want %d", ne.Code, engine.ErrCodeFormat)
	}
	if _, err := c.PageCount(); err != ErrNoDocument {
		t.Fatalf("state mutated by failed load: PageCount error = %v", err)
	}
}

func TestLoadReplacesPreviousDocument(t *testing.T) {
	c, f := newTestController(t, enginetest.SinglePage(100, 100))
	two := enginetest.Fixture{Pages: []enginetest.PageFixture{
		{Width: 200, Height: 100}, {Width: 200, Height: 100},
	}}
	if err := c.Load(context.Background(), bytes.NewReader(enginetest.MustJSON(t, two))); err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if n, _ := c.PageCount(); n != 2 {
		t.Fatalf("PageCount = %d, want 2", n)
	}
	if f.DocOpens != 2 || f.DocCloses != 1 {
		t.Fatalf("doc opens/closes = %d/%d, want 2/1", f.DocOpens, f.DocCloses)
	}
}

func TestLoadSupersededByNewerLoad(t *testing.T) {
	c, f := newTestController(t, enginetest.SinglePage(100, 100))
	newer := enginetest.MustJSON(t, enginetest.Fixture{Pages: []enginetest.PageFixture{
		{Width: 300, Height: 150},
	}})
	older := enginetest.MustJSON(t, enginetest.SinglePage(50, 50))

	// The newer load commits while the older one is still reading its
	// input; the older load must discard itself.
	r := &hookReader{r: bytes.NewReader(older), hook: func() {
		if err := c.Load(context.Background(), bytes.NewReader(newer)); err != nil {
			t.Errorf("newer Load: %v", err)
		}
	}}
	if err := c.Load(context.Background(), r); !errors.Is(err, ErrSuperseded) {
		t.Fatalf("older Load error = %v, want ErrSuperseded", err)
	}

	w, h, err := c.PageSize(0)
	if err != nil {
		t.Fatalf("PageSize: %v", err)
	}
	if w != 300 || h != 150 {
		t.Fatalf("current page = %gx%g, want the newer document's 300x150", w, h)
	}
	c.Destroy()
	if f.DocOpens != f.DocCloses {
		t.Fatalf("doc opens %d != closes %d", f.DocOpens, f.DocCloses)
	}
}

func TestConcurrentLoadsBalanceHandles(t *testing.T) {
	c, f := newTestController(t, enginetest.SinglePage(100, 100))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fx := enginetest.SinglePage(float64(100+i), 100)
			err := c.Load(context.Background(), bytes.NewReader(enginetest.MustJSON(t, fx)))
			if err != nil && !errors.Is(err, ErrSuperseded) {
				t.Errorf("Load #%d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()
	if live := f.DocOpens - f.DocCloses; live != 1 {
		t.Fatalf("live documents = %d, want 1", live)
	}
	c.Destroy()
	if f.DocOpens != f.DocCloses {
		t.Fatalf("doc opens %d != closes %d after Destroy", f.DocOpens, f.DocCloses)
	}
}

func TestDestroyInvalidatesInflightLoad(t *testing.T) {
	c, f := newTestController(t, enginetest.SinglePage(100, 100))
	data := enginetest.MustJSON(t, enginetest.SinglePage(50, 50))
	r := &hookReader{r: bytes.NewReader(data), hook: c.Destroy}
	if err := c.Load(context.Background(), r); !errors.Is(err, ErrSuperseded) {
		t.Fatalf("Load during Destroy = %v, want ErrSuperseded", err)
	}
	if f.DocOpens != f.DocCloses {
		t.Fatalf("doc opens %d != closes %d", f.DocOpens, f.DocCloses)
	}
	if f.DestroyCalls != 1 {
		t.Fatalf("DestroyCalls = %d, want 1", f.DestroyCalls)
	}
}

func TestLoadCancelledContext(t *testing.T) {
	c, _ := newTestController(t, enginetest.SinglePage(100, 100))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	data := enginetest.MustJSON(t, enginetest.SinglePage(50, 50))
	if err := c.Load(ctx, bytes.NewReader(data)); !errors.Is(err, context.Canceled) {
		t.Fatalf("Load error = %v, want context.Canceled", err)
	}
	if w, _, _ := c.PageSize(0); w != 100 {
		t.Fatalf("cancelled load mutated state: width = %g", w)
	}
}
