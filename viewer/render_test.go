package viewer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wudi/pdfview/engine/enginetest"
)

func TestRenderPageDimensions(t *testing.T) {
	c, _ := newTestController(t, enginetest.SinglePage(200, 100))
	target, err := c.RenderPage(context.Background(), 0, 2, 1)
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if target.Width != 400 || target.Height != 200 {
		t.Fatalf("target = %dx%d, want 400x200", target.Width, target.Height)
	}
	if target.Stride != 4*target.Width {
		t.Fatalf("Stride = %d, want %d", target.Stride, 4*target.Width)
	}
	if len(target.Pix) != target.Stride*target.Height {
		t.Fatalf("len(Pix) = %d, want %d", len(target.Pix), target.Stride*target.Height)
	}
}

func TestRenderPixelRatioMultipliesScale(t *testing.T) {
	c, _ := newTestController(t, enginetest.SinglePage(200, 100))
	target, err := c.RenderPage(context.Background(), 0, 1, 2)
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if target.Width != 400 || target.Height != 200 {
		t.Fatalf("target = %dx%d, want 400x200", target.Width, target.Height)
	}
}

func TestRenderRotatedSwapsExtent(t *testing.T) {
	c, f := newTestController(t, enginetest.SinglePage(200, 100))
	target, err := c.RenderPage(context.Background(), 0, 1, 1, RenderRotated(1))
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if target.Width != 100 || target.Height != 200 {
		t.Fatalf("target = %dx%d, want 100x200", target.Width, target.Height)
	}
	checkRGBA(t, target.Pix, f)

	// A half turn keeps the extent.
	target, err = c.RenderPage(context.Background(), 0, 1, 1, RenderRotated(2))
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if target.Width != 200 || target.Height != 100 {
		t.Fatalf("target = %dx%d, want 200x100", target.Width, target.Height)
	}
}

func checkRGBA(t *testing.T, pix []byte, f *enginetest.Fake) {
	t.Helper()
	c := f.RenderColor
	for i := 0; i+3 < len(pix); i += 4 {
		if pix[i] != c.R || pix[i+1] != c.G || pix[i+2] != c.B || pix[i+3] != c.A {
			t.Fatalf("pixel %d = %x %x %x %x, want RGBA %x %x %x %x",
				i/4, pix[i], pix[i+1], pix[i+2], pix[i+3], c.R, c.G, c.B, c.A)
		}
	}
}

func TestRenderConvertsBGRAToRGBA(t *testing.T) {
	c, f := newTestController(t, enginetest.SinglePage(50, 20))
	target, err := c.RenderPage(context.Background(), 0, 1, 1)
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	checkRGBA(t, target.Pix, f)
}

func TestRenderConvertsWithRowPadding(t *testing.T) {
	f := enginetest.New()
	f.StrideSlack = 12
	c := New(f)
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	loadFixture(t, c, enginetest.SinglePage(50, 20))
	target, err := c.RenderPage(context.Background(), 0, 1, 1)
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if target.Stride != 4*target.Width {
		t.Fatalf("output stride = %d, want tightly packed %d", target.Stride, 4*target.Width)
	}
	checkRGBA(t, target.Pix, f)
}

func TestRenderSync(t *testing.T) {
	c, f := newTestController(t, enginetest.SinglePage(50, 20))
	f.ContinueSteps = 5 // would matter only on the progressive path
	target, err := c.RenderPage(context.Background(), 0, 1, 1, RenderSync())
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	checkRGBA(t, target.Pix, f)
}

func TestRenderProgressiveMultiplePasses(t *testing.T) {
	c, f := newTestController(t, enginetest.SinglePage(50, 20))
	f.ContinueSteps = 3
	target, err := c.RenderPage(context.Background(), 0, 1, 1)
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	checkRGBA(t, target.Pix, f)
	if f.RenderCloses == 0 {
		t.Fatal("progressive render never closed")
	}
}

func TestRenderPreStartCancelAllocatesNothing(t *testing.T) {
	c, f := newTestController(t, enginetest.SinglePage(200, 100))
	pagesBefore := f.PageOpens
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.RenderPage(ctx, 0, 1, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("RenderPage = %v, want context.Canceled", err)
	}
	if f.PageOpens != pagesBefore {
		t.Fatal("pre-start cancel still opened a page")
	}
	if f.BitmapsLive != 0 {
		t.Fatalf("BitmapsLive = %d, want 0", f.BitmapsLive)
	}
}

func TestRenderMidCancelResetsFlagAndRecovers(t *testing.T) {
	c, f := newTestController(t, enginetest.SinglePage(200, 100))
	f.ContinueSteps = 1 << 30 // never finishes on its own

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if _, err := c.RenderPage(ctx, 0, 1, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("RenderPage = %v, want context.Canceled", err)
	}
	if f.CancelFlag() {
		t.Fatal("cancel flag not reset after aborted render")
	}
	if f.BitmapsLive != 0 {
		t.Fatalf("BitmapsLive = %d after abort, want 0", f.BitmapsLive)
	}

	// The next render must start clean and finish.
	f.ContinueSteps = 2
	target, err := c.RenderPage(context.Background(), 0, 1, 1)
	if err != nil {
		t.Fatalf("render after abort: %v", err)
	}
	checkRGBA(t, target.Pix, f)
}

func TestRenderIntoResamples(t *testing.T) {
	c, f := newTestController(t, enginetest.SinglePage(200, 100))
	target, err := c.RenderPage(context.Background(), 0, 1, 1, RenderInto(100, 50))
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if target.Width != 100 || target.Height != 50 {
		t.Fatalf("target = %dx%d, want 100x50", target.Width, target.Height)
	}
	// A uniform source stays uniform through bilinear resampling.
	checkRGBA(t, target.Pix, f)
}
