package viewer

import (
	"context"
	"image"
	"runtime"
	"time"

	"golang.org/x/image/draw"

	"github.com/wudi/pdfview/engine"
	"github.com/wudi/pdfview/observability"
)

// RenderTarget is a completed raster in RGBA order, tightly packed
// (Stride == 4*Width). Partial rasters are never returned: a cancelled
// or failed render yields an error and no target.
type RenderTarget struct {
	Pix    []byte
	Width  int
	Height int
	Stride int
}

type renderConfig struct {
	sync         bool
	annotations  bool
	rotate       int
	targetWidth  int
	targetHeight int
}

// RenderOption adjusts one render call.
type RenderOption func(*renderConfig)

// RenderSync uses the single blocking raster call instead of the
// progressive loop. Cancellation cannot interrupt a sync render.
func RenderSync() RenderOption {
	return func(rc *renderConfig) { rc.sync = true }
}

// RenderAnnotations draws annotation appearances into the raster.
func RenderAnnotations() RenderOption {
	return func(rc *renderConfig) { rc.annotations = true }
}

// RenderRotated rotates the raster by the given number of clockwise
// quarter turns. Odd turns swap the device extent's axes.
func RenderRotated(quarterTurns int) RenderOption {
	return func(rc *renderConfig) { rc.rotate = quarterTurns & 3 }
}

// RenderInto resamples the finished raster to the given dimensions
// when they differ from the page's device extent.
func RenderInto(width, height int) RenderOption {
	return func(rc *renderConfig) { rc.targetWidth, rc.targetHeight = width, height }
}

// RenderPage rasterizes a page at scale×pixelRatio. The device extent
// is round(pageDim × scale × pixelRatio), axes swapped when a
// RenderRotated option gives an odd quarter turn. A context cancelled before
// the render starts fails without allocating native resources; one
// cancelled mid-render aborts between raster bands, and the engine's
// cancel flag is reset on every exit path so the next render starts
// clean.
func (c *Controller) RenderPage(ctx context.Context, pageIndex int, scale, pixelRatio float64, opts ...RenderOption) (target *RenderTarget, err error) {
	var rc renderConfig
	for _, opt := range opts {
		opt(&rc)
	}
	// Pre-start cancellation: nothing has been allocated yet.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx, span := c.tracer.StartSpan(ctx, "viewer.render")
	defer func() {
		if err != nil {
			span.SetError(err)
		}
		span.Finish()
	}()
	start := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	var passes int
	err = c.withPage(pageIndex, func(p engine.PageHandle) error {
		w, h := c.eng.PageWidth(p), c.eng.PageHeight(p)
		devW, devH := rotatedExtent(w, h, scale*pixelRatio, rc.rotate)
		if devW <= 0 || devH <= 0 {
			return &NativeError{Op: "render page", Code: engine.ErrCodePage}
		}

		bm, err := c.eng.CreateBitmap(devW, devH, true)
		if err != nil {
			return &NativeError{Op: "create bitmap", Code: c.eng.LastError()}
		}
		defer c.eng.DestroyBitmap(bm)
		c.eng.FillBitmapRect(bm, 0, 0, devW, devH, 0xFFFFFFFF)

		flags := 0
		if rc.annotations {
			flags |= engine.RenderFlagAnnotations
		}

		if rc.sync {
			c.eng.RenderPage(bm, p, 0, 0, devW, devH, rc.rotate, flags)
			passes = 1
		} else if err := c.renderProgressive(ctx, bm, p, devW, devH, rc.rotate, flags, &passes); err != nil {
			return err
		}

		target = c.convertBitmap(bm, devW, devH)
		if rc.targetWidth > 0 && rc.targetHeight > 0 &&
			(rc.targetWidth != devW || rc.targetHeight != devH) {
			target = resample(target, rc.targetWidth, rc.targetHeight)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.log.Debug("page rendered",
		observability.Int("page", pageIndex),
		observability.Int("width", target.Width),
		observability.Int("height", target.Height),
		observability.Int(observability.MetricRenderPasses, passes),
		observability.Duration(observability.MetricRenderTime, time.Since(start)))
	return target, nil
}

// renderProgressive drives the Start/Continue/Close sequence, checking
// the context between raster bands. Callers must hold c.mu.
func (c *Controller) renderProgressive(ctx context.Context, bm engine.BitmapHandle, p engine.PageHandle, devW, devH, rotate, flags int, passes *int) error {
	// The flag outlives this render only as garbage; reset it whether
	// we finish, fail, or bail out on the context.
	defer c.eng.SetRenderCancelFlag(false)
	defer c.eng.CloseRender(p)

	status := c.eng.StartProgressiveRender(bm, p, 0, 0, devW, devH, rotate, flags)
	*passes = 1
	for status == engine.RenderToBeContinued {
		select {
		case <-ctx.Done():
			c.eng.SetRenderCancelFlag(true)
			return ctx.Err()
		default:
		}
		runtime.Gosched()
		status = c.eng.ContinueRender(p)
		*passes++
	}
	if status != engine.RenderDone {
		return &NativeError{Op: "render page", Code: c.eng.LastError()}
	}
	return nil
}

// convertBitmap copies the engine's BGRA pixels into a tightly packed
// RGBA buffer. When the native stride has no row padding the rows are
// walked as one run; otherwise each row is converted separately.
func (c *Controller) convertBitmap(bm engine.BitmapHandle, w, h int) *RenderTarget {
	src := c.eng.BitmapBuffer(bm)
	stride := c.eng.BitmapStride(bm)
	out := make([]byte, 4*w*h)
	if stride == 4*w {
		bgraToRGBA(out, src[:4*w*h])
	} else {
		for y := 0; y < h; y++ {
			bgraToRGBA(out[y*4*w:(y+1)*4*w], src[y*stride:y*stride+4*w])
		}
	}
	return &RenderTarget{Pix: out, Width: w, Height: h, Stride: 4 * w}
}

func bgraToRGBA(dst, src []byte) {
	for i := 0; i+3 < len(src); i += 4 {
		dst[i+0] = src[i+2]
		dst[i+1] = src[i+1]
		dst[i+2] = src[i+0]
		dst[i+3] = src[i+3]
	}
}

func resample(t *RenderTarget, w, h int) *RenderTarget {
	src := &image.RGBA{Pix: t.Pix, Stride: t.Stride, Rect: image.Rect(0, 0, t.Width, t.Height)}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return &RenderTarget{Pix: dst.Pix, Width: w, Height: h, Stride: dst.Stride}
}
