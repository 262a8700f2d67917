package viewer

import (
	"math"

	"github.com/wudi/pdfview/coords"
	"github.com/wudi/pdfview/engine"
)

// DeviceExtent reports the device pixel dimensions of a page at the
// given scale and rotation (quarter turns clockwise), using the same
// rounding the render pipeline uses. Odd rotations swap the axes.
func (c *Controller) DeviceExtent(pageIndex int, scale float64, rotate int) (int, int, error) {
	w, h, err := c.PageSize(pageIndex)
	if err != nil {
		return 0, 0, err
	}
	dw, dh := rotatedExtent(w, h, scale, rotate)
	return dw, dh, nil
}

func rotatedExtent(pageWidth, pageHeight, scale float64, rotate int) (int, int) {
	dw, dh := coords.DeviceExtent(pageWidth, pageHeight, scale)
	if rotate&1 == 1 {
		return dh, dw
	}
	return dw, dh
}

// PageToDevicePoint maps a page-space point to device pixels at the
// given scale and rotation. The mapping goes through the engine's own
// matrix so it agrees exactly with what the rasterizer draws.
func (c *Controller) PageToDevicePoint(pageIndex int, pt coords.Point, scale float64, rotate int) (coords.Point, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out coords.Point
	err := c.withPage(pageIndex, func(p engine.PageHandle) error {
		out = c.pageToDevice(p, pt, scale, rotate)
		return nil
	})
	return out, err
}

// DeviceToPagePoint maps a device pixel back to page space at the
// given scale and rotation.
func (c *Controller) DeviceToPagePoint(pageIndex int, pt coords.Point, scale float64, rotate int) (coords.Point, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out coords.Point
	err := c.withPage(pageIndex, func(p engine.PageHandle) error {
		out = c.deviceToPage(p, pt, scale, rotate)
		return nil
	})
	return out, err
}

// pageToDevice maps one page-space point with the page handle already
// open. Callers must hold c.mu.
func (c *Controller) pageToDevice(p engine.PageHandle, pt coords.Point, scale float64, rotate int) coords.Point {
	rotate &= 3
	dw, dh := rotatedExtent(c.eng.PageWidth(p), c.eng.PageHeight(p), scale, rotate)
	x, y := c.eng.PageToDevice(p, 0, 0, dw, dh, rotate, pt.X, pt.Y)
	return coords.Point{X: float64(x), Y: float64(y)}
}

// deviceToPage maps one device point back to page space. Callers must
// hold c.mu.
func (c *Controller) deviceToPage(p engine.PageHandle, pt coords.Point, scale float64, rotate int) coords.Point {
	rotate &= 3
	dw, dh := rotatedExtent(c.eng.PageWidth(p), c.eng.PageHeight(p), scale, rotate)
	x, y := c.eng.DeviceToPage(p, 0, 0, dw, dh, rotate,
		int(math.Round(pt.X)), int(math.Round(pt.Y)))
	return coords.Point{X: x, Y: y}
}

// pageRectToDevice maps a page-space rect (Bottom < Top) to a device
// rect (Top < Bottom). Callers must hold c.mu.
func (c *Controller) pageRectToDevice(p engine.PageHandle, r coords.Rect, scale float64, rotate int) coords.Rect {
	a := c.pageToDevice(p, coords.Point{X: r.Left, Y: r.Top}, scale, rotate)
	b := c.pageToDevice(p, coords.Point{X: r.Right, Y: r.Bottom}, scale, rotate)
	return coords.Rect{
		Left:   math.Min(a.X, b.X),
		Top:    math.Min(a.Y, b.Y),
		Right:  math.Max(a.X, b.X),
		Bottom: math.Max(a.Y, b.Y),
	}
}

// deviceRectToPage maps a device rect (Top < Bottom) to a page rect
// (Bottom < Top). Callers must hold c.mu.
func (c *Controller) deviceRectToPage(p engine.PageHandle, r coords.Rect, scale float64, rotate int) coords.Rect {
	a := c.deviceToPage(p, coords.Point{X: r.Left, Y: r.Top}, scale, rotate)
	b := c.deviceToPage(p, coords.Point{X: r.Right, Y: r.Bottom}, scale, rotate)
	return coords.Rect{
		Left:   math.Min(a.X, b.X),
		Top:    math.Max(a.Y, b.Y),
		Right:  math.Max(a.X, b.X),
		Bottom: math.Min(a.Y, b.Y),
	}
}
