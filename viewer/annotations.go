package viewer

import (
	"fmt"

	"github.com/wudi/pdfview/coords"
	"github.com/wudi/pdfview/engine"
	"github.com/wudi/pdfview/observability"
)

// AnnotationKind tags the decoded variants.
type AnnotationKind string

const (
	KindInk       AnnotationKind = "ink"
	KindHighlight AnnotationKind = "highlight"
	KindLink      AnnotationKind = "link"
	KindRect      AnnotationKind = "rect"
)

// Annotation is a decoded snapshot of one page annotation, with all
// geometry in caller space: device pixels at the scale the listing was
// made at, ready to draw as overlays. It holds no native handles;
// re-listing a page decodes fresh copies. Which fields are populated
// depends on Kind: Strokes for ink, Quads for highlight, URI/DestPage
// for link, and Rect plus common attributes for everything
// (unrecognized subtypes fall back to KindRect with their bounding
// rect only).
type Annotation struct {
	ID       string
	Page     int
	Kind     AnnotationKind
	Subtype  engine.AnnotationSubtype
	Rect     coords.Rect
	Color    engine.Color
	HasColor bool
	Border   float64

	Strokes  [][]coords.Point
	Quads    []coords.Quad
	URI      string
	DestPage int
}

// ListAnnotations decodes every annotation on a page, converting all
// geometry to device pixels at the given scale. Decoding is read-only
// and idempotent: consecutive calls return equal snapshots and leave
// no handle open.
func (c *Controller) ListAnnotations(pageIndex int, scale float64) ([]Annotation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Annotation
	err := c.withPage(pageIndex, func(p engine.PageHandle) error {
		n := c.eng.AnnotationCount(p)
		for i := 0; i < n; i++ {
			a, err := c.decodeAnnotation(p, pageIndex, i, scale)
			if err != nil {
				return err
			}
			out = append(out, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Controller) decodeAnnotation(p engine.PageHandle, pageIndex, index int, scale float64) (Annotation, error) {
	h, err := c.eng.OpenAnnotation(p, index)
	if err != nil {
		return Annotation{}, &NativeError{Op: "open annotation", Code: c.eng.LastError()}
	}
	defer c.eng.CloseAnnotation(h)

	a := Annotation{
		ID:       fmt.Sprintf("p%da%d", pageIndex, index),
		Page:     pageIndex,
		Subtype:  c.eng.AnnotationSubtype(h),
		DestPage: -1,
	}
	if col, ok := c.eng.AnnotationColor(h); ok {
		a.Color, a.HasColor = col, true
	}
	if r, ok := c.eng.AnnotationRect(h); ok {
		a.Rect = c.pageRectToDevice(p, rectFromF(r), scale, 0)
	}
	if _, _, w, ok := c.eng.AnnotationBorder(h); ok {
		a.Border = float64(w) * scale
	}

	switch a.Subtype {
	case engine.AnnotInk:
		a.Kind = KindInk
		for i := 0; i < c.eng.InkListCount(h); i++ {
			n := c.eng.InkListPath(h, i, nil)
			if n <= 0 {
				continue
			}
			buf := make([]engine.PointF, n)
			got := c.eng.InkListPath(h, i, buf)
			stroke := make([]coords.Point, got)
			for j := 0; j < got; j++ {
				stroke[j] = c.pageToDevice(p, coords.Point{
					X: float64(buf[j].X), Y: float64(buf[j].Y),
				}, scale, 0)
			}
			a.Strokes = append(a.Strokes, stroke)
		}
	case engine.AnnotHighlight:
		a.Kind = KindHighlight
		for i := 0; i < c.eng.AttachmentPointCount(h); i++ {
			q, ok := c.eng.AttachmentPoints(h, i)
			if !ok {
				continue
			}
			pageQuad := quadFromF(q)
			var devQuad coords.Quad
			for j, pt := range pageQuad {
				devQuad[j] = c.pageToDevice(p, pt, scale, 0)
			}
			a.Quads = append(a.Quads, devQuad)
		}
	case engine.AnnotLink:
		a.Kind = KindLink
		if uri, ok := c.eng.LinkURI(c.doc, h); ok {
			a.URI = uri
		}
		if page, ok := c.eng.LinkDestPage(c.doc, h); ok {
			a.DestPage = page
		}
	default:
		a.Kind = KindRect
	}
	return a, nil
}

// AddInkStroke appends an ink annotation with a single stroke. Points
// and width are device pixels at the given scale; they are converted
// to page space before the engine sees them. Fewer than two points is
// a no-op: degenerate input from the front end is dropped silently
// rather than persisted as invisible geometry.
func (c *Controller) AddInkStroke(pageIndex int, scale float64, points []coords.Point, color engine.Color, width float64) error {
	if len(points) < 2 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.withPage(pageIndex, func(p engine.PageHandle) error {
		h, err := c.eng.CreateAnnotation(p, engine.AnnotInk)
		if err != nil {
			return &NativeError{Op: "create ink annotation", Code: c.eng.LastError()}
		}
		defer c.eng.CloseAnnotation(h)

		pts := make([]engine.PointF, len(points))
		var bounds coords.Rect
		for i, pt := range points {
			pagePt := c.deviceToPage(p, pt, scale, 0)
			pts[i] = engine.PointF{X: float32(pagePt.X), Y: float32(pagePt.Y)}
			if i == 0 {
				bounds = coords.Rect{Left: pagePt.X, Top: pagePt.Y, Right: pagePt.X, Bottom: pagePt.Y}
				continue
			}
			if pagePt.X < bounds.Left {
				bounds.Left = pagePt.X
			}
			if pagePt.X > bounds.Right {
				bounds.Right = pagePt.X
			}
			if pagePt.Y < bounds.Bottom {
				bounds.Bottom = pagePt.Y
			}
			if pagePt.Y > bounds.Top {
				bounds.Top = pagePt.Y
			}
		}
		if _, err := c.eng.AddInkStroke(h, pts); err != nil {
			return &NativeError{Op: "add ink stroke", Code: c.eng.LastError()}
		}
		pageWidth := width / scale
		c.eng.SetAnnotationColor(h, color)
		c.eng.SetAnnotationBorder(h, 0, 0, float32(pageWidth))
		pad := pageWidth / 2
		c.eng.SetAnnotationRect(h, engine.RectF{
			Left:   float32(bounds.Left - pad),
			Top:    float32(bounds.Top + pad),
			Right:  float32(bounds.Right + pad),
			Bottom: float32(bounds.Bottom - pad),
		})
		c.eng.GenerateContent(p)
		c.log.Debug("ink stroke added",
			observability.Int("page", pageIndex),
			observability.Int("points", len(points)))
		return nil
	})
}

// AddHighlightQuad appends a highlight annotation covering one quad
// given in device pixels at the given scale (TL, TR, BR, BL). A
// zero-area quad is a silent no-op.
func (c *Controller) AddHighlightQuad(pageIndex int, scale float64, quad coords.Quad, color engine.Color) error {
	if quad.Bounds().Empty() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.withPage(pageIndex, func(p engine.PageHandle) error {
		h, err := c.eng.CreateAnnotation(p, engine.AnnotHighlight)
		if err != nil {
			return &NativeError{Op: "create highlight annotation", Code: c.eng.LastError()}
		}
		defer c.eng.CloseAnnotation(h)

		var pageQuad coords.Quad
		for i, pt := range quad {
			pageQuad[i] = c.deviceToPage(p, pt, scale, 0)
		}
		if !c.eng.AppendAttachmentPoints(h, quadToF(pageQuad)) {
			return &NativeError{Op: "append highlight quad", Code: c.eng.LastError()}
		}
		c.eng.SetAnnotationColor(h, color)
		// Bounds is device-oriented; the annotation rect is page space.
		b := pageQuad.Bounds()
		c.eng.SetAnnotationRect(h, engine.RectF{
			Left:   float32(b.Left),
			Top:    float32(b.Bottom),
			Right:  float32(b.Right),
			Bottom: float32(b.Top),
		})
		c.eng.GenerateContent(p)
		return nil
	})
}

// AddLinkRect appends a link annotation over a rect given in device
// pixels at the given scale. An empty rect is a silent no-op.
func (c *Controller) AddLinkRect(pageIndex int, scale float64, rect coords.Rect, uri string) error {
	if rect.Empty() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.withPage(pageIndex, func(p engine.PageHandle) error {
		h, err := c.eng.CreateAnnotation(p, engine.AnnotLink)
		if err != nil {
			return &NativeError{Op: "create link annotation", Code: c.eng.LastError()}
		}
		defer c.eng.CloseAnnotation(h)

		pageRect := c.deviceRectToPage(p, rect, scale, 0)
		if !c.eng.SetAnnotationRect(h, rectToF(pageRect)) {
			return &NativeError{Op: "set link rect", Code: c.eng.LastError()}
		}
		if uri != "" && !c.eng.SetLinkURI(h, uri) {
			return &NativeError{Op: "set link uri", Code: c.eng.LastError()}
		}
		c.eng.GenerateContent(p)
		return nil
	})
}

// AddFlattenedText burns a text run into the page content stream as a
// positioned glyph-run page object. The anchor point and font size are
// device pixels at the given scale; the object's matrix undoes the
// scale and moves the glyphs to the page position. It is not an
// annotation: it cannot be listed or removed afterwards, which is
// exactly what flattening means. Empty text is a silent no-op.
func (c *Controller) AddFlattenedText(pageIndex int, scale float64, text string, at coords.Point, fontName string, fontSize float64, color engine.Color) error {
	if text == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.withPage(pageIndex, func(p engine.PageHandle) error {
		font, err := c.eng.LoadStandardFont(c.doc, fontName)
		if err != nil {
			return &NativeError{Op: "load font", Code: c.eng.LastError()}
		}
		defer c.eng.CloseFont(font)

		obj, err := c.eng.NewTextObject(c.doc, font, float32(fontSize))
		if err != nil {
			return &NativeError{Op: "create text object", Code: c.eng.LastError()}
		}
		if !c.eng.SetTextObjectText(obj, text) {
			return &NativeError{Op: "set text", Code: c.eng.LastError()}
		}
		c.eng.SetPageObjectFillColor(obj, color)
		pagePt := c.deviceToPage(p, at, scale, 0)
		m := coords.Scale(1/scale, 1/scale).Multiply(coords.Translate(pagePt.X, pagePt.Y))
		c.eng.TransformPageObject(obj, m[0], m[1], m[2], m[3], m[4], m[5])
		// The page owns the object once inserted.
		c.eng.InsertPageObject(p, obj)
		if !c.eng.GenerateContent(p) {
			return &NativeError{Op: "generate content", Code: c.eng.LastError()}
		}
		return nil
	})
}

func rectFromF(r engine.RectF) coords.Rect {
	return coords.Rect{
		Left: float64(r.Left), Top: float64(r.Top),
		Right: float64(r.Right), Bottom: float64(r.Bottom),
	}
}

func rectToF(r coords.Rect) engine.RectF {
	return engine.RectF{
		Left: float32(r.Left), Top: float32(r.Top),
		Right: float32(r.Right), Bottom: float32(r.Bottom),
	}
}

// quadFromF reorders the native corner layout (TL, TR, BL, BR) into
// the clockwise TL, TR, BR, BL convention.
func quadFromF(q engine.QuadPointsF) coords.Quad {
	return coords.Quad{
		{X: float64(q.X1), Y: float64(q.Y1)},
		{X: float64(q.X2), Y: float64(q.Y2)},
		{X: float64(q.X4), Y: float64(q.Y4)},
		{X: float64(q.X3), Y: float64(q.Y3)},
	}
}

func quadToF(q coords.Quad) engine.QuadPointsF {
	return engine.QuadPointsF{
		X1: float32(q[0].X), Y1: float32(q[0].Y),
		X2: float32(q[1].X), Y2: float32(q[1].Y),
		X3: float32(q[3].X), Y3: float32(q[3].Y),
		X4: float32(q[2].X), Y4: float32(q[2].Y),
	}
}
