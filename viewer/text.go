package viewer

import (
	"math"
	"strings"
	"time"

	"github.com/wudi/pdfview/coords"
	"github.com/wudi/pdfview/engine"
	"github.com/wudi/pdfview/observability"
)

// mergeGapFactor bounds the horizontal gap between two raw rects that
// still belong to one visual run: half the leading rect's font size.
const mergeGapFactor = 0.5

// fontProbeTolerance is the hit-test window for resolving a rect's
// font attributes from the character at its origin. It must stay well
// under a line pitch, or the probe snaps to a neighboring run.
const fontProbeTolerance = 1.0

// TextRect is a merged run of page text with its page-space bounding
// rect (origin bottom-left, Bottom < Top).
type TextRect struct {
	Text     string
	Rect     coords.Rect
	FontName string
	FontSize float64
}

// PageTextContent extracts the page's text as merged rects. The engine
// reports one rect per uniform run; adjacent runs are merged when they
// sit on the same visual line (top difference smaller than the first
// run's height) and the horizontal gap between them is under half the
// first run's font size. Merging keeps the first run's font attributes.
func (c *Controller) PageTextContent(pageIndex int) ([]TextRect, error) {
	start := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []TextRect
	err := c.withTextPage(pageIndex, func(p engine.PageHandle, tp engine.TextPageHandle) error {
		raw := c.rawTextRects(tp)
		out = mergeTextRects(raw)
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.log.Debug("text extracted",
		observability.Int("page", pageIndex),
		observability.Int(observability.MetricTextRects, len(out)),
		observability.Duration("duration", time.Since(start)))
	return out, nil
}

// rawTextRects reads every native text rect with its text and font
// attributes. Callers must hold c.mu.
func (c *Controller) rawTextRects(tp engine.TextPageHandle) []TextRect {
	n := c.eng.CountRects(tp, 0, -1)
	out := make([]TextRect, 0, n)
	for i := 0; i < n; i++ {
		rf, ok := c.eng.Rect(tp, i)
		if !ok {
			continue
		}
		r := rectFromF(rf)
		text := c.eng.BoundedText(tp, r.Left, r.Top, r.Right, r.Bottom)
		if text == "" {
			continue
		}
		tr := TextRect{Text: text, Rect: r}
		if idx := c.eng.CharIndexAtPos(tp, r.Left, r.Bottom,
			fontProbeTolerance, fontProbeTolerance); idx >= 0 {
			tr.FontSize = c.eng.FontSize(tp, idx)
			if name, _, ok := c.eng.FontInfo(tp, idx); ok {
				tr.FontName = stripSubsetPrefix(name)
			}
		}
		out = append(out, tr)
	}
	return out
}

// mergeTextRects joins runs the engine split on style or kerning
// boundaries but that read as one run on screen.
func mergeTextRects(raw []TextRect) []TextRect {
	var out []TextRect
	for _, r := range raw {
		if len(out) > 0 && sameRun(out[len(out)-1], r) {
			cur := &out[len(out)-1]
			cur.Text += r.Text
			cur.Rect = coords.Rect{
				Left:   math.Min(cur.Rect.Left, r.Rect.Left),
				Top:    math.Max(cur.Rect.Top, r.Rect.Top),
				Right:  math.Max(cur.Rect.Right, r.Rect.Right),
				Bottom: math.Min(cur.Rect.Bottom, r.Rect.Bottom),
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

func sameRun(a, b TextRect) bool {
	if math.Abs(a.Rect.Top-b.Rect.Top) >= a.Rect.Height() {
		return false
	}
	gap := b.Rect.Left - a.Rect.Right
	limit := mergeGapFactor * a.FontSize
	if a.FontSize == 0 {
		limit = mergeGapFactor * a.Rect.Height()
	}
	return gap < limit
}

// stripSubsetPrefix removes the six-letter subset tag ("ABCDEF+Name")
// embedders prepend to subset font names.
func stripSubsetPrefix(name string) string {
	if len(name) > 7 && name[6] == '+' {
		for i := 0; i < 6; i++ {
			if name[i] < 'A' || name[i] > 'Z' {
				return name
			}
		}
		return name[7:]
	}
	return name
}

// PlainText returns the page text as one string, lines joined in
// reading order.
func (c *Controller) PlainText(pageIndex int) (string, error) {
	rects, err := c.PageTextContent(pageIndex)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(rects))
	for i, r := range rects {
		parts[i] = r.Text
	}
	return strings.Join(parts, "\n"), nil
}
