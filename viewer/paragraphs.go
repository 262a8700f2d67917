package viewer

import (
	"math"
	"sort"
	"strings"

	"github.com/wudi/pdfview/coords"
)

// Layout heuristics for grouping merged text rects into lines and
// paragraphs. All factors are relative to the current line height so
// the grouping is independent of page scale and font size.
const (
	// lineCenterSlack: rects whose vertical centers differ by less
	// than this fraction of the line height share a line.
	lineCenterSlack = 0.35
	// columnOverlapMax: two rects at the same height whose horizontal
	// extents overlap by more than this fraction of the narrower rect
	// cannot be one line; they are stacked columns.
	columnOverlapMax = 0.5
	// columnGapFactor: a horizontal gap wider than this many line
	// heights separates columns, not words.
	columnGapFactor = 1.5
	// paragraphPitchMax: consecutive lines whose vertical pitch
	// exceeds this multiple of the line height start a new paragraph.
	paragraphPitchMax = 1.15
	// fontSizeBreakRatio: a font-size change beyond this fraction of
	// the previous line's size breaks the paragraph.
	fontSizeBreakRatio = 0.5
	// indentBreakFactor: a left-edge shift beyond this many line
	// heights breaks the paragraph.
	indentBreakFactor = 2.0
)

// Line is one visual line of text in page space. FontName and FontSize
// come from the line's first run.
type Line struct {
	Text     string
	Rect     coords.Rect
	FontName string
	FontSize float64
	Rects    []TextRect
}

// Paragraph is a block of consecutive lines with uniform pitch.
type Paragraph struct {
	Text  string
	Rect  coords.Rect
	Lines []Line
}

// Paragraphs reconstructs the page's paragraph structure from its
// merged text rects. Used by the edit surface to offer block-level
// selection.
func (c *Controller) Paragraphs(pageIndex int) ([]Paragraph, error) {
	rects, err := c.PageTextContent(pageIndex)
	if err != nil {
		return nil, err
	}
	return groupParagraphs(groupLines(rects)), nil
}

// groupLines clusters rects into visual lines: top-to-bottom, then
// left-to-right within a line.
func groupLines(rects []TextRect) []Line {
	if len(rects) == 0 {
		return nil
	}
	sorted := make([]TextRect, len(rects))
	copy(sorted, rects)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Rect.Top != sorted[j].Rect.Top {
			return sorted[i].Rect.Top > sorted[j].Rect.Top
		}
		return sorted[i].Rect.Left < sorted[j].Rect.Left
	})

	var lines []Line
	for _, r := range sorted {
		if len(lines) > 0 && fitsLine(&lines[len(lines)-1], r) {
			appendToLine(&lines[len(lines)-1], r)
			continue
		}
		lines = append(lines, Line{
			Text:     r.Text,
			Rect:     r.Rect,
			FontName: r.FontName,
			FontSize: r.FontSize,
			Rects:    []TextRect{r},
		})
	}
	return lines
}

func fitsLine(l *Line, r TextRect) bool {
	h := l.Rect.Height()
	if h == 0 {
		return false
	}
	lineCenter := (l.Rect.Top + l.Rect.Bottom) / 2
	rectCenter := (r.Rect.Top + r.Rect.Bottom) / 2
	if math.Abs(lineCenter-rectCenter) > lineCenterSlack*h {
		return false
	}
	// Heavy horizontal overlap at the same height means overlapping
	// columns or a rotated run; keep them apart.
	overlap := math.Min(l.Rect.Right, r.Rect.Right) - math.Max(l.Rect.Left, r.Rect.Left)
	if overlap > columnOverlapMax*math.Min(l.Rect.Width(), r.Rect.Width()) {
		return false
	}
	if r.Rect.Left-l.Rect.Right > columnGapFactor*h {
		return false
	}
	return true
}

func appendToLine(l *Line, r TextRect) {
	if r.Rect.Left > l.Rect.Right {
		l.Text += " "
	}
	l.Text += r.Text
	l.Rect = coords.Rect{
		Left:   math.Min(l.Rect.Left, r.Rect.Left),
		Top:    math.Max(l.Rect.Top, r.Rect.Top),
		Right:  math.Max(l.Rect.Right, r.Rect.Right),
		Bottom: math.Min(l.Rect.Bottom, r.Rect.Bottom),
	}
	l.Rects = append(l.Rects, r)
}

// groupParagraphs joins consecutive lines into paragraphs while the
// pitch stays regular, the font size stays stable, and the left edge
// does not jump.
func groupParagraphs(lines []Line) []Paragraph {
	if len(lines) == 0 {
		return nil
	}
	var out []Paragraph
	cur := Paragraph{Text: lines[0].Text, Rect: lines[0].Rect, Lines: lines[0:1:1]}
	for i := 1; i < len(lines); i++ {
		prev := cur.Lines[len(cur.Lines)-1]
		if sameParagraph(prev, lines[i]) {
			cur.Text += "\n" + lines[i].Text
			cur.Rect = coords.Rect{
				Left:   math.Min(cur.Rect.Left, lines[i].Rect.Left),
				Top:    math.Max(cur.Rect.Top, lines[i].Rect.Top),
				Right:  math.Max(cur.Rect.Right, lines[i].Rect.Right),
				Bottom: math.Min(cur.Rect.Bottom, lines[i].Rect.Bottom),
			}
			cur.Lines = append(cur.Lines, lines[i])
			continue
		}
		out = append(out, cur)
		cur = Paragraph{Text: lines[i].Text, Rect: lines[i].Rect, Lines: lines[i : i+1 : i+1]}
	}
	return append(out, cur)
}

func sameParagraph(prev, next Line) bool {
	h := prev.Rect.Height()
	if h == 0 {
		return false
	}
	pitch := prev.Rect.Bottom - next.Rect.Bottom
	if pitch <= 0 || pitch > paragraphPitchMax*h {
		return false
	}
	if prev.FontSize > 0 &&
		math.Abs(next.FontSize-prev.FontSize) > fontSizeBreakRatio*prev.FontSize {
		return false
	}
	// A family change breaks the block even at identical size.
	if prev.FontName != "" && next.FontName != "" && prev.FontName != next.FontName {
		return false
	}
	if math.Abs(next.Rect.Left-prev.Rect.Left) > indentBreakFactor*h {
		return false
	}
	return true
}

// ParagraphText returns the page's paragraphs as blank-line separated
// blocks, the shape editors expect when pulling a page into a text box.
func (c *Controller) ParagraphText(pageIndex int) (string, error) {
	paras, err := c.Paragraphs(pageIndex)
	if err != nil {
		return "", err
	}
	blocks := make([]string, len(paras))
	for i, p := range paras {
		blocks[i] = p.Text
	}
	return strings.Join(blocks, "\n\n"), nil
}
