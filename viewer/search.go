package viewer

import (
	"context"
	"strings"
	"time"

	"github.com/wudi/pdfview/coords"
	"github.com/wudi/pdfview/engine"
	"github.com/wudi/pdfview/observability"
)

// SearchOption adjusts a search.
type SearchOption func(*searchConfig)

type searchConfig struct {
	matchCase bool
	wholeWord bool
}

// MatchCase makes the search case sensitive.
func MatchCase() SearchOption {
	return func(sc *searchConfig) { sc.matchCase = true }
}

// WholeWord restricts matches to whole words.
func WholeWord() SearchOption {
	return func(sc *searchConfig) { sc.wholeWord = true }
}

const (
	findMatchCase = 0x1
	findWholeWord = 0x2
)

// SearchHit is one match: the text as it appears on the page, located
// by character range and by its device rects at the search's scale,
// ready to draw as highlight overlays.
type SearchHit struct {
	Page      int
	Text      string
	CharIndex int
	CharCount int
	Rects     []coords.Rect
}

// Search finds every occurrence of text in the document, in page order
// and first-found order within a page. An empty or whitespace-only
// query returns no hits without opening a single native cursor. Each
// page's cursor and text page are closed before the next page opens.
func (c *Controller) Search(ctx context.Context, text string, scale float64, opts ...SearchOption) (hits []SearchHit, err error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	ctx, span := c.tracer.StartSpan(ctx, "viewer.search")
	defer func() {
		if err != nil {
			span.SetError(err)
		}
		span.Finish()
	}()
	var sc searchConfig
	for _, opt := range opts {
		opt(&sc)
	}
	var flags uint32
	if sc.matchCase {
		flags |= findMatchCase
	}
	if sc.wholeWord {
		flags |= findWholeWord
	}
	start := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc == 0 {
		return nil, ErrNoDocument
	}
	for page := 0; page < c.pageCount; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		err := c.withTextPage(page, func(p engine.PageHandle, tp engine.TextPageHandle) error {
			pageHits, err := c.searchPage(p, tp, page, text, flags, scale)
			if err != nil {
				return err
			}
			hits = append(hits, pageHits...)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	span.SetTag("matches", len(hits))
	c.log.Debug("search finished",
		observability.Int(observability.MetricSearchHits, len(hits)),
		observability.Duration(observability.MetricSearchTime, time.Since(start)))
	return hits, nil
}

// searchPage walks one page's cursor. Callers must hold c.mu.
func (c *Controller) searchPage(p engine.PageHandle, tp engine.TextPageHandle, page int, text string, flags uint32, scale float64) ([]SearchHit, error) {
	cursor, err := c.eng.FindStart(tp, text, flags, 0)
	if err != nil {
		return nil, &NativeError{Op: "open search", Code: c.eng.LastError()}
	}
	defer c.eng.FindClose(cursor)

	var hits []SearchHit
	for c.eng.FindNext(cursor) {
		hit := SearchHit{
			Page:      page,
			CharIndex: c.eng.ResultIndex(cursor),
			CharCount: c.eng.ResultCount(cursor),
		}
		// The hit's own text comes off the page, so a case-folded match
		// reports the casing the reader actually sees.
		var matched strings.Builder
		n := c.eng.CountRects(tp, hit.CharIndex, hit.CharCount)
		for i := 0; i < n; i++ {
			rf, ok := c.eng.Rect(tp, i)
			if !ok {
				continue
			}
			pr := rectFromF(rf)
			matched.WriteString(c.eng.BoundedText(tp, pr.Left, pr.Top, pr.Right, pr.Bottom))
			hit.Rects = append(hit.Rects, c.pageRectToDevice(p, pr, scale, 0))
		}
		hit.Text = matched.String()
		hits = append(hits, hit)
	}
	return hits, nil
}
