package viewer

import (
	"github.com/wudi/pdfview/engine"
)

// withPage runs fn against a freshly loaded page handle and closes the
// handle on every exit path. Page handles never outlive a single
// controller call. Callers must hold c.mu.
func (c *Controller) withPage(pageIndex int, fn func(p engine.PageHandle) error) error {
	if c.doc == 0 {
		return ErrNoDocument
	}
	p, err := c.eng.LoadPage(c.doc, pageIndex)
	if err != nil {
		return &NativeError{Op: "load page", Code: c.eng.LastError()}
	}
	defer c.eng.ClosePage(p)
	return fn(p)
}

// withTextPage runs fn with both the page and its text page, releasing
// both in reverse order of acquisition. Callers must hold c.mu.
func (c *Controller) withTextPage(pageIndex int, fn func(p engine.PageHandle, tp engine.TextPageHandle) error) error {
	return c.withPage(pageIndex, func(p engine.PageHandle) error {
		tp, err := c.eng.LoadTextPage(p)
		if err != nil {
			return &NativeError{Op: "load text page", Code: c.eng.LastError()}
		}
		defer c.eng.CloseTextPage(tp)
		return fn(p, tp)
	})
}
