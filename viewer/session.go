package viewer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/wudi/pdfview/observability"
)

// Load reads a complete document from r and makes it the current
// document. Loads are ordered by a monotonic sequence: a Load overtaken
// by a newer Load (or by Destroy) before its commit point releases
// everything it allocated and returns ErrSuperseded without touching
// controller state. The previous document is closed before the new one
// is committed.
func (c *Controller) Load(ctx context.Context, r io.Reader) (err error) {
	if !c.initialized() {
		return ErrNotInitialized
	}
	ctx, span := c.tracer.StartSpan(ctx, "viewer.load")
	defer func() {
		if err != nil {
			span.SetError(err)
		}
		span.Finish()
	}()
	ticket := c.loadSeq.Add(1)
	start := time.Now()

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("viewer: read document: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if ticket != c.loadSeq.Load() {
		return ErrSuperseded
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return ErrSuperseded
	}
	doc, err := c.eng.LoadDocument(data, "")
	if err != nil {
		return &NativeError{Op: "load document", Code: c.eng.LastError()}
	}
	// Commit point: a newer ticket means this document must not become
	// current. Close what we opened and walk away.
	if ticket != c.loadSeq.Load() {
		c.eng.CloseDocument(doc)
		return ErrSuperseded
	}
	if c.doc != 0 {
		c.eng.CloseDocument(c.doc)
	}
	c.doc = doc
	c.pageCount = c.eng.PageCount(doc)
	c.log.Info("document loaded",
		observability.Int("pages", c.pageCount),
		observability.Int("bytes", len(data)),
		observability.Duration(observability.MetricLoadTime, time.Since(start)))
	return nil
}

// CloseDocument releases the current document, if any. In-flight Loads
// are not invalidated; use Destroy for full teardown.
func (c *Controller) CloseDocument() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc != 0 {
		c.eng.CloseDocument(c.doc)
		c.doc = 0
		c.pageCount = 0
	}
}

// Destroy tears the controller down: in-flight Loads are invalidated,
// the current document is released, and the engine library is shut
// down. The controller cannot be used afterwards.
func (c *Controller) Destroy() {
	// Bump the sequence so any Load past its read phase misses its
	// commit check.
	c.loadSeq.Add(1)

	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	c.destroyed = true
	if c.doc != 0 {
		c.eng.CloseDocument(c.doc)
		c.doc = 0
		c.pageCount = 0
	}
	c.mu.Unlock()

	c.initMu.Lock()
	if c.initDone {
		c.eng.Destroy()
		c.initDone = false
	}
	c.initMu.Unlock()
	c.log.Info("controller destroyed")
}
