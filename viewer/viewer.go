// Package viewer is the controller between an editing front end and
// the native PDF engine. It owns the engine lifecycle, the document
// session, and every native handle; callers only ever see copied value
// types (rects, pixels, annotation snapshots), never handles.
package viewer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/wudi/pdfview/engine"
	"github.com/wudi/pdfview/observability"
)

// Controller mediates all access to the engine. The engine itself is
// not reentrant, so every native call happens under mu; Go-level
// concurrency (overlapping Loads, a Search racing a Render) is safe,
// native-level parallelism is not attempted.
type Controller struct {
	eng    engine.Engine
	log    observability.Logger
	tracer observability.Tracer
	id     string

	initMu     sync.Mutex
	initDone   bool
	initFlight *initFlight

	// loadSeq orders Loads; a Load whose ticket no longer matches the
	// counter at commit time discards itself.
	loadSeq atomic.Uint64

	mu        sync.Mutex
	doc       engine.DocumentHandle
	pageCount int
	destroyed bool
}

type initFlight struct {
	done chan struct{}
	err  error
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger routes controller logs to l.
func WithLogger(l observability.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithTracer attaches a tracer to controller operations.
func WithTracer(t observability.Tracer) Option {
	return func(c *Controller) { c.tracer = t }
}

// New returns a Controller over eng. The engine library is not
// initialized until Initialize.
func New(eng engine.Engine, opts ...Option) *Controller {
	c := &Controller{
		eng:    eng,
		log:    observability.NopLogger{},
		tracer: observability.NopTracer(),
		id:     uuid.NewString(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(observability.String("controller", c.id))
	return c
}

// Initialize brings up the engine library. Concurrent callers share a
// single native init: the first caller runs it, the rest wait for its
// outcome. A failed init propagates the error to every waiter and
// leaves the controller uninitialized, so a later call retries.
func (c *Controller) Initialize(ctx context.Context) error {
	c.initMu.Lock()
	if c.initDone {
		c.initMu.Unlock()
		return nil
	}
	if fl := c.initFlight; fl != nil {
		c.initMu.Unlock()
		select {
		case <-fl.done:
			return fl.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	fl := &initFlight{done: make(chan struct{})}
	c.initFlight = fl
	c.initMu.Unlock()

	start := time.Now()
	err := c.eng.Init()

	c.initMu.Lock()
	c.initDone = err == nil
	c.initFlight = nil
	fl.err = err
	close(fl.done)
	c.initMu.Unlock()

	if err != nil {
		c.log.Error("engine init failed", observability.Error("err", err))
		return err
	}
	c.log.Info("engine initialized",
		observability.Duration(observability.MetricInitTime, time.Since(start)))
	return nil
}

func (c *Controller) initialized() bool {
	c.initMu.Lock()
	defer c.initMu.Unlock()
	return c.initDone
}

// PageCount reports the page count of the current document.
func (c *Controller) PageCount() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc == 0 {
		return 0, ErrNoDocument
	}
	return c.pageCount, nil
}

// PageSize reports the page dimensions in points.
func (c *Controller) PageSize(pageIndex int) (width, height float64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.withPage(pageIndex, func(p engine.PageHandle) error {
		width = c.eng.PageWidth(p)
		height = c.eng.PageHeight(p)
		return nil
	})
	return width, height, err
}
