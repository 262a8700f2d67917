package viewer

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/wudi/pdfview/engine/enginetest"
	"github.com/wudi/pdfview/observability"
)

type recordedSpan struct {
	name     string
	err      error
	finished bool
}

func (s *recordedSpan) SetTag(string, interface{}) {}
func (s *recordedSpan) SetError(err error)         { s.err = err }
func (s *recordedSpan) Finish()                    { s.finished = true }

type recordingTracer struct {
	mu    sync.Mutex
	spans []*recordedSpan
}

func (rt *recordingTracer) StartSpan(ctx context.Context, name string) (context.Context, observability.Span) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	s := &recordedSpan{name: name}
	rt.spans = append(rt.spans, s)
	return ctx, s
}

func (rt *recordingTracer) byName(name string) *recordedSpan {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	for _, s := range rt.spans {
		if s.name == name {
			return s
		}
	}
	return nil
}

func TestTracerSpansCoverOperations(t *testing.T) {
	rt := &recordingTracer{}
	f := enginetest.New()
	c := New(f, WithTracer(rt))
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	fx := enginetest.Fixture{Pages: []enginetest.PageFixture{{
		Width: 200, Height: 100,
		Texts: []enginetest.TextFixture{textRun("needle", 10, 80, 60, 92, 12)},
	}}}
	if err := c.Load(context.Background(), bytes.NewReader(enginetest.MustJSON(t, fx))); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := c.RenderPage(context.Background(), 0, 1, 1); err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if _, err := c.Search(context.Background(), "needle", 1); err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, name := range []string{"viewer.load", "viewer.render", "viewer.search"} {
		s := rt.byName(name)
		if s == nil {
			t.Fatalf("no span %q recorded", name)
		}
		if !s.finished {
			t.Fatalf("span %q never finished", name)
		}
		if s.err != nil {
			t.Fatalf("span %q carries error %v", name, s.err)
		}
	}
}

func TestTracerSpanRecordsLoadFailure(t *testing.T) {
	rt := &recordingTracer{}
	f := enginetest.New()
	f.FailLoadCode = 3
	c := New(f, WithTracer(rt))
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := c.Load(context.Background(), bytes.NewReader([]byte("x"))); err == nil {
		t.Fatal("Load of rejected document succeeded")
	}
	s := rt.byName("viewer.load")
	if s == nil || !s.finished || s.err == nil {
		t.Fatalf("load span = %+v, want finished with error", s)
	}
}
