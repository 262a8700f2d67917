package viewer

import (
	"bytes"
	"context"
	"testing"

	"github.com/wudi/pdfview/engine/enginetest"
)

// newTestController builds an initialized controller with fx loaded.
func newTestController(t *testing.T, fx enginetest.Fixture) (*Controller, *enginetest.Fake) {
	t.Helper()
	f := enginetest.New()
	c := New(f)
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := c.Load(context.Background(), bytes.NewReader(enginetest.MustJSON(t, fx))); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return c, f
}

// loadFixture loads fx into an already-initialized controller.
func loadFixture(t *testing.T, c *Controller, fx enginetest.Fixture) {
	t.Helper()
	if err := c.Load(context.Background(), bytes.NewReader(enginetest.MustJSON(t, fx))); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

// textRun is a fixture shorthand for a glyph run.
func textRun(text string, left, bottom, right, top, size float64) enginetest.TextFixture {
	return enginetest.TextFixture{
		Text: text, Left: left, Bottom: bottom, Right: right, Top: top,
		Font: "Helvetica", Size: size,
	}
}
