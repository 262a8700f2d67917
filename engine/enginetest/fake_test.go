package enginetest

import (
	"testing"

	"github.com/wudi/pdfview/engine"
)

func loadDoc(t *testing.T, f *Fake, fx Fixture) engine.DocumentHandle {
	t.Helper()
	doc, err := f.LoadDocument(MustJSON(t, fx), "")
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	return doc
}

func TestLoadDocumentRejectsGarbage(t *testing.T) {
	f := New()
	if _, err := f.LoadDocument([]byte("%PDF-1.7 not json"), ""); err == nil {
		t.Fatal("garbage accepted")
	}
	if f.LastError() != engine.ErrCodeFormat {
		t.Fatalf("LastError = %d, want format error", f.LastError())
	}
}

func TestPageToDeviceCorners(t *testing.T) {
	f := New()
	doc := loadDoc(t, f, SinglePage(200, 100))
	p, err := f.LoadPage(doc, 0)
	if err != nil {
		t.Fatalf("LoadPage: %v", err)
	}
	// Page bottom-left is device bottom-left after the y flip.
	if x, y := f.PageToDevice(p, 0, 0, 400, 200, 0, 0, 0); x != 0 || y != 200 {
		t.Fatalf("origin -> (%d,%d), want (0,200)", x, y)
	}
	if x, y := f.PageToDevice(p, 0, 0, 400, 200, 0, 200, 100); x != 400 || y != 0 {
		t.Fatalf("top-right -> (%d,%d), want (400,0)", x, y)
	}
	// One quarter turn clockwise: the device extent swaps to 200x400,
	// the page's left edge becomes the device's top edge.
	if x, y := f.PageToDevice(p, 0, 0, 200, 400, 1, 0, 0); x != 0 || y != 0 {
		t.Fatalf("rotated origin -> (%d,%d), want (0,0)", x, y)
	}
	if x, y := f.PageToDevice(p, 0, 0, 200, 400, 1, 200, 0); x != 0 || y != 400 {
		t.Fatalf("rotated bottom-right -> (%d,%d), want (0,400)", x, y)
	}
	px, py := f.DeviceToPage(p, 0, 0, 200, 400, 1, 0, 400)
	if px != 200 || py != 0 {
		t.Fatalf("rotated inverse -> (%g,%g), want (200,0)", px, py)
	}
}

func TestCountRectsSlicesRuns(t *testing.T) {
	f := New()
	doc := loadDoc(t, f, Fixture{Pages: []PageFixture{{
		Width: 200, Height: 100,
		Texts: []TextFixture{
			{Text: "0123456789", Left: 0, Bottom: 80, Right: 100, Top: 92},
		},
	}}})
	p, _ := f.LoadPage(doc, 0)
	tp, err := f.LoadTextPage(p)
	if err != nil {
		t.Fatalf("LoadTextPage: %v", err)
	}
	if n := f.CountRects(tp, 2, 3); n != 1 {
		t.Fatalf("CountRects = %d, want 1", n)
	}
	r, ok := f.Rect(tp, 0)
	if !ok {
		t.Fatal("Rect missing")
	}
	// Chars 2..5 of a 10-char run spanning 100pt: 20..50.
	if r.Left != 20 || r.Right != 50 {
		t.Fatalf("slice = %g..%g, want 20..50", r.Left, r.Right)
	}
}

func TestSaveReloadPreservesState(t *testing.T) {
	f := New()
	doc := loadDoc(t, f, Fixture{
		Pages: []PageFixture{{Width: 200, Height: 100}},
		Meta:  map[string]string{"Title": "t"},
	})
	buf, size, err := f.SaveToMemory(doc, engine.SaveNoIncremental, 0)
	if err != nil {
		t.Fatalf("SaveToMemory: %v", err)
	}
	data := f.SaveBufferBytes(buf, size)
	f.FreeSaveBuffer(buf)
	doc2, err := f.LoadDocument(data, "")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if f.MetaText(doc2, "Title") != "t" {
		t.Fatal("metadata lost in round trip")
	}
}

func TestProgressiveRenderHonorsCancelFlag(t *testing.T) {
	f := New()
	f.ContinueSteps = 3
	doc := loadDoc(t, f, SinglePage(100, 100))
	p, _ := f.LoadPage(doc, 0)
	bm, _ := f.CreateBitmap(100, 100, true)
	if st := f.StartProgressiveRender(bm, p, 0, 0, 100, 100, 0, 0); st != engine.RenderToBeContinued {
		t.Fatalf("start status = %d", st)
	}
	f.SetRenderCancelFlag(true)
	if st := f.ContinueRender(p); st != engine.RenderToBeContinued {
		t.Fatalf("cancelled continue status = %d, want no progress", st)
	}
	f.SetRenderCancelFlag(false)
	st := f.ContinueRender(p)
	for st == engine.RenderToBeContinued {
		st = f.ContinueRender(p)
	}
	if st != engine.RenderDone {
		t.Fatalf("final status = %d, want done", st)
	}
}
