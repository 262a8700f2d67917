package viewer

import (
	"testing"

	"github.com/wudi/pdfview/engine/enginetest"
)

func TestPageTextContentMergesAdjacentRuns(t *testing.T) {
	// Two runs on one baseline, 2pt apart with a 12pt font: the gap is
	// under half the font size, so they read as one run.
	fx := enginetest.Fixture{Pages: []enginetest.PageFixture{{
		Width: 200, Height: 100,
		Texts: []enginetest.TextFixture{
			textRun("Hel", 10, 80, 30, 92, 12),
			textRun("lo", 32, 80, 44, 92, 12),
			// 20pt away: a separate run.
			textRun("world", 64, 80, 100, 92, 12),
		},
	}}}
	c, _ := newTestController(t, fx)
	got, err := c.PageTextContent(0)
	if err != nil {
		t.Fatalf("PageTextContent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rects, want 2: %+v", len(got), got)
	}
	if got[0].Text != "Hello" {
		t.Fatalf("merged text = %q, want Hello", got[0].Text)
	}
	if got[0].Rect.Left != 10 || got[0].Rect.Right != 44 {
		t.Fatalf("merged rect = %+v, want left 10 right 44", got[0].Rect)
	}
	if got[1].Text != "world" {
		t.Fatalf("second rect = %q, want world", got[1].Text)
	}
}

func TestPageTextContentKeepsSeparateLines(t *testing.T) {
	// Same horizontal band but one line below: tops differ by a full
	// line height, so no merge even though the gap rule would pass.
	fx := enginetest.Fixture{Pages: []enginetest.PageFixture{{
		Width: 200, Height: 100,
		Texts: []enginetest.TextFixture{
			textRun("first", 10, 80, 50, 92, 12),
			textRun("second", 10, 66, 58, 78, 12),
		},
	}}}
	c, _ := newTestController(t, fx)
	got, err := c.PageTextContent(0)
	if err != nil {
		t.Fatalf("PageTextContent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rects, want 2", len(got))
	}
}

func TestPageTextContentFontAttributes(t *testing.T) {
	fx := enginetest.Fixture{Pages: []enginetest.PageFixture{{
		Width: 200, Height: 100,
		Texts: []enginetest.TextFixture{{
			Text: "subset", Left: 10, Bottom: 80, Right: 60, Top: 92,
			Font: "BCDEFG+Times-Roman", Size: 11,
		}},
	}}}
	c, _ := newTestController(t, fx)
	got, err := c.PageTextContent(0)
	if err != nil {
		t.Fatalf("PageTextContent: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d rects, want 1", len(got))
	}
	if got[0].FontName != "Times-Roman" {
		t.Fatalf("FontName = %q, want subset prefix stripped", got[0].FontName)
	}
	if got[0].FontSize != 11 {
		t.Fatalf("FontSize = %g, want 11", got[0].FontSize)
	}
}

func TestStripSubsetPrefix(t *testing.T) {
	cases := []struct{ in, want string }{
		{"ABCDEF+Arial", "Arial"},
		{"Arial", "Arial"},
		{"ABC+Arial", "ABC+Arial"},       // tag must be six letters
		{"AbCDEF+Arial", "AbCDEF+Arial"}, // and uppercase
		{"ABCDEF+", "ABCDEF+"},
	}
	for _, tc := range cases {
		if got := stripSubsetPrefix(tc.in); got != tc.want {
			t.Errorf("stripSubsetPrefix(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTextHandlesAlwaysReleased(t *testing.T) {
	fx := enginetest.Fixture{Pages: []enginetest.PageFixture{{
		Width: 200, Height: 100,
		Texts: []enginetest.TextFixture{textRun("x", 10, 80, 20, 92, 12)},
	}}}
	c, f := newTestController(t, fx)
	for i := 0; i < 3; i++ {
		if _, err := c.PageTextContent(0); err != nil {
			t.Fatalf("PageTextContent #%d: %v", i, err)
		}
	}
	if f.TextPageOpens != f.TextPageCloses {
		t.Fatalf("text page opens %d != closes %d", f.TextPageOpens, f.TextPageCloses)
	}
	if f.PageOpens != f.PageCloses {
		t.Fatalf("page opens %d != closes %d", f.PageOpens, f.PageCloses)
	}
}
