package viewer

import (
	"reflect"
	"testing"

	"github.com/wudi/pdfview/engine/enginetest"
)

func TestOutline(t *testing.T) {
	fx := enginetest.Fixture{
		Pages: []enginetest.PageFixture{
			{Width: 200, Height: 100}, {Width: 200, Height: 100}, {Width: 200, Height: 100},
		},
		Bookmarks: []enginetest.BookmarkFixture{
			{Title: "Introduction", Page: 0},
			{Title: "Chapters", Page: 1, Children: []enginetest.BookmarkFixture{
				{Title: "Chapter 1", Page: 1},
				{Title: "Chapter 2", Page: 2},
			}},
		},
	}
	c, _ := newTestController(t, fx)
	got, err := c.Outline()
	if err != nil {
		t.Fatalf("Outline: %v", err)
	}
	want := []OutlineItem{
		{Title: "Introduction", Page: 0},
		{Title: "Chapters", Page: 1, Children: []OutlineItem{
			{Title: "Chapter 1", Page: 1},
			{Title: "Chapter 2", Page: 2},
		}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Outline = %+v, want %+v", got, want)
	}
}

func TestOutlineEmpty(t *testing.T) {
	c, _ := newTestController(t, enginetest.SinglePage(100, 100))
	got, err := c.Outline()
	if err != nil {
		t.Fatalf("Outline: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Outline = %+v, want empty", got)
	}
}

func TestMetadata(t *testing.T) {
	fx := enginetest.SinglePage(100, 100)
	fx.Meta = map[string]string{
		"Title":    "Quarterly Report",
		"Author":   "Finance",
		"Producer": "pdfview",
	}
	c, _ := newTestController(t, fx)
	got, err := c.Metadata()
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if got.Title != "Quarterly Report" || got.Author != "Finance" || got.Producer != "pdfview" {
		t.Fatalf("Metadata = %+v", got)
	}
	if got.Subject != "" {
		t.Fatalf("absent field Subject = %q, want empty", got.Subject)
	}
}
