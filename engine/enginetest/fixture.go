// Package enginetest provides a deterministic in-memory engine for
// viewer tests. Documents are JSON fixtures; SaveToMemory re-encodes
// the live state to the same format, so export/reload round-trips work
// against the fake exactly like against the native engine.
package enginetest

import (
	"encoding/json"
	"testing"
)

// Fixture is the serialized form of a fake document.
type Fixture struct {
	Pages     []PageFixture     `json:"pages"`
	Meta      map[string]string `json:"meta,omitempty"`
	Bookmarks []BookmarkFixture `json:"bookmarks,omitempty"`
}

// PageFixture describes one page. Width and Height are in points.
type PageFixture struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	// Texts are glyph runs; each run is one native text rect.
	Texts  []TextFixture  `json:"texts,omitempty"`
	Annots []AnnotFixture `json:"annots,omitempty"`
	// Flattened carries text page objects inserted by content editing.
	Flattened []FlattenedFixture `json:"flattened,omitempty"`
}

// TextFixture is a glyph run with its page-space bounding rect
// (origin bottom-left, Bottom < Top).
type TextFixture struct {
	Text   string  `json:"text"`
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Font   string  `json:"font,omitempty"`
	Size   float64 `json:"size,omitempty"`
}

// AnnotFixture describes one annotation in page space.
type AnnotFixture struct {
	Subtype  int              `json:"subtype"`
	Color    *ColorFixture    `json:"color,omitempty"`
	Rect     *RectFixture     `json:"rect,omitempty"`
	Border   *BorderFixture   `json:"border,omitempty"`
	Ink      [][]PointFixture `json:"ink,omitempty"`
	Quads    []QuadFixture    `json:"quads,omitempty"`
	URI      string           `json:"uri,omitempty"`
	DestPage *int             `json:"destPage,omitempty"`
}

type ColorFixture struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

type RectFixture struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

type BorderFixture struct {
	HorizontalRadius float64 `json:"hr"`
	VerticalRadius   float64 `json:"vr"`
	Width            float64 `json:"width"`
}

type PointFixture struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// QuadFixture is a four-corner attachment quad, corners in TL, TR, BL,
// BR order like the native layout.
type QuadFixture struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
	X3 float64 `json:"x3"`
	Y3 float64 `json:"y3"`
	X4 float64 `json:"x4"`
	Y4 float64 `json:"y4"`
}

// FlattenedFixture is a text page object inserted via content editing.
type FlattenedFixture struct {
	Text   string     `json:"text"`
	Font   string     `json:"font"`
	Size   float64    `json:"size"`
	Matrix [6]float64 `json:"matrix"`
}

type BookmarkFixture struct {
	Title    string            `json:"title"`
	Page     int               `json:"page"`
	Children []BookmarkFixture `json:"children,omitempty"`
}

// MustJSON marshals a fixture for feeding to Controller.Load.
func MustJSON(t *testing.T, fx Fixture) []byte {
	t.Helper()
	b, err := json.Marshal(fx)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return b
}

// SinglePage builds a one-page fixture with the given dimensions.
func SinglePage(width, height float64) Fixture {
	return Fixture{Pages: []PageFixture{{Width: width, Height: height}}}
}
