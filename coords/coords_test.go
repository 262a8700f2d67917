package coords

import (
	"math"
	"testing"
)

func TestDeviceExtentScalesBeforeRounding(t *testing.T) {
	cases := []struct {
		w, h, scale  float64
		wantW, wantH int
	}{
		{200, 100, 2, 400, 200},
		{612, 792, 1, 612, 792},
		{612.5, 792.4, 1, 613, 792},
		{100.4, 100.4, 5, 502, 502}, // round-then-scale would give 500
		{0, 0, 2, 0, 0},
	}
	for _, tc := range cases {
		gotW, gotH := DeviceExtent(tc.w, tc.h, tc.scale)
		if gotW != tc.wantW || gotH != tc.wantH {
			t.Errorf("DeviceExtent(%g, %g, %g) = %d, %d, want %d, %d",
				tc.w, tc.h, tc.scale, gotW, gotH, tc.wantW, tc.wantH)
		}
	}
}

func TestMatrixTransform(t *testing.T) {
	m := Translate(10, 20).Multiply(Scale(2, 2))
	got := m.Transform(Point{X: 1, Y: 1})
	want := Point{X: 22, Y: 42}
	if got != want {
		t.Fatalf("Transform = %v, want %v", got, want)
	}
}

func TestMatrixInverseRoundTrip(t *testing.T) {
	m := Scale(2, 3).Multiply(Rotate(math.Pi / 6)).Multiply(Translate(-7, 11))
	inv, err := m.Inverse()
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	p := Point{X: 3.5, Y: -2.25}
	back := inv.Transform(m.Transform(p))
	if math.Abs(back.X-p.X) > 1e-9 || math.Abs(back.Y-p.Y) > 1e-9 {
		t.Fatalf("round trip %v -> %v", p, back)
	}
}

func TestMatrixInverseSingular(t *testing.T) {
	if _, err := Scale(0, 1).Inverse(); err == nil {
		t.Fatal("singular matrix inverted")
	}
}

func TestRectUnion(t *testing.T) {
	a := Rect{Left: 0, Top: 0, Right: 10, Bottom: 10}
	b := Rect{Left: 5, Top: -2, Right: 20, Bottom: 8}
	got := a.Union(b)
	want := Rect{Left: 0, Top: -2, Right: 20, Bottom: 10}
	if got != want {
		t.Fatalf("Union = %+v, want %+v", got, want)
	}
}

func TestRectEmpty(t *testing.T) {
	if !(Rect{Left: 3, Top: 1, Right: 3, Bottom: 9}).Empty() {
		t.Fatal("zero-width rect not empty")
	}
	if (Rect{Left: 0, Top: 0, Right: 1, Bottom: 1}).Empty() {
		t.Fatal("unit rect reported empty")
	}
}

func TestQuadBounds(t *testing.T) {
	q := Quad{{X: 2, Y: 1}, {X: 9, Y: 0}, {X: 10, Y: 6}, {X: 1, Y: 5}}
	got := q.Bounds()
	want := Rect{Left: 1, Top: 0, Right: 10, Bottom: 6}
	if got != want {
		t.Fatalf("Bounds = %+v, want %+v", got, want)
	}
}
