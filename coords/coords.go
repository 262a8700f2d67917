// Package coords provides the pure geometry shared by the viewer:
// page-space and device-space value types and the affine matrix used to
// position flattened text objects. Page↔device point mapping itself is
// NOT done here — the engine's own matrix calls are authoritative for
// that, or overlay rounding drifts from the rasterizer's pixels.
package coords

import (
	"errors"
	"math"
)

// Matrix is a row-major affine transform [a b c d e f].
type Matrix [6]float64

// Identity returns the identity transform.
func Identity() Matrix { return Matrix{1, 0, 0, 1, 0, 0} }

// Translate returns a translation transform.
func Translate(tx, ty float64) Matrix { return Matrix{1, 0, 0, 1, tx, ty} }

// Scale returns a scaling transform.
func Scale(sx, sy float64) Matrix { return Matrix{sx, 0, 0, sy, 0, 0} }

// Rotate returns a rotation transform for angle in radians.
func Rotate(angle float64) Matrix {
	c := math.Cos(angle)
	s := math.Sin(angle)
	return Matrix{c, s, -s, c, 0, 0}
}

// Multiply composes m with o (m applied first).
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		m[0]*o[0] + m[1]*o[2],
		m[0]*o[1] + m[1]*o[3],
		m[2]*o[0] + m[3]*o[2],
		m[2]*o[1] + m[3]*o[3],
		m[4]*o[0] + m[5]*o[2] + o[4],
		m[4]*o[1] + m[5]*o[3] + o[5],
	}
}

// Transform applies m to a point.
func (m Matrix) Transform(p Point) Point {
	return Point{X: m[0]*p.X + m[2]*p.Y + m[4], Y: m[1]*p.X + m[3]*p.Y + m[5]}
}

// Inverse returns the inverse transform, or an error for a singular matrix.
func (m Matrix) Inverse() (Matrix, error) {
	det := m[0]*m[3] - m[1]*m[2]
	if math.Abs(det) < 1e-10 {
		return Matrix{}, errors.New("matrix singular")
	}
	return Matrix{
		m[3] / det, -m[1] / det,
		-m[2] / det, m[0] / det,
		(m[2]*m[5] - m[3]*m[4]) / det,
		(m[1]*m[4] - m[0]*m[5]) / det,
	}, nil
}

// Point is a 2D point. The space (page points or device pixels) is
// determined by context and never mixed within one value.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. In page space Bottom < Top
// (origin bottom-left); in device space Top < Bottom (origin top-left).
type Rect struct {
	Left, Top, Right, Bottom float64
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return math.Abs(r.Right - r.Left) }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return math.Abs(r.Bottom - r.Top) }

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool { return r.Width() == 0 || r.Height() == 0 }

// Union returns the smallest rect containing r and o, assuming both use
// device orientation (Top < Bottom).
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Left:   math.Min(r.Left, o.Left),
		Top:    math.Min(r.Top, o.Top),
		Right:  math.Max(r.Right, o.Right),
		Bottom: math.Max(r.Bottom, o.Bottom),
	}
}

// Quad is a four-corner polygon in TL, TR, BR, BL order.
type Quad [4]Point

// Bounds returns the quad's axis-aligned bounding rect in device
// orientation.
func (q Quad) Bounds() Rect {
	r := Rect{Left: q[0].X, Top: q[0].Y, Right: q[0].X, Bottom: q[0].Y}
	for _, p := range q[1:] {
		r.Left = math.Min(r.Left, p.X)
		r.Top = math.Min(r.Top, p.Y)
		r.Right = math.Max(r.Right, p.X)
		r.Bottom = math.Max(r.Bottom, p.Y)
	}
	return r
}

// DeviceExtent converts page dimensions to device pixel dimensions at
// the given scale. The scale is applied before rounding; rounding the
// page dimension first accumulates misalignment between the raster and
// any overlay drawn on top of it.
func DeviceExtent(pageWidth, pageHeight, scale float64) (int, int) {
	return int(math.Round(pageWidth * scale)), int(math.Round(pageHeight * scale))
}
