// Package geom holds the canvas-space primitives shared by the evaluator:
// points, rectangles and captured strokes.
package geom

import (
	"math"

	"github.com/gogpu/gg"
)

// Point is a canvas-local coordinate. It shares gg's vector math.
type Point = gg.Point

// Pt is shorthand for a Point literal.
func Pt(x, y float64) Point {
	return gg.Pt(x, y)
}

// Rect is an axis-aligned rectangle in viewport units.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Pt(r.X+r.Width/2, r.Y+r.Height/2)
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// SegmentDistance returns the Euclidean distance from p to the segment ab.
// A degenerate segment is treated as the point a.
func SegmentDistance(p, a, b Point) float64 {
	ab := b.Sub(a)
	lenSq := ab.LengthSquared()
	if lenSq == 0 {
		return p.Distance(a)
	}
	t := p.Sub(a).Dot(ab) / lenSq
	t = math.Max(0, math.Min(1, t))
	return p.Distance(a.Lerp(b, t))
}

// Stroke is one continuous user-drawn path, press to release.
// Points may only be appended until Finalize is called.
type Stroke struct {
	points []Point
	final  bool
}

// NewStroke starts a stroke at the press point.
func NewStroke(start Point) *Stroke {
	return &Stroke{points: []Point{start}}
}

// StrokeOf builds an already finalized stroke, mostly for replay and tests.
func StrokeOf(points ...Point) *Stroke {
	s := &Stroke{points: append([]Point(nil), points...)}
	s.final = true
	return s
}

// Append adds a sample. It returns false once the stroke is finalized.
func (s *Stroke) Append(p Point) bool {
	if s.final {
		return false
	}
	s.points = append(s.points, p)
	return true
}

// Finalize freezes the stroke.
func (s *Stroke) Finalize() {
	s.final = true
}

// Finalized reports whether the stroke is read-only.
func (s *Stroke) Finalized() bool {
	return s.final
}

// Len returns the number of samples.
func (s *Stroke) Len() int {
	if s == nil {
		return 0
	}
	return len(s.points)
}

// Points returns a copy of the samples.
func (s *Stroke) Points() []Point {
	if s == nil {
		return nil
	}
	return append([]Point(nil), s.points...)
}

// Last returns the most recent sample.
func (s *Stroke) Last() (Point, bool) {
	if s.Len() == 0 {
		return Point{}, false
	}
	return s.points[len(s.points)-1], true
}
