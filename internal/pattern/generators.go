package pattern

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/alexxanorafa/Jornada-Arquetipica/internal/geom"
)

// sketch collects gg sub-paths and flattens them into polylines.
type sketch struct {
	name  string
	tol   float64
	paths []*gg.Path
	cur   *gg.Path
}

func newSketch(name string, p Params) *sketch {
	tol := p.FlattenTolerance
	if tol <= 0 {
		tol = DefaultParams().FlattenTolerance
	}
	return &sketch{name: name, tol: tol}
}

func (s *sketch) moveTo(x, y float64) {
	s.cur = gg.NewPath()
	s.cur.MoveTo(x, y)
	s.paths = append(s.paths, s.cur)
}

func (s *sketch) lineTo(x, y float64) {
	if s.cur == nil {
		s.moveTo(x, y)
		return
	}
	s.cur.LineTo(x, y)
}

func (s *sketch) cubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	if s.cur == nil {
		s.moveTo(c1x, c1y)
	}
	s.cur.CubicTo(c1x, c1y, c2x, c2y, x, y)
}

// arc continues the current sub-path with a line to the arc start followed
// by a full circle, the way a 2D canvas arc() call joins the previous point.
func (s *sketch) arc(cx, cy, r float64) {
	if s.cur == nil {
		s.moveTo(cx+r, cy)
	} else {
		s.cur.LineTo(cx+r, cy)
	}
	s.cur.Arc(cx, cy, r, 0, 2*math.Pi)
}

func (s *sketch) circle(cx, cy, r float64) {
	s.moveTo(cx+r, cy)
	s.cur.Arc(cx, cy, r, 0, 2*math.Pi)
}

func (s *sketch) polygon(cx, cy, r float64, sides int, phase float64) {
	for i := 0; i <= sides; i++ {
		a := phase + float64(i)*2*math.Pi/float64(sides)
		x, y := cx+r*math.Cos(a), cy+r*math.Sin(a)
		if i == 0 {
			s.moveTo(x, y)
			continue
		}
		s.lineTo(x, y)
	}
	s.cur.Close()
}

func (s *sketch) build() ReferencePath {
	lines := make([][]geom.Point, 0, len(s.paths))
	for _, p := range s.paths {
		lines = append(lines, p.Flatten(s.tol))
	}
	return NewReferencePath(s.name, lines)
}

// chartres is a bezier sweep across the canvas joined to a ring of r=120.
func chartres(p Params) ReferencePath {
	s := newSketch(Chartres, p)
	cx, cy := p.center()
	s.moveTo(cx-150, cy-100)
	s.cubicTo(cx-50, cy-200, cx+50, cy+200, cx+150, cy-100)
	s.arc(cx, cy, 120)
	return s.build()
}

// crystal has eight spokes; even spokes end in a small ring.
func crystal(p Params) ReferencePath {
	s := newSketch(Crystal, p)
	cx, cy := p.center()
	const sides, radius = 8, 100.0
	for i := 0; i < sides; i++ {
		a := float64(i) * (360 / sides) * math.Pi / 180
		x := cx + math.Cos(a)*radius
		y := cy + math.Sin(a)*radius
		s.moveTo(cx, cy)
		s.lineTo(x, y)
		if i%2 == 0 {
			s.arc(x, y, 30)
		}
	}
	return s.build()
}

// spiral is an Archimedean spiral sampled at 500 steps of 0.1 rad.
func spiral(p Params) ReferencePath {
	s := newSketch(Spiral, p)
	cx, cy := p.center()
	r := 10.0
	for i := 0; i < 500; i++ {
		a := 0.1 * float64(i)
		x := cx + (r+a)*math.Cos(a)
		y := cy + (r+a)*math.Sin(a)
		if i == 0 {
			s.moveTo(x, y)
		} else {
			s.lineTo(x, y)
		}
		r += 0.1
	}
	return s.build()
}

// mandala is three concentric rings crossed by twelve petals.
func mandala(p Params) ReferencePath {
	s := newSketch(Mandala, p)
	cx, cy := p.center()
	for _, r := range []float64{40, 80, 120} {
		s.circle(cx, cy, r)
	}
	for i := 0; i < 12; i++ {
		a := float64(i) * math.Pi / 6
		s.moveTo(cx+40*math.Cos(a), cy+40*math.Sin(a))
		s.lineTo(cx+120*math.Cos(a), cy+120*math.Sin(a))
	}
	return s.build()
}

// hexagon is an outer and an inner regular hexagon.
func hexagon(p Params) ReferencePath {
	s := newSketch(Hexagon, p)
	cx, cy := p.center()
	s.polygon(cx, cy, 120, 6, 0)
	s.polygon(cx, cy, 60, 6, math.Pi/6)
	return s.build()
}
