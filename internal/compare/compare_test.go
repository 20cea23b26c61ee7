package compare

import (
	"math"
	"testing"

	"github.com/alexxanorafa/Jornada-Arquetipica/internal/geom"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/pattern"
)

func horizontal() pattern.ReferencePath {
	return pattern.NewReferencePath("bar", [][]geom.Point{{geom.Pt(0, 0), geom.Pt(100, 0)}})
}

func TestIsOnPathTolerance(t *testing.T) {
	c := New(horizontal(), 2)
	const eps = 1e-6

	tests := []struct {
		p    geom.Point
		want bool
	}{
		{geom.Pt(50, 0), true},
		{geom.Pt(50, 2), true},
		{geom.Pt(50, -2), true},
		{geom.Pt(50, 2+eps), false},
		{geom.Pt(102, 0), true},
		{geom.Pt(102+eps, 0), false},
		{geom.Pt(-1, 1), true},
	}
	for _, tt := range tests {
		if got := c.IsOnPath(tt.p); got != tt.want {
			t.Errorf("IsOnPath(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestIsOnPathFollowsGeneratedCurve(t *testing.T) {
	rp, err := pattern.Generate(pattern.Mandala, pattern.DefaultParams())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	c := New(rp, DefaultTolerance)

	// Exact points on the outer ring of radius 120.
	for i := 0; i < 360; i += 7 {
		a := float64(i) * math.Pi / 180
		p := geom.Pt(300+120*math.Cos(a), 200+120*math.Sin(a))
		if !c.IsOnPath(p) {
			t.Fatalf("ring point at %d deg reported off path", i)
		}
	}
	// Halfway between the rings at 80 and 120, off every petal.
	a := math.Pi / 12
	p := geom.Pt(300+100*math.Cos(a), 200+100*math.Sin(a))
	if c.IsOnPath(p) {
		t.Errorf("point %v between rings should be off path", p)
	}
}

func TestEmptyPathAlwaysMisses(t *testing.T) {
	c := New(pattern.NewReferencePath("none", nil), 50)
	if c.IsOnPath(geom.Pt(0, 0)) {
		t.Error("empty path must never match")
	}
	r := c.ScoreStroke(geom.StrokeOf(geom.Pt(0, 0), geom.Pt(1, 1)))
	if r.Matched != 0 || c.Classify(r) {
		t.Errorf("empty path scored %+v", r)
	}
}

func TestSinglePointPolylineIsDot(t *testing.T) {
	c := New(pattern.NewReferencePath("dot", [][]geom.Point{{geom.Pt(10, 10)}}), 1)
	if !c.IsOnPath(geom.Pt(10.5, 10)) || c.IsOnPath(geom.Pt(12, 10)) {
		t.Error("single point polyline should behave as a dot of radius tolerance")
	}
}

func TestScoreStroke95Of100(t *testing.T) {
	c := New(horizontal(), DefaultTolerance)
	pts := make([]geom.Point, 0, 100)
	for i := 0; i < 95; i++ {
		pts = append(pts, geom.Pt(float64(i), 0.5))
	}
	for i := 0; i < 5; i++ {
		pts = append(pts, geom.Pt(float64(i), 40))
	}
	stroke := geom.StrokeOf(pts...)

	r := c.ScoreStroke(stroke)
	if r.Matched != 95 || r.Total != 100 || r.Accuracy != 0.95 {
		t.Fatalf("got %+v, want 95/100 = 0.95", r)
	}
	if !c.Classify(r) {
		t.Error("0.95 should classify as success under 0.9")
	}

	again := c.ScoreStroke(stroke)
	if again != r {
		t.Errorf("scoring is not idempotent: %+v then %+v", r, again)
	}
}

func TestThresholdIsStrict(t *testing.T) {
	r := AccuracyResult{Matched: 9, Total: 10, Accuracy: 0.9}
	if r.Success(DefaultThreshold) {
		t.Error("exactly 0.9 must not be a success")
	}
	c := New(horizontal(), 0, WithThreshold(0.5))
	if c.Tolerance() != DefaultTolerance {
		t.Errorf("tolerance = %v, want default", c.Tolerance())
	}
	if !c.Classify(r) {
		t.Error("0.9 should pass a 0.5 threshold")
	}
	if (AccuracyResult{}).Success(0) {
		t.Error("an empty result is never a success")
	}
}
