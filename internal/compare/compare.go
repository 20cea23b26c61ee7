// Package compare scores drawn strokes against a reference path.
package compare

import (
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/geom"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/pattern"
)

const (
	// DefaultTolerance is half the reference line width of 3px.
	DefaultTolerance = 1.5
	// DefaultThreshold is the accuracy a stroke must exceed to count as traced.
	DefaultThreshold = 0.9
)

// AccuracyResult is the share of a stroke's samples that hit the path.
type AccuracyResult struct {
	Matched  int
	Total    int
	Accuracy float64
}

// Success reports whether the accuracy is strictly above threshold.
func (r AccuracyResult) Success(threshold float64) bool {
	return r.Total > 0 && r.Accuracy > threshold
}

// Comparator hit-tests points against the stroked outline of a path.
type Comparator struct {
	lines     [][]geom.Point
	tolerance float64
	threshold float64
}

// Option configures a Comparator.
type Option func(*Comparator)

// WithThreshold overrides DefaultThreshold.
func WithThreshold(t float64) Option {
	return func(c *Comparator) { c.threshold = t }
}

// New returns a comparator for path. A non-positive tolerance uses
// DefaultTolerance.
func New(path pattern.ReferencePath, tolerance float64, opts ...Option) *Comparator {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	c := &Comparator{
		lines:     path.Lines(),
		tolerance: tolerance,
		threshold: DefaultThreshold,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Tolerance returns the hit distance in canvas pixels.
func (c *Comparator) Tolerance() float64 { return c.tolerance }

// Threshold returns the success threshold.
func (c *Comparator) Threshold() float64 { return c.threshold }

// IsOnPath reports whether p lies within tolerance of any path segment.
// An empty path never matches.
func (c *Comparator) IsOnPath(p geom.Point) bool {
	for _, line := range c.lines {
		if len(line) == 1 {
			if p.Distance(line[0]) <= c.tolerance {
				return true
			}
			continue
		}
		for i := 1; i < len(line); i++ {
			if geom.SegmentDistance(p, line[i-1], line[i]) <= c.tolerance {
				return true
			}
		}
	}
	return false
}

// ScoreStroke returns the fraction of stroke samples on the path.
func (c *Comparator) ScoreStroke(s *geom.Stroke) AccuracyResult {
	pts := s.Points()
	r := AccuracyResult{Total: len(pts)}
	if r.Total == 0 {
		return r
	}
	for _, p := range pts {
		if c.IsOnPath(p) {
			r.Matched++
		}
	}
	r.Accuracy = float64(r.Matched) / float64(r.Total)
	return r
}

// Classify applies the comparator's threshold to r.
func (c *Comparator) Classify(r AccuracyResult) bool {
	return r.Success(c.threshold)
}
