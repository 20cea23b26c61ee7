// Package pattern generates the labyrinth reference paths a player traces.
package pattern

import (
	"errors"
	"fmt"
	"sort"

	"github.com/alexxanorafa/Jornada-Arquetipica/internal/geom"
)

var ErrUnknownPattern = errors.New("pattern: unknown pattern")

// Built-in pattern names.
const (
	Chartres = "chartres"
	Crystal  = "crystal"
	Spiral   = "spiral"
	Mandala  = "mandala"
	Hexagon  = "hexagon"
)

// Params sizes the canvas a pattern is generated for.
type Params struct {
	Width            float64
	Height           float64
	FlattenTolerance float64
}

// DefaultParams matches the 600x400 labyrinth canvas.
func DefaultParams() Params {
	return Params{Width: 600, Height: 400, FlattenTolerance: 0.05}
}

func (p Params) center() (float64, float64) {
	return p.Width / 2, p.Height / 2
}

// ReferencePath is the sampled geometry of one pattern: a list of
// polylines, one per sub-path. It is never modified after creation.
type ReferencePath struct {
	name  string
	lines [][]geom.Point
}

// NewReferencePath copies lines into a new path. Empty polylines are dropped.
func NewReferencePath(name string, lines [][]geom.Point) ReferencePath {
	rp := ReferencePath{name: name}
	for _, l := range lines {
		if len(l) == 0 {
			continue
		}
		rp.lines = append(rp.lines, append([]geom.Point(nil), l...))
	}
	return rp
}

// Name returns the pattern name.
func (rp ReferencePath) Name() string { return rp.name }

// Empty reports whether there is nothing to hit-test against.
func (rp ReferencePath) Empty() bool { return len(rp.lines) == 0 }

// Lines returns a copy of the polylines.
func (rp ReferencePath) Lines() [][]geom.Point {
	out := make([][]geom.Point, len(rp.lines))
	for i, l := range rp.lines {
		out[i] = append([]geom.Point(nil), l...)
	}
	return out
}

// PointCount returns the number of sampled points across all polylines.
func (rp ReferencePath) PointCount() int {
	n := 0
	for _, l := range rp.lines {
		n += len(l)
	}
	return n
}

// Generator builds a ReferencePath for the given canvas. Generators are pure.
type Generator func(Params) ReferencePath

// Generate runs the built-in generator called name.
func Generate(name string, p Params) (ReferencePath, error) {
	g, ok := builtins()[name]
	if !ok {
		return ReferencePath{}, fmt.Errorf("%w: %q", ErrUnknownPattern, name)
	}
	return g(p), nil
}

func builtins() map[string]Generator {
	return map[string]Generator{
		Chartres: chartres,
		Crystal:  crystal,
		Spiral:   spiral,
		Mandala:  mandala,
		Hexagon:  hexagon,
	}
}

// Store holds the generators and the currently active reference path.
type Store struct {
	params    Params
	gens      map[string]Generator
	active    ReferencePath
	hasActive bool
}

// NewStore returns a store with the built-in patterns registered.
func NewStore(p Params) *Store {
	if p.Width <= 0 || p.Height <= 0 {
		d := DefaultParams()
		p.Width, p.Height = d.Width, d.Height
	}
	return &Store{params: p, gens: builtins()}
}

// Register adds or replaces a generator.
func (s *Store) Register(name string, g Generator) {
	s.gens[name] = g
}

// Select regenerates the active path from the named generator.
// On error the active path is left untouched.
func (s *Store) Select(name string) (ReferencePath, error) {
	g, ok := s.gens[name]
	if !ok {
		return ReferencePath{}, fmt.Errorf("%w: %q", ErrUnknownPattern, name)
	}
	rp := g(s.params)
	rp.name = name
	s.active = rp
	s.hasActive = true
	return rp, nil
}

// Active returns the active path, if any was selected.
func (s *Store) Active() (ReferencePath, bool) {
	return s.active, s.hasActive
}

// Names lists registered generators in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.gens))
	for n := range s.gens {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Params returns the canvas parameters used for generation.
func (s *Store) Params() Params {
	return s.params
}
