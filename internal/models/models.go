package models

import (
	"time"

	"github.com/alexxanorafa/Jornada-Arquetipica/internal/geom"
)

// Point is a stroke sample as saved on disk.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Stroke is one archived stroke.
type Stroke struct {
	Points []Point `yaml:"points,flow"`
}

// Result is the accuracy of the last completed stroke.
type Result struct {
	Matched  int     `yaml:"matched"`
	Total    int     `yaml:"total"`
	Accuracy float64 `yaml:"accuracy"`
}

// Session is everything needed to resume a game.
type Session struct {
	Pattern    string    `yaml:"pattern"`
	Elements   []string  `yaml:"elements"`
	Precision  int       `yaml:"precision"`
	History    []Stroke  `yaml:"history,omitempty"`
	LastResult *Result   `yaml:"last_result,omitempty"`
	Summary    string    `yaml:"summary,omitempty"` // narrated journey so far
	SavedAt    time.Time `yaml:"saved_at"`
}

// StrokesFrom converts point lists into saved strokes.
func StrokesFrom(lines [][]geom.Point) []Stroke {
	out := make([]Stroke, 0, len(lines))
	for _, line := range lines {
		s := Stroke{Points: make([]Point, len(line))}
		for i, p := range line {
			s.Points[i] = Point{X: p.X, Y: p.Y}
		}
		out = append(out, s)
	}
	return out
}

// Lines converts the session history back into point lists.
func (s *Session) Lines() [][]geom.Point {
	out := make([][]geom.Point, 0, len(s.History))
	for _, st := range s.History {
		line := make([]geom.Point, len(st.Points))
		for i, p := range st.Points {
			line[i] = geom.Pt(p.X, p.Y)
		}
		out = append(out, line)
	}
	return out
}
