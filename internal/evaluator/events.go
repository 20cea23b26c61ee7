package evaluator

import (
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/bus"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/compare"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/geom"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/pattern"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/trigger"
)

// DrawEvent is published on press and on every move sample.
type DrawEvent struct {
	Point        geom.Point
	OnPath       bool
	HasReference bool
}

// StrokeEvent is published when a stroke is finalized.
type StrokeEvent struct {
	Pattern string
	Points  []geom.Point
	Result  compare.AccuracyResult
	Success bool
}

// AttractionEvent is published for each target a move sample came close to.
type AttractionEvent struct {
	Point     geom.Point
	Target    string
	Precision int
}

// NoMatchEvent reports a completed stroke with two or more active elements
// that form no known combination. It is informational.
type NoMatchEvent struct {
	Key      string
	Elements []string
}

// PatternEvent is published after the reference pattern changes.
type PatternEvent struct {
	Name string
	Path pattern.ReferencePath
}

// SelectionEvent is published after an element is toggled.
type SelectionEvent struct {
	ID       string
	Active   bool
	Elements []string
	State    trigger.State
}

// Events groups the engine's topics.
type Events struct {
	DrawStart  *bus.Topic[DrawEvent]
	Draw       *bus.Topic[DrawEvent]
	DrawEnd    *bus.Topic[StrokeEvent]
	Attraction *bus.Topic[AttractionEvent]
	Trigger    *bus.Topic[trigger.Event]
	NoMatch    *bus.Topic[NoMatchEvent]
	Pattern    *bus.Topic[PatternEvent]
	Selection  *bus.Topic[SelectionEvent]
}

func newEvents() *Events {
	return &Events{
		DrawStart:  bus.NewTopic[DrawEvent]("draw.start"),
		Draw:       bus.NewTopic[DrawEvent]("draw"),
		DrawEnd:    bus.NewTopic[StrokeEvent]("draw.end"),
		Attraction: bus.NewTopic[AttractionEvent]("attraction"),
		Trigger:    bus.NewTopic[trigger.Event]("trigger"),
		NoMatch:    bus.NewTopic[NoMatchEvent]("trigger.nomatch"),
		Pattern:    bus.NewTopic[PatternEvent]("pattern"),
		Selection:  bus.NewTopic[SelectionEvent]("selection"),
	}
}
