// Package input turns raw pointer and touch events into canvas-local samples.
package input

import (
	"errors"
	"fmt"

	"github.com/alexxanorafa/Jornada-Arquetipica/internal/geom"
)

var (
	ErrNoSurface = errors.New("input: no drawing surface")
	ErrNoTouch   = errors.New("input: touch event without touches")
)

// Kind is the device that produced an event.
type Kind int

const (
	KindMouse Kind = iota
	KindTouch
)

func (k Kind) String() string {
	switch k {
	case KindMouse:
		return "mouse"
	case KindTouch:
		return "touch"
	default:
		return "unknown"
	}
}

// Phase is where an event sits in the press/move/release cycle.
type Phase int

const (
	Press Phase = iota
	Move
	Release
	Leave
)

func (p Phase) String() string {
	switch p {
	case Press:
		return "press"
	case Move:
		return "move"
	case Release:
		return "release"
	case Leave:
		return "leave"
	default:
		return "unknown"
	}
}

// Touch is one finger in viewport coordinates.
type Touch struct {
	ClientX, ClientY float64
}

// RawEvent is a pointer event as delivered by the host, in viewport space.
// Touch events carry their coordinates in Touches; only the first is used.
type RawEvent struct {
	Kind    Kind
	Phase   Phase
	ClientX float64
	ClientY float64
	Touches []Touch
}

// Bounds describes where the canvas currently sits in the viewport.
// Logical is the canvas' own coordinate size; zero means no scaling.
type Bounds struct {
	Viewport      geom.Rect
	LogicalWidth  float64
	LogicalHeight float64
}

// BoundsFunc reports the current canvas bounds. It is called for every
// sample so layout changes are never missed.
type BoundsFunc func() (Bounds, error)

// Sample is one normalized input event.
type Sample struct {
	Phase    Phase
	Point    geom.Point
	HasPoint bool
}

// Sampler converts RawEvents to Samples.
type Sampler struct {
	bounds BoundsFunc
}

// NewSampler returns a Sampler reading bounds from fn.
func NewSampler(fn BoundsFunc) (*Sampler, error) {
	if fn == nil {
		return nil, ErrNoSurface
	}
	return &Sampler{bounds: fn}, nil
}

// Sample normalizes ev into canvas-local space.
func (s *Sampler) Sample(ev RawEvent) (Sample, error) {
	out := Sample{Phase: ev.Phase}

	x, y, ok, err := clientCoords(ev)
	if err != nil {
		return out, err
	}
	if !ok {
		return out, nil
	}

	b, err := s.bounds()
	if err != nil {
		return out, fmt.Errorf("query bounds: %w", err)
	}

	lx := x - b.Viewport.X
	ly := y - b.Viewport.Y
	if b.LogicalWidth > 0 && b.Viewport.Width > 0 {
		lx *= b.LogicalWidth / b.Viewport.Width
	}
	if b.LogicalHeight > 0 && b.Viewport.Height > 0 {
		ly *= b.LogicalHeight / b.Viewport.Height
	}

	out.Point = geom.Pt(lx, ly)
	out.HasPoint = true
	return out, nil
}

func clientCoords(ev RawEvent) (x, y float64, ok bool, err error) {
	if ev.Kind == KindTouch {
		if len(ev.Touches) == 0 {
			if ev.Phase == Press || ev.Phase == Move {
				return 0, 0, false, ErrNoTouch
			}
			return 0, 0, false, nil
		}
		t := ev.Touches[0]
		return t.ClientX, t.ClientY, true, nil
	}
	return ev.ClientX, ev.ClientY, true, nil
}
