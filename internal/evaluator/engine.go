// Package evaluator is the stroke path evaluator: it captures strokes,
// scores them against the active labyrinth pattern, detects proximity to
// element cards and fires transmutation rules.
package evaluator

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/alexxanorafa/Jornada-Arquetipica/internal/compare"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/geom"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/input"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/pattern"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/proximity"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/trigger"
)

var (
	ErrNoSurface = errors.New("evaluator: no drawing surface")
	ErrNoRules   = errors.New("evaluator: no combination table")
)

// attractionStep is how much precision each proximity hit adds.
const attractionStep = 5

// ColorToken tells the surface how to paint a stroke segment.
type ColorToken int

const (
	ColorInk ColorToken = iota
	ColorPrimary
	ColorError
)

func (c ColorToken) String() string {
	switch c {
	case ColorInk:
		return "ink"
	case ColorPrimary:
		return "primary"
	case ColorError:
		return "error"
	default:
		return "unknown"
	}
}

// Surface owns pixel output. The engine never draws by itself.
type Surface interface {
	StrokeSegment(from, to geom.Point, color ColorToken)
	DrawReferencePattern(id string, path pattern.ReferencePath)
}

// Options configures an Engine.
type Options struct {
	Surface    Surface
	Rules      *trigger.Table
	Patterns   *pattern.Store
	Pattern    string
	Tolerance  float64
	Threshold  float64
	Radius     float64
	Candidates []proximity.Candidate
	Logger     *slog.Logger
}

// Engine ties the input sampler's output to comparison, proximity and
// dispatch. Every input step runs under one lock; events raised by a step
// are published after the lock is released, in order.
type Engine struct {
	mu sync.Mutex

	log        *slog.Logger
	surface    Surface
	patterns   *pattern.Store
	comparator *compare.Comparator
	tolerance  float64
	threshold  float64
	radius     float64
	candidates []proximity.Candidate
	dispatcher *trigger.Dispatcher
	active     *trigger.ElementSet

	current   *geom.Stroke
	history   []*geom.Stroke
	last      *compare.AccuracyResult
	precision int

	events  *Events
	pending []func()
}

// New builds an engine. A surface and a rule table are required.
func New(opts Options) (*Engine, error) {
	if opts.Surface == nil {
		return nil, ErrNoSurface
	}
	if opts.Rules == nil {
		return nil, ErrNoRules
	}
	if opts.Patterns == nil {
		opts.Patterns = pattern.NewStore(pattern.DefaultParams())
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = compare.DefaultTolerance
	}
	if opts.Threshold <= 0 {
		opts.Threshold = compare.DefaultThreshold
	}
	if opts.Radius <= 0 {
		opts.Radius = proximity.DefaultRadius
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	e := &Engine{
		log:        opts.Logger,
		surface:    opts.Surface,
		patterns:   opts.Patterns,
		tolerance:  opts.Tolerance,
		threshold:  opts.Threshold,
		radius:     opts.Radius,
		candidates: append([]proximity.Candidate(nil), opts.Candidates...),
		dispatcher: trigger.NewDispatcher(opts.Rules),
		active:     trigger.NewElementSet(),
		events:     newEvents(),
	}

	if opts.Pattern != "" {
		if err := e.SelectPattern(opts.Pattern); err != nil {
			return nil, fmt.Errorf("initial pattern: %w", err)
		}
	}
	return e, nil
}

// Events returns the engine's topics.
func (e *Engine) Events() *Events { return e.events }

// step runs fn under the lock and then publishes whatever fn queued.
func (e *Engine) step(fn func()) {
	e.mu.Lock()
	fn()
	pending := e.pending
	e.pending = nil
	e.mu.Unlock()

	for _, publish := range pending {
		publish()
	}
}

func (e *Engine) queue(publish func()) {
	e.pending = append(e.pending, publish)
}

// HandleSample routes a normalized input sample.
func (e *Engine) HandleSample(s input.Sample) {
	switch s.Phase {
	case input.Press:
		if s.HasPoint {
			e.Press(s.Point)
		}
	case input.Move:
		if s.HasPoint {
			e.Move(s.Point)
		}
	case input.Release, input.Leave:
		e.Release()
	}
}

// Press starts a new stroke, discarding any unfinished one.
func (e *Engine) Press(p geom.Point) {
	e.step(func() {
		e.current = geom.NewStroke(p)
		ev := DrawEvent{Point: p, HasReference: e.comparator != nil}
		if e.comparator != nil {
			ev.OnPath = e.comparator.IsOnPath(p)
		}
		e.queue(func() { e.events.DrawStart.Emit(ev) })
	})
}

// Move extends the current stroke. It is a no-op when not drawing.
func (e *Engine) Move(p geom.Point) {
	e.step(func() {
		if e.current == nil {
			return
		}
		prev, _ := e.current.Last()
		e.current.Append(p)

		ev := DrawEvent{Point: p, HasReference: e.comparator != nil}
		color := ColorInk
		if e.comparator != nil {
			ev.OnPath = e.comparator.IsOnPath(p)
			color = ColorError
			if ev.OnPath {
				color = ColorPrimary
			}
		}
		e.surface.StrokeSegment(prev, p, color)
		e.queue(func() { e.events.Draw.Emit(ev) })

		for _, id := range proximity.FindNearby(p, e.candidates, e.radius) {
			e.precision = min(100, e.precision+attractionStep)
			attr := AttractionEvent{Point: p, Target: id, Precision: e.precision}
			e.queue(func() { e.events.Attraction.Emit(attr) })
		}
	})
}

// Release finalizes the current stroke, scores it and checks whether the
// active elements complete a combination. It reports the stroke's result.
func (e *Engine) Release() (compare.AccuracyResult, bool) {
	var (
		result compare.AccuracyResult
		ok     bool
	)
	e.step(func() {
		if e.current == nil {
			return
		}
		stroke := e.current
		e.current = nil
		stroke.Finalize()

		name := ""
		success := false
		if e.comparator != nil {
			result = e.comparator.ScoreStroke(stroke)
			success = e.comparator.Classify(result)
			if rp, has := e.patterns.Active(); has {
				name = rp.Name()
			}
		} else {
			result = compare.AccuracyResult{Total: stroke.Len()}
		}
		ok = true
		r := result
		e.last = &r

		if stroke.Len() > 1 {
			e.history = append(e.history, stroke)
		}

		end := StrokeEvent{Pattern: name, Points: stroke.Points(), Result: result, Success: success}
		e.queue(func() { e.events.DrawEnd.Emit(end) })
		e.log.Debug("stroke finalized", "pattern", name, "matched", result.Matched, "total", result.Total, "success", success)

		if e.active.Len() >= trigger.MinCombination {
			e.evaluateLocked()
		}
	})
	return result, ok
}

// Toggle flips an element's selection and evaluates the combination in the
// same step. It reports whether the element is active afterwards; when a
// rule fires the set is cleared and the result is false.
func (e *Engine) Toggle(id string) bool {
	var active bool
	e.step(func() {
		active = e.active.Toggle(id)
		fired := e.evaluateLocked()
		if fired {
			active = false
		}
		sel := SelectionEvent{ID: id, Active: active, Elements: e.active.IDs(), State: e.dispatcher.State()}
		e.queue(func() { e.events.Selection.Emit(sel) })
	})
	return active
}

// evaluateLocked runs the dispatcher. On a fire the active set is cleared
// and the dispatcher settles back to idle.
func (e *Engine) evaluateLocked() bool {
	ev, fired := e.dispatcher.Evaluate(e.active)
	if fired {
		e.active.Clear()
		e.dispatcher.Evaluate(e.active)
		e.log.Info("transmutation", "rule", ev.Rule.ID, "key", ev.Key)
		e.queue(func() { e.events.Trigger.Emit(ev) })
		return true
	}
	if e.active.Len() >= trigger.MinCombination {
		key := e.active.Key()
		if _, known := e.dispatcher.Table().Lookup(key); !known {
			nm := NoMatchEvent{Key: key, Elements: e.active.IDs()}
			e.queue(func() { e.events.NoMatch.Emit(nm) })
		}
	}
	return false
}

// RestoreElements replaces the active set without evaluating it, for
// loading a saved session.
func (e *Engine) RestoreElements(ids []string) {
	e.step(func() {
		e.active.Clear()
		for _, id := range ids {
			e.active.Add(id)
		}
		e.dispatcher.Reset()
	})
}

// Reset clears the active elements and re-arms the dispatcher.
func (e *Engine) Reset() {
	e.step(func() {
		e.active.Clear()
		e.dispatcher.Reset()
	})
}

// SelectPattern switches the reference pattern. Any stroke in progress is
// discarded, the last result is cleared and the canvas is redrawn.
func (e *Engine) SelectPattern(name string) error {
	var err error
	e.step(func() {
		var rp pattern.ReferencePath
		rp, err = e.patterns.Select(name)
		if err != nil {
			return
		}
		e.comparator = compare.New(rp, e.tolerance, compare.WithThreshold(e.threshold))
		e.current = nil
		e.last = nil
		e.history = nil
		e.surface.DrawReferencePattern(name, rp)
		e.log.Info("pattern selected", "pattern", name, "points", rp.PointCount())

		pe := PatternEvent{Name: name, Path: rp}
		e.queue(func() { e.events.Pattern.Emit(pe) })
	})
	return err
}

// ClearCanvas drops the stroke history and redraws the bare pattern.
func (e *Engine) ClearCanvas() {
	e.step(func() {
		e.current = nil
		e.history = nil
		e.last = nil
		e.drawReferenceLocked()
	})
}

// Redraw repaints the pattern and every archived stroke.
func (e *Engine) Redraw() {
	e.step(func() {
		e.drawReferenceLocked()
		for _, s := range e.history {
			pts := s.Points()
			for i := 1; i < len(pts); i++ {
				color := ColorInk
				if e.comparator != nil {
					color = ColorError
					if e.comparator.IsOnPath(pts[i]) {
						color = ColorPrimary
					}
				}
				e.surface.StrokeSegment(pts[i-1], pts[i], color)
			}
		}
	})
}

func (e *Engine) drawReferenceLocked() {
	if rp, ok := e.patterns.Active(); ok {
		e.surface.DrawReferencePattern(rp.Name(), rp)
	}
}

// SetCandidates replaces the proximity targets, e.g. after a layout change.
func (e *Engine) SetCandidates(c []proximity.Candidate) {
	e.step(func() {
		e.candidates = append([]proximity.Candidate(nil), c...)
	})
}

// SetPrecision restores a saved precision value, clamped to [0,100].
func (e *Engine) SetPrecision(p int) {
	e.step(func() {
		e.precision = max(0, min(100, p))
	})
}

// Pattern returns the active pattern name.
func (e *Engine) Pattern() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if rp, ok := e.patterns.Active(); ok {
		return rp.Name()
	}
	return ""
}

// PatternNames lists the selectable patterns.
func (e *Engine) PatternNames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.patterns.Names()
}

// ReferencePath returns the active reference path.
func (e *Engine) ReferencePath() (pattern.ReferencePath, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.patterns.Active()
}

// LastResult returns the most recent stroke's accuracy, if any.
func (e *Engine) LastResult() (compare.AccuracyResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.last == nil {
		return compare.AccuracyResult{}, false
	}
	return *e.last, true
}

// Drawing reports whether a stroke is being captured.
func (e *Engine) Drawing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current != nil
}

// Precision returns the attraction precision in percent.
func (e *Engine) Precision() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.precision
}

// ActiveElements returns the selected element ids, sorted.
func (e *Engine) ActiveElements() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active.IDs()
}

// State returns the dispatcher state.
func (e *Engine) State() trigger.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatcher.State()
}

// History returns the archived strokes as point lists.
func (e *Engine) History() [][]geom.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]geom.Point, 0, len(e.history))
	for _, s := range e.history {
		out = append(out, s.Points())
	}
	return out
}

// RestoreHistory replaces the archived strokes and repaints them.
func (e *Engine) RestoreHistory(strokes [][]geom.Point) {
	e.step(func() {
		e.history = e.history[:0]
		for _, pts := range strokes {
			if len(pts) > 1 {
				e.history = append(e.history, geom.StrokeOf(pts...))
			}
		}
	})
	e.Redraw()
}

// SetTolerance changes the on-path hit distance, e.g. when the display
// resolution makes the configured one unreachable. Non-positive values
// are ignored.
func (e *Engine) SetTolerance(t float64) {
	if t <= 0 {
		return
	}
	e.step(func() {
		e.tolerance = t
		if rp, ok := e.patterns.Active(); ok {
			e.comparator = compare.New(rp, t, compare.WithThreshold(e.threshold))
		}
	})
}

// Tolerance returns the on-path hit distance.
func (e *Engine) Tolerance() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tolerance
}

// Threshold returns the stroke success threshold.
func (e *Engine) Threshold() float64 { return e.threshold }
