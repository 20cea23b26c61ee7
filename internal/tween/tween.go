// Package tween interpolates values over time, independent of any renderer.
package tween

import (
	"math"
	"time"
)

// Easing maps linear progress t in [0,1] to eased progress.
type Easing func(t float64) float64

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

// InOutQuad accelerates then decelerates.
func InOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return 1 - math.Pow(-2*t+2, 2)/2
}

// InOutSine is a gentle sinusoidal ease, used for pulsing indicators.
func InOutSine(t float64) float64 {
	return -(math.Cos(math.Pi*t) - 1) / 2
}

// OutElastic overshoots and settles, for pop-in feedback.
func OutElastic(t float64) float64 {
	const c4 = (2 * math.Pi) / 3
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	}
	return math.Pow(2, -10*t)*math.Sin((t*10-0.75)*c4) + 1
}

// Tween moves from From to To over Duration.
type Tween struct {
	From     float64
	To       float64
	Duration time.Duration
	Ease     Easing
}

// New returns a tween; a nil ease means Linear.
func New(from, to float64, d time.Duration, ease Easing) Tween {
	if ease == nil {
		ease = Linear
	}
	return Tween{From: from, To: to, Duration: d, Ease: ease}
}

// Value returns the interpolated value after elapsed.
func (tw Tween) Value(elapsed time.Duration) float64 {
	return tw.From + (tw.To-tw.From)*tw.ease()(tw.progress(elapsed))
}

// Done reports whether elapsed has reached the end.
func (tw Tween) Done(elapsed time.Duration) bool {
	return elapsed >= tw.Duration
}

// Frames samples the tween at fps, always ending exactly on To.
func (tw Tween) Frames(fps int) []float64 {
	if fps <= 0 || tw.Duration <= 0 {
		return []float64{tw.To}
	}
	n := int(math.Ceil(tw.Duration.Seconds() * float64(fps)))
	out := make([]float64, 0, n+1)
	step := time.Second / time.Duration(fps)
	for i := 0; i <= n; i++ {
		out = append(out, tw.Value(time.Duration(i)*step))
	}
	out[len(out)-1] = tw.To
	return out
}

func (tw Tween) progress(elapsed time.Duration) float64 {
	if tw.Duration <= 0 || elapsed >= tw.Duration {
		return 1
	}
	if elapsed <= 0 {
		return 0
	}
	return float64(elapsed) / float64(tw.Duration)
}

func (tw Tween) ease() Easing {
	if tw.Ease == nil {
		return Linear
	}
	return tw.Ease
}

// Sequence plays keyframe values back to back, each leg taking an equal
// share of Duration. It mirrors keyframe arrays such as scale [0, 1.2, 1].
type Sequence struct {
	Values   []float64
	Duration time.Duration
	Ease     Easing
}

// Value returns the sequence value after elapsed.
func (s Sequence) Value(elapsed time.Duration) float64 {
	switch len(s.Values) {
	case 0:
		return 0
	case 1:
		return s.Values[0]
	}
	legs := len(s.Values) - 1
	if s.Duration <= 0 || elapsed >= s.Duration {
		return s.Values[legs]
	}
	if elapsed < 0 {
		elapsed = 0
	}
	leg := s.Duration / time.Duration(legs)
	i := int(elapsed / leg)
	if i >= legs {
		i = legs - 1
	}
	return New(s.Values[i], s.Values[i+1], leg, s.Ease).Value(elapsed - time.Duration(i)*leg)
}
