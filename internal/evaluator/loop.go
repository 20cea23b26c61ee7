package evaluator

import (
	"context"
	"time"
)

// DefaultFPS is the redraw rate of the frame loop.
const DefaultFPS = 30

// Loop drives per-frame work at a fixed rate until its context ends.
type Loop struct {
	interval time.Duration
}

// NewLoop returns a loop ticking fps times a second. Non-positive fps
// falls back to DefaultFPS.
func NewLoop(fps int) *Loop {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Loop{interval: time.Second / time.Duration(fps)}
}

// Interval returns the time between frames.
func (l *Loop) Interval() time.Duration { return l.interval }

// Run calls frame on every tick and returns ctx.Err() once ctx is done.
func (l *Loop) Run(ctx context.Context, frame func(now time.Time)) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			frame(now)
		}
	}
}
