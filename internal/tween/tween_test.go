package tween

import (
	"math"
	"testing"
	"time"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestEasingEndpoints(t *testing.T) {
	for name, ease := range map[string]Easing{
		"linear":  Linear,
		"quad":    InOutQuad,
		"sine":    InOutSine,
		"elastic": OutElastic,
	} {
		if !near(ease(0), 0) || !near(ease(1), 1) {
			t.Errorf("%s: ease(0)=%v ease(1)=%v", name, ease(0), ease(1))
		}
	}
	if !near(InOutQuad(0.5), 0.5) || !near(InOutSine(0.5), 0.5) {
		t.Error("symmetric easings should pass through 0.5")
	}
}

func TestTweenValue(t *testing.T) {
	tw := New(10, 20, time.Second, nil)
	cases := map[time.Duration]float64{
		-time.Second:           10,
		0:                      10,
		250 * time.Millisecond: 12.5,
		time.Second:            20,
		3 * time.Second:        20,
	}
	for elapsed, want := range cases {
		if got := tw.Value(elapsed); !near(got, want) {
			t.Errorf("Value(%v) = %v, want %v", elapsed, got, want)
		}
	}
	if tw.Done(999*time.Millisecond) || !tw.Done(time.Second) {
		t.Error("Done boundary wrong")
	}
}

func TestFrames(t *testing.T) {
	frames := New(0, 100, time.Second, InOutQuad).Frames(10)
	if len(frames) != 11 {
		t.Fatalf("got %d frames, want 11", len(frames))
	}
	if frames[0] != 0 || frames[len(frames)-1] != 100 {
		t.Errorf("frames start %v end %v", frames[0], frames[len(frames)-1])
	}
	for i := 1; i < len(frames); i++ {
		if frames[i] < frames[i-1] {
			t.Fatalf("InOutQuad frames must be monotonic, frame %d went back", i)
		}
	}
	if got := New(0, 5, 0, nil).Frames(60); len(got) != 1 || got[0] != 5 {
		t.Errorf("zero duration frames = %v", got)
	}
}

func TestSequenceKeyframes(t *testing.T) {
	s := Sequence{Values: []float64{0, 1.2, 1}, Duration: 2 * time.Second}
	if v := s.Value(0); !near(v, 0) {
		t.Errorf("start = %v", v)
	}
	if v := s.Value(time.Second); !near(v, 1.2) {
		t.Errorf("middle keyframe = %v, want 1.2", v)
	}
	if v := s.Value(1500 * time.Millisecond); !near(v, 1.1) {
		t.Errorf("second leg midpoint = %v, want 1.1", v)
	}
	if v := s.Value(5 * time.Second); !near(v, 1) {
		t.Errorf("end = %v", v)
	}
	if (Sequence{}).Value(time.Second) != 0 {
		t.Error("empty sequence should be zero")
	}
}
