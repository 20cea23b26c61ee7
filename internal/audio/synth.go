package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// tone is a sine oscillator that runs for a fixed number of samples.
type tone struct {
	freq   float64
	phase  float64
	length int
	pos    int
	rate   beep.SampleRate
}

func newTone(freq float64, d time.Duration, rate beep.SampleRate) *tone {
	return &tone{freq: freq, length: rate.N(d), rate: rate}
}

func (t *tone) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if t.pos >= t.length {
			return i, i > 0
		}
		v := math.Sin(2 * math.Pi * t.phase)
		samples[i][0], samples[i][1] = v, v
		t.phase += t.freq / float64(t.rate)
		t.phase -= math.Floor(t.phase)
		t.pos++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }

// envelope fades a streamer in over attack and out over its last release.
type envelope struct {
	s       beep.Streamer
	pos     int
	total   int
	attack  int
	release int
}

func shape(s beep.Streamer, d, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{s: s, total: rate.N(d), attack: rate.N(attack), release: rate.N(release)}
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.s.Stream(samples)
	for i := 0; i < n; i++ {
		if e.pos >= e.total {
			return i, i > 0
		}
		vol := 1.0
		if e.attack > 0 && e.pos < e.attack {
			vol = float64(e.pos) / float64(e.attack)
		}
		if left := e.total - e.pos; e.release > 0 && left < e.release {
			vol = min(vol, float64(left)/float64(e.release))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.s.Err() }

func volume(s beep.Streamer, v float64) beep.Streamer {
	if v <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(v)}
}

func note(freq float64, d time.Duration, rate beep.SampleRate) beep.Streamer {
	return shape(newTone(freq, d, rate), d, 5*time.Millisecond, d/2, rate)
}

// Synth builds the streamer for a cue at the given master volume.
func Synth(c Cue, rate beep.SampleRate, vol float64) beep.Streamer {
	var s beep.Streamer
	switch c {
	case CueAttraction:
		s = note(1320, 40*time.Millisecond, rate)
	case CueStrokeHit:
		s = beep.Seq(note(660, 80*time.Millisecond, rate), note(990, 120*time.Millisecond, rate))
	case CueStrokeMiss:
		s = note(180, 150*time.Millisecond, rate)
	case CueReveal:
		s = beep.Seq(
			note(392, 90*time.Millisecond, rate),
			note(523.25, 90*time.Millisecond, rate),
			note(659.25, 90*time.Millisecond, rate),
			note(783.99, 200*time.Millisecond, rate),
		)
	default: // CueTransmute
		d := 600 * time.Millisecond
		s = beep.Take(rate.N(d), beep.Mix(
			volume(note(523.25, d, rate), 0.5),
			volume(note(659.25, d, rate), 0.3),
			volume(note(783.99, d, rate), 0.2),
		))
	}
	return volume(s, vol)
}
