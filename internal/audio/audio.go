// Package audio plays short synthesized cues for evaluator events.
package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// SampleRate is the output rate of every cue.
const SampleRate = beep.SampleRate(44100)

// Cue names a sound.
type Cue int

const (
	CueTransmute Cue = iota
	CueReveal
	CueStrokeHit
	CueStrokeMiss
	CueAttraction
)

func (c Cue) String() string {
	switch c {
	case CueTransmute:
		return "transmute"
	case CueReveal:
		return "reveal"
	case CueStrokeHit:
		return "stroke-hit"
	case CueStrokeMiss:
		return "stroke-miss"
	case CueAttraction:
		return "attraction"
	default:
		return "unknown"
	}
}

// Player plays cues without blocking.
type Player interface {
	Play(Cue)
	Close()
}

// NopPlayer discards every cue.
type NopPlayer struct{}

func (NopPlayer) Play(Cue) {}
func (NopPlayer) Close()   {}

// SpeakerPlayer mixes cues onto the system speaker.
type SpeakerPlayer struct {
	mu     sync.Mutex
	mixer  *beep.Mixer
	volume float64
	last   map[Cue]time.Time
	gap    time.Duration
}

// NewSpeakerPlayer initializes the speaker. Repeats of the same cue closer
// than 60ms apart are dropped.
func NewSpeakerPlayer(volume float64) (*SpeakerPlayer, error) {
	if err := speaker.Init(SampleRate, SampleRate.N(100*time.Millisecond)); err != nil {
		return nil, err
	}
	p := &SpeakerPlayer{
		mixer:  &beep.Mixer{},
		volume: volume,
		last:   make(map[Cue]time.Time),
		gap:    60 * time.Millisecond,
	}
	speaker.Play(p.mixer)
	return p, nil
}

func (p *SpeakerPlayer) Play(c Cue) {
	p.mu.Lock()
	now := time.Now()
	if now.Sub(p.last[c]) < p.gap {
		p.mu.Unlock()
		return
	}
	p.last[c] = now
	p.mu.Unlock()

	s := Synth(c, SampleRate, p.volume)
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}

func (p *SpeakerPlayer) Close() {
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
}
