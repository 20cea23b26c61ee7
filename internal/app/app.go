// Package app wires configuration, content, storage and collaborators
// around the stroke evaluator.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/gogpu/gg"

	"github.com/alexxanorafa/Jornada-Arquetipica/internal/achievements"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/audio"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/compare"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/config"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/content"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/evaluator"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/geom"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/journal"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/models"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/narrator"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/pattern"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/render"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/storage"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/trigger"
)

// EffectReveal is the rule effect that switches the labyrinth.
const EffectReveal = "reveal"

// Options overrides collaborators; zero values are built from Config.
type Options struct {
	Config   *config.Config
	Logger   *slog.Logger
	Surface  evaluator.Surface // extra surface, e.g. the terminal canvas
	Store    storage.KV
	Narrator narrator.Narrator
	Player   audio.Player
}

// App owns every long-lived component.
type App struct {
	Config       *config.Config
	Log          *slog.Logger
	Catalog      *content.Catalog
	Store        storage.KV
	Engine       *evaluator.Engine
	Journal      *journal.Journal
	Achievements *achievements.Tracker
	Narrator     narrator.Narrator
	Audio        audio.Player
	Canvas       *render.PNGSurface

	ownStore bool

	mu      sync.Mutex
	summary string
}

// New builds the application.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	gg.SetLogger(log)

	catalog, err := content.Load()
	if err != nil {
		return nil, err
	}
	table, err := catalog.Table()
	if err != nil {
		return nil, fmt.Errorf("combination table: %w", err)
	}

	a := &App{Config: cfg, Log: log, Catalog: catalog}

	a.Store = opts.Store
	if a.Store == nil {
		if a.Store, err = storage.Open(cfg); err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		a.ownStore = true
	}

	params := pattern.DefaultParams()
	a.Canvas = render.NewPNGSurface(int(params.Width), int(params.Height), render.DefaultPalette, log)
	anchors := make([]geom.Point, 0, len(catalog.Elements))
	for _, e := range catalog.Elements {
		anchors = append(anchors, e.Point())
	}
	a.Canvas.SetAnchors(anchors)

	var surface evaluator.Surface = a.Canvas
	if opts.Surface != nil {
		surface = render.Tee{a.Canvas, opts.Surface}
	}

	a.Engine, err = evaluator.New(evaluator.Options{
		Surface:    surface,
		Rules:      table,
		Patterns:   pattern.NewStore(params),
		Pattern:    cfg.Pattern,
		Tolerance:  cfg.Tolerance,
		Threshold:  cfg.Threshold,
		Radius:     cfg.Radius,
		Candidates: catalog.Candidates(),
		Logger:     log,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Journal = journal.New(a.Store, log)
	if err := a.Journal.Load(); err != nil {
		log.Warn("journal not loaded", "error", err)
	}
	a.Achievements = achievements.New(a.Store, log)
	if err := a.Achievements.Load(); err != nil {
		log.Warn("achievements not loaded", "error", err)
	}

	a.Narrator = opts.Narrator
	if a.Narrator == nil {
		if a.Narrator, err = narrator.New(ctx, cfg.GeminiAPIKey); err != nil {
			log.Warn("gemini unavailable, using static narration", "error", err)
			a.Narrator = narrator.Static{}
		}
	}

	a.Audio = opts.Player
	if a.Audio == nil {
		a.Audio = audio.NopPlayer{}
		if cfg.Sound {
			if p, err := audio.NewSpeakerPlayer(0.6); err != nil {
				log.Warn("sound disabled", "error", err)
			} else {
				a.Audio = p
			}
		}
	}

	a.subscribe()
	return a, nil
}

func (a *App) subscribe() {
	ev := a.Engine.Events()

	a.Journal.Subscribe(ev.Trigger)
	a.Achievements.Subscribe(ev.Trigger, a.Journal, a.archetypes())
	ev.Trigger.On(a.reveal)
	ev.Trigger.On(func(e trigger.Event) {
		if e.Rule.Effect == EffectReveal {
			a.Audio.Play(audio.CueReveal)
			return
		}
		a.Audio.Play(audio.CueTransmute)
	})
	ev.DrawEnd.On(func(e evaluator.StrokeEvent) {
		if e.Pattern == "" || e.Result.Total < 2 {
			return
		}
		if e.Success {
			a.Audio.Play(audio.CueStrokeHit)
		} else {
			a.Audio.Play(audio.CueStrokeMiss)
		}
	})
	ev.Attraction.On(func(evaluator.AttractionEvent) {
		a.Audio.Play(audio.CueAttraction)
	})
	ev.NoMatch.On(func(e evaluator.NoMatchEvent) {
		a.Log.Debug("no combination", "key", e.Key)
	})
}

func (a *App) archetypes() []string {
	var ids []string
	for _, e := range a.Catalog.Elements {
		if e.Kind == content.Archetype {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// reveal switches the labyrinth for rules whose effect reveals a pattern.
func (a *App) reveal(e trigger.Event) {
	if e.Rule.Effect != EffectReveal || e.Rule.Pattern == "" {
		return
	}
	if err := a.Engine.SelectPattern(e.Rule.Pattern); err != nil {
		a.Log.Error("reveal pattern failed", "rule", e.Rule.ID, "pattern", e.Rule.Pattern, "error", err)
	}
}

// Narrate narrates a fired event and stores the narration on its journal
// entry.
func (a *App) Narrate(ctx context.Context, e trigger.Event) (narrator.Narration, error) {
	n, err := a.Narrator.Narrate(ctx, e)
	if err != nil {
		a.Log.Warn("narration failed, using lore", "rule", e.Rule.ID, "error", err)
		n, _ = narrator.Static{}.Narrate(ctx, e)
	}
	if entry, ok := a.Journal.ForEvent(e.ID); ok {
		if err := a.Journal.Annotate(entry.ID, n.Narrative); err != nil {
			a.Log.Warn("journal annotate failed", "error", err)
		}
	}
	return n, nil
}

// Summarize condenses the journal into the session summary. It may run
// on its own goroutine while the session is saved or restored.
func (a *App) Summarize(ctx context.Context) (string, error) {
	prev := a.Summary()
	s, err := a.Narrator.Summarize(ctx, prev, a.Journal.Entries())
	if err != nil {
		return prev, err
	}
	a.mu.Lock()
	a.summary = s
	a.mu.Unlock()
	return s, nil
}

// Summary returns the latest session summary.
func (a *App) Summary() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.summary
}

// Snapshot captures the engine state as a saveable session.
func (a *App) Snapshot() *models.Session {
	s := &models.Session{
		Pattern:   a.Engine.Pattern(),
		Elements:  a.Engine.ActiveElements(),
		Precision: a.Engine.Precision(),
		History:   models.StrokesFrom(a.Engine.History()),
		Summary:   a.Summary(),
	}
	if r, ok := a.Engine.LastResult(); ok {
		s.LastResult = &models.Result{Matched: r.Matched, Total: r.Total, Accuracy: r.Accuracy}
	}
	return s
}

// Save persists the current session to a slot.
func (a *App) Save(slot string) error {
	if err := a.Snapshot().Save(a.Store, slot); err != nil {
		return err
	}
	a.Log.Info("session saved", "slot", models.SlotKey(slot))
	return nil
}

// Restore loads a slot into the engine. A missing slot returns
// models.ErrNoSession and leaves the engine alone.
func (a *App) Restore(slot string) error {
	s, err := models.LoadSession(a.Store, slot)
	if err != nil {
		return err
	}
	if s.Pattern != "" {
		if err := a.Engine.SelectPattern(s.Pattern); err != nil {
			return fmt.Errorf("restore pattern: %w", err)
		}
	}
	a.Engine.RestoreElements(s.Elements)
	a.Engine.SetPrecision(s.Precision)
	a.Engine.RestoreHistory(s.Lines())
	a.mu.Lock()
	a.summary = s.Summary
	a.mu.Unlock()
	a.Log.Info("session restored", "slot", models.SlotKey(slot), "pattern", s.Pattern, "strokes", len(s.History))
	return nil
}

// RestoreIfSaved restores the default slot when one exists.
func (a *App) RestoreIfSaved() error {
	err := a.Restore(models.DefaultSlot)
	if errors.Is(err, models.ErrNoSession) {
		return nil
	}
	return err
}

// Export writes the canvas to a PNG file.
func (a *App) Export(path string) error {
	return a.Canvas.Export(path)
}

// LastResult is a convenience for views.
func (a *App) LastResult() (compare.AccuracyResult, bool) {
	return a.Engine.LastResult()
}

// Close releases every collaborator. A store passed in Options stays open.
func (a *App) Close() {
	if a.Audio != nil {
		a.Audio.Close()
	}
	if a.Narrator != nil {
		if err := a.Narrator.Close(); err != nil {
			a.Log.Warn("narrator close", "error", err)
		}
	}
	if a.Canvas != nil {
		a.Canvas.Close()
	}
	if a.Store != nil && a.ownStore {
		if err := a.Store.Close(); err != nil {
			a.Log.Warn("store close", "error", err)
		}
	}
}
