// Package achievements unlocks milestones as transmutations accumulate in
// the journal.
package achievements

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/alexxanorafa/Jornada-Arquetipica/internal/bus"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/journal"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/storage"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/trigger"
)

// StorageKey is where unlocked ids are persisted.
const StorageKey = "achievements"

// ShadowElement is the archetype shadow_worker looks for.
const ShadowElement = "sombra"

// FastWindow bounds the burst counted by speed_alchemist.
const FastWindow = time.Minute

var ErrUnknown = errors.New("achievements: unknown achievement")

// Stats is what requirements are checked against.
type Stats struct {
	Transmutations       int
	DiscoveredFusions    int
	Level                int
	JournalEntries       int
	DiscoveredArchetypes int
	UsedShadow           bool
	QuadFusion           bool
	FastTransmutations   int
}

// Achievement is one milestone. Secret ones are hidden until unlocked.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Color       string
	Secret      bool
	Requirement func(Stats) bool
}

// All lists every achievement in display order.
var All = []Achievement{
	{"first_transmutation", "Primeira Transmutação", "Realize sua primeira combinação alquímica", "🥇", "#fbbf24", false,
		func(s Stats) bool { return s.Transmutations >= 1 }},
	{"elemental_master", "Mestre Elemental", "Descubra todas as combinações elementais básicas", "🌊", "#3b82f6", false,
		func(s Stats) bool { return s.DiscoveredFusions >= 4 }},
	{"quantum_entangler", "Emaranhador Quântico", "Crie 10 transmutações diferentes", "🌀", "#8b5cf6", false,
		func(s Stats) bool { return s.Transmutations >= 10 }},
	{"shadow_worker", "Trabalhador das Sombras", "Integre um arquétipo sombra em uma transmutação", "🌑", "#6b7280", true,
		func(s Stats) bool { return s.UsedShadow }},
	{"alchemical_scholar", "Erudito Alquímico", "Alcance o nível 5 de alquimia", "📚", "#22c55e", false,
		func(s Stats) bool { return s.Level >= 5 }},
	{"perfect_fusion", "Fusão Perfeita", "Crie uma fusão quádrupla", "💎", "#ec4899", true,
		func(s Stats) bool { return s.QuadFusion }},
	{"speed_alchemist", "Alquimista Veloz", "Complete 3 transmutações em menos de 1 minuto", "⚡", "#f59e0b", true,
		func(s Stats) bool { return s.FastTransmutations >= 3 }},
	{"collection_complete", "Coleção Completa", "Descubra todos os arquétipos disponíveis", "🏆", "#d4b192", false,
		func(s Stats) bool { return s.DiscoveredArchetypes >= 10 }},
	{"journal_keeper", "Guardião do Diário", "Registre 50 entradas no diário", "📖", "#0ea5e9", false,
		func(s Stats) bool { return s.JournalEntries >= 50 }},
	{"master_transmutator", "Mestre Transmutador", "Realize 100 transmutações", "👑", "#dc2626", false,
		func(s Stats) bool { return s.Transmutations >= 100 }},
}

// Lookup returns the achievement with id.
func Lookup(id string) (Achievement, bool) {
	for _, a := range All {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// Collect derives stats from the journal. archetypes limits which elements
// count towards collection_complete; nil counts every element.
func Collect(j *journal.Journal, archetypes []string) Stats {
	entries := j.Entries()
	s := Stats{
		Transmutations:    len(entries),
		JournalEntries:    len(entries),
		DiscoveredFusions: len(j.Discovered()),
		Level:             j.Level().Number,
	}

	seen := make(map[string]struct{})
	for _, e := range entries {
		if len(e.Elements) >= 4 {
			s.QuadFusion = true
		}
		for _, id := range e.Elements {
			if id == ShadowElement {
				s.UsedShadow = true
			}
			if archetypes == nil || slices.Contains(archetypes, id) {
				seen[id] = struct{}{}
			}
		}
	}
	s.DiscoveredArchetypes = len(seen)

	if n := len(entries); n > 0 {
		latest := entries[n-1].At
		for _, e := range entries {
			if latest.Sub(e.At) < FastWindow {
				s.FastTransmutations++
			}
		}
	}
	return s
}

type document struct {
	Unlocked []string `yaml:"unlocked"`
}

// Tracker holds the unlocked set. It is safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	kv       storage.KV
	log      *slog.Logger
	unlocked map[string]struct{}
	topic    *bus.Topic[Achievement]
}

// New returns a tracker persisting through kv. kv may be nil.
func New(kv storage.KV, log *slog.Logger) *Tracker {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Tracker{
		kv:       kv,
		log:      log,
		unlocked: make(map[string]struct{}),
		topic:    bus.NewTopic[Achievement]("achievement.unlocked"),
	}
}

// Load replaces the unlocked set with the persisted one. Unknown ids are
// dropped; a missing document is not an error.
func (t *Tracker) Load() error {
	if t.kv == nil {
		return nil
	}
	var doc document
	err := storage.GetYAML(t.kv, StorageKey, &doc)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load achievements: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.unlocked)
	for _, id := range doc.Unlocked {
		if _, ok := Lookup(id); ok {
			t.unlocked[id] = struct{}{}
		}
	}
	return nil
}

// Unlocked publishes each achievement as it is unlocked.
func (t *Tracker) Unlocked() *bus.Topic[Achievement] { return t.topic }

// Subscribe checks every achievement after each event on topic. It must be
// registered after the journal's own subscription so the event is already
// recorded.
func (t *Tracker) Subscribe(topic *bus.Topic[trigger.Event], j *journal.Journal, archetypes []string) bus.Subscription {
	return topic.On(func(ev trigger.Event) {
		if _, err := t.Check(Collect(j, archetypes)); err != nil {
			t.log.Error("achievements save failed", "rule", ev.Rule.ID, "error", err)
		}
	})
}

// Check unlocks every achievement whose requirement s meets, in display
// order, and returns the new ones.
func (t *Tracker) Check(s Stats) ([]Achievement, error) {
	t.mu.Lock()
	var fresh []Achievement
	for _, a := range All {
		if _, done := t.unlocked[a.ID]; done || !a.Requirement(s) {
			continue
		}
		t.unlocked[a.ID] = struct{}{}
		fresh = append(fresh, a)
	}
	var err error
	if len(fresh) > 0 {
		err = t.saveLocked()
	}
	t.mu.Unlock()

	for _, a := range fresh {
		t.log.Info("achievement unlocked", "id", a.ID)
		t.topic.Emit(a)
	}
	return fresh, err
}

// Unlock unlocks id directly. It reports false when it was already
// unlocked.
func (t *Tracker) Unlock(id string) (bool, error) {
	a, ok := Lookup(id)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknown, id)
	}
	t.mu.Lock()
	if _, done := t.unlocked[id]; done {
		t.mu.Unlock()
		return false, nil
	}
	t.unlocked[id] = struct{}{}
	err := t.saveLocked()
	t.mu.Unlock()

	t.topic.Emit(a)
	return true, err
}

// Has reports whether id is unlocked.
func (t *Tracker) Has(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.unlocked[id]
	return ok
}

// IDs returns the unlocked ids in display order.
func (t *Tracker) IDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.idsLocked()
}

func (t *Tracker) idsLocked() []string {
	ids := make([]string, 0, len(t.unlocked))
	for _, a := range All {
		if _, ok := t.unlocked[a.ID]; ok {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// Progress counts unlocked achievements against the total.
func (t *Tracker) Progress() (unlocked, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.unlocked), len(All)
}

// Reset forgets every unlock and removes the persisted set.
func (t *Tracker) Reset() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.unlocked)
	if t.kv == nil {
		return nil
	}
	if err := t.kv.Remove(StorageKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("reset achievements: %w", err)
	}
	return nil
}

func (t *Tracker) saveLocked() error {
	if t.kv == nil {
		return nil
	}
	return storage.SetYAML(t.kv, StorageKey, document{Unlocked: t.idsLocked()})
}
