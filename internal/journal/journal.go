// Package journal records transmutations and the experience they earn.
package journal

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alexxanorafa/Jornada-Arquetipica/internal/bus"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/storage"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/trigger"
)

// StorageKey is where the journal is persisted.
const StorageKey = "journal"

// DefaultXP is awarded for rules that do not set their own.
const DefaultXP = 50

// Entry is one recorded transmutation.
type Entry struct {
	ID       string    `yaml:"id"`
	EventID  string    `yaml:"event_id"`
	RuleID   string    `yaml:"rule_id"`
	Name     string    `yaml:"name"`
	Icon     string    `yaml:"icon,omitempty"`
	Key      string    `yaml:"key"`
	Elements []string  `yaml:"elements"`
	XP       int       `yaml:"xp"`
	Note     string    `yaml:"note,omitempty"`
	At       time.Time `yaml:"at"`
}

// Level is a progression rank.
type Level struct {
	Number int
	XP     int
	Title  string
}

var levels = []Level{
	{1, 0, "Aprendiz"},
	{2, 100, "Noviço"},
	{3, 300, "Adepto"},
	{4, 600, "Mago"},
	{5, 1000, "Arquimago"},
	{6, 1500, "Alquimista"},
	{7, 2100, "Mestre Alquimista"},
	{8, 2800, "Grão-Mestre"},
	{9, 3600, "Iluminado"},
	{10, 4500, "Transmutador Supremo"},
}

// LevelFor returns the highest level reached with xp, and the next one.
// next is false at the top level.
func LevelFor(xp int) (cur Level, nextLevel Level, next bool) {
	cur = levels[0]
	for i, l := range levels {
		if xp < l.XP {
			return cur, levels[i], true
		}
		cur = l
	}
	return cur, Level{}, false
}

type document struct {
	Entries []Entry `yaml:"entries"`
}

// Journal is safe for concurrent use.
type Journal struct {
	mu      sync.Mutex
	kv      storage.KV
	log     *slog.Logger
	entries []Entry
	xp      int
	seen    map[string]struct{}
	changed *bus.Topic[Entry]
}

// New returns an empty journal persisting through kv. kv may be nil.
func New(kv storage.KV, log *slog.Logger) *Journal {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Journal{
		kv:      kv,
		log:     log,
		seen:    make(map[string]struct{}),
		changed: bus.NewTopic[Entry]("journal.entry"),
	}
}

// Load replaces the in-memory journal with the persisted one. A missing
// journal is not an error.
func (j *Journal) Load() error {
	if j.kv == nil {
		return nil
	}
	var doc document
	err := storage.GetYAML(j.kv, StorageKey, &doc)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load journal: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = doc.Entries
	j.xp = 0
	clear(j.seen)
	for _, e := range j.entries {
		j.xp += e.XP
		j.seen[e.RuleID] = struct{}{}
	}
	return nil
}

// Added publishes every entry after it is recorded.
func (j *Journal) Added() *bus.Topic[Entry] { return j.changed }

// Subscribe records every event published on topic.
func (j *Journal) Subscribe(topic *bus.Topic[trigger.Event]) bus.Subscription {
	return topic.On(func(ev trigger.Event) {
		if _, err := j.Record(ev); err != nil {
			j.log.Error("journal record failed", "rule", ev.Rule.ID, "error", err)
		}
	})
}

// Record appends an entry for ev and persists the journal. The entry is
// kept even when persisting fails.
func (j *Journal) Record(ev trigger.Event) (Entry, error) {
	xp := ev.Rule.XP
	if xp <= 0 {
		xp = DefaultXP
	}
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	e := Entry{
		ID:       uuid.NewString(),
		EventID:  ev.ID,
		RuleID:   ev.Rule.ID,
		Name:     ev.Rule.Name,
		Icon:     ev.Rule.Icon,
		Key:      ev.Key,
		Elements: append([]string(nil), ev.Elements...),
		XP:       xp,
		At:       at,
	}

	j.mu.Lock()
	before, _, _ := LevelFor(j.xp)
	j.entries = append(j.entries, e)
	j.xp += xp
	j.seen[e.RuleID] = struct{}{}
	after, _, _ := LevelFor(j.xp)
	err := j.saveLocked()
	j.mu.Unlock()

	if after.Number > before.Number {
		j.log.Info("level up", "level", after.Number, "title", after.Title)
	}
	j.changed.Emit(e)
	return e, err
}

// Annotate attaches a note, such as a narration, to an entry.
func (j *Journal) Annotate(id, note string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i := range j.entries {
		if j.entries[i].ID == id {
			j.entries[i].Note = note
			return j.saveLocked()
		}
	}
	return fmt.Errorf("journal entry %s: %w", id, storage.ErrNotFound)
}

// ForEvent returns the entry recorded for a trigger event id.
func (j *Journal) ForEvent(eventID string) (Entry, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, e := range j.entries {
		if e.EventID == eventID {
			return e, true
		}
	}
	return Entry{}, false
}

func (j *Journal) saveLocked() error {
	if j.kv == nil {
		return nil
	}
	return storage.SetYAML(j.kv, StorageKey, document{Entries: j.entries})
}

// Entries returns a copy of the entries, oldest first.
func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]Entry(nil), j.entries...)
}

// XP returns the total experience earned.
func (j *Journal) XP() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.xp
}

// Level returns the current level.
func (j *Journal) Level() Level {
	cur, _, _ := LevelFor(j.XP())
	return cur
}

// Progress returns how far into the current level the journal is, in [0,1].
func (j *Journal) Progress() float64 {
	xp := j.XP()
	cur, next, ok := LevelFor(xp)
	if !ok {
		return 1
	}
	return float64(xp-cur.XP) / float64(next.XP-cur.XP)
}

// Discovered returns the distinct rule ids recorded, sorted.
func (j *Journal) Discovered() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	ids := make([]string, 0, len(j.seen))
	for id := range j.seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
