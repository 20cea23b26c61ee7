package journal

import (
	"errors"
	"testing"
	"time"

	"github.com/alexxanorafa/Jornada-Arquetipica/internal/bus"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/storage"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/trigger"
)

func event(id string, xp int, elems ...string) trigger.Event {
	return trigger.Event{
		ID:       "ev-" + id,
		Rule:     trigger.Rule{ID: id, Name: id, Elements: elems, XP: xp},
		Key:      trigger.Canonical(elems),
		Elements: elems,
		At:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRecordAccumulatesXP(t *testing.T) {
	j := New(nil, nil)
	if _, err := j.Record(event("vapor", 100, "agua", "fogo")); err != nil {
		t.Fatal(err)
	}
	if _, err := j.Record(event("vapor", 100, "agua", "fogo")); err != nil {
		t.Fatal(err)
	}
	e, _ := j.Record(event("mystery", 0, "caos", "ordem"))
	if e.XP != DefaultXP {
		t.Errorf("rule without xp earned %d", e.XP)
	}

	if j.XP() != 250 {
		t.Errorf("XP = %d, want 250", j.XP())
	}
	if got := j.Discovered(); len(got) != 2 || got[0] != "mystery" || got[1] != "vapor" {
		t.Errorf("Discovered = %v", got)
	}
	if lvl := j.Level(); lvl.Number != 2 || lvl.Title != "Noviço" {
		t.Errorf("Level = %+v", lvl)
	}
	if p := j.Progress(); p != 0.75 {
		t.Errorf("Progress = %v, want 0.75", p)
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		xp, level int
		next      bool
	}{
		{0, 1, true},
		{99, 1, true},
		{100, 2, true},
		{4499, 9, true},
		{4500, 10, false},
		{99999, 10, false},
	}
	for _, tt := range tests {
		cur, _, next := LevelFor(tt.xp)
		if cur.Number != tt.level || next != tt.next {
			t.Errorf("LevelFor(%d) = %d/%v, want %d/%v", tt.xp, cur.Number, next, tt.level, tt.next)
		}
	}
}

func TestPersistAndLoad(t *testing.T) {
	kv := storage.NewMemoryStore()
	j := New(kv, nil)

	topic := bus.NewTopic[trigger.Event]("trigger")
	j.Subscribe(topic)
	topic.Emit(event("poeira", 100, "ar", "terra"))

	entries := j.Entries()
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	if err := j.Annotate(entries[0].ID, "a reflection"); err != nil {
		t.Fatal(err)
	}

	reloaded := New(kv, nil)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := reloaded.Entries()
	if len(got) != 1 || got[0].Key != "ar,terra" || got[0].Note != "a reflection" {
		t.Fatalf("reloaded = %+v", got)
	}
	if reloaded.XP() != 100 {
		t.Errorf("reloaded XP = %d", reloaded.XP())
	}
}

func TestLoadEmptyStore(t *testing.T) {
	j := New(storage.NewMemoryStore(), nil)
	if err := j.Load(); err != nil {
		t.Errorf("Load on empty store: %v", err)
	}
	if err := j.Annotate("nope", "x"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
