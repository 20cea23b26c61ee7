package trigger

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func testTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable([]Rule{
		{ID: "vapor", Name: "Vapor da Alma", Elements: []string{"agua", "fogo"}, Message: "Água + Fogo = Vapor da Transformação", Effect: "reveal", Pattern: "spiral"},
		{ID: "poeira", Name: "Poeira Cósmica", Elements: []string{"terra", "ar"}, Effect: "reveal", Pattern: "crystal"},
		{ID: "geiser", Name: "Gêiser da Alma", Elements: []string{"agua", "fogo", "terra"}},
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return table
}

func TestCanonical(t *testing.T) {
	if got := Canonical([]string{"fogo", "agua", "fogo"}); got != "agua,fogo" {
		t.Errorf("Canonical = %q", got)
	}
}

func TestTableCanonicalizesKeys(t *testing.T) {
	table := testTable(t)
	r, ok := table.Lookup("ar,terra")
	if !ok || r.ID != "poeira" {
		t.Fatalf("terra,ar should be stored under ar,terra, got %+v ok=%v", r, ok)
	}
	if !reflect.DeepEqual(r.Elements, []string{"ar", "terra"}) {
		t.Errorf("elements not canonical: %v", r.Elements)
	}
	if table.Len() != 3 || len(table.Rules()) != 3 {
		t.Errorf("unexpected size %d", table.Len())
	}
}

func TestTableRejectsBadRules(t *testing.T) {
	_, err := NewTable([]Rule{
		{ID: "a", Elements: []string{"agua", "fogo"}},
		{ID: "b", Elements: []string{"fogo", "agua"}},
	})
	if !errors.Is(err, ErrDuplicateRule) {
		t.Errorf("expected ErrDuplicateRule, got %v", err)
	}

	for _, elems := range [][]string{nil, {"agua"}, {"agua", "agua"}, {"", "agua"}} {
		if _, err := NewTable([]Rule{{ID: "x", Elements: elems}}); !errors.Is(err, ErrInvalidRule) {
			t.Errorf("%v: expected ErrInvalidRule, got %v", elems, err)
		}
	}
}

func TestToggleTwiceRestoresSet(t *testing.T) {
	s := NewElementSet("agua", "terra")
	before := s.IDs()

	for _, id := range []string{"agua", "fogo"} {
		s.Toggle(id)
		s.Toggle(id)
		if got := s.IDs(); !reflect.DeepEqual(got, before) {
			t.Errorf("toggle %s twice: %v, want %v", id, got, before)
		}
	}
}

func TestSymmetricPairsResolveToSameRule(t *testing.T) {
	d := NewDispatcher(testTable(t))
	a, okA := d.Evaluate(NewElementSet("agua", "fogo"))
	d.Reset()
	b, okB := d.Evaluate(NewElementSet("fogo", "agua"))

	if !okA || !okB {
		t.Fatal("both orders should match")
	}
	if !reflect.DeepEqual(a.Rule, b.Rule) || a.Rule.ID != "vapor" {
		t.Errorf("rules differ: %+v vs %+v", a.Rule, b.Rule)
	}
}

func TestEvaluateIsEdgeTriggered(t *testing.T) {
	d := NewDispatcher(testTable(t))
	set := NewElementSet("agua", "fogo")

	fires := 0
	for i := 0; i < 5; i++ {
		if _, ok := d.Evaluate(set); ok {
			fires++
		}
	}
	if fires != 1 {
		t.Fatalf("fired %d times for a stable key, want 1", fires)
	}

	set.Toggle("terra") // agua,fogo,terra matches geiser
	if ev, ok := d.Evaluate(set); !ok || ev.Rule.ID != "geiser" {
		t.Fatalf("expected geiser to fire, got %+v ok=%v", ev, ok)
	}
	set.Toggle("terra") // back to agua,fogo
	if ev, ok := d.Evaluate(set); !ok || ev.Rule.ID != "vapor" {
		t.Fatalf("returning to agua,fogo should fire once more, got ok=%v", ok)
	}
	if _, ok := d.Evaluate(set); ok {
		t.Error("second evaluation after returning should not fire")
	}
}

func TestChangeAwayThroughNoMatchAndBack(t *testing.T) {
	d := NewDispatcher(testTable(t))
	set := NewElementSet("agua", "fogo")
	d.Evaluate(set)

	set.Toggle("espirito")
	if _, ok := d.Evaluate(set); ok {
		t.Fatal("agua,espirito,fogo has no rule")
	}
	if d.State() != Armed {
		t.Errorf("state = %v, want armed", d.State())
	}

	set.Toggle("espirito")
	if _, ok := d.Evaluate(set); !ok {
		t.Error("returning to agua,fogo should fire again")
	}
}

func TestStateTransitions(t *testing.T) {
	d := NewDispatcher(testTable(t))
	set := NewElementSet()

	if d.Evaluate(set); d.State() != Idle {
		t.Errorf("empty: %v", d.State())
	}
	set.Toggle("agua")
	if d.Evaluate(set); d.State() != Idle {
		t.Errorf("one element: %v", d.State())
	}
	set.Toggle("luz")
	if d.Evaluate(set); d.State() != Armed {
		t.Errorf("two unmatched: %v", d.State())
	}
	set.Toggle("luz")
	set.Toggle("fogo")
	if d.Evaluate(set); d.State() != Fired {
		t.Errorf("matched: %v", d.State())
	}
	set.Clear()
	if d.Evaluate(set); d.State() != Idle {
		t.Errorf("cleared: %v", d.State())
	}
}

func TestResetAllowsRefire(t *testing.T) {
	d := NewDispatcher(testTable(t))
	set := NewElementSet("agua", "fogo")
	d.Evaluate(set)
	d.Reset()
	if d.State() != Idle {
		t.Fatalf("state after reset = %v", d.State())
	}
	if _, ok := d.Evaluate(set); !ok {
		t.Error("expected fire after reset")
	}
}

func TestDispatchPublishes(t *testing.T) {
	at := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	d := NewDispatcher(testTable(t), WithClock(func() time.Time { return at }))

	var got []Event
	d.Fired().On(func(ev Event) { got = append(got, ev) })

	set := NewElementSet("terra", "ar")
	d.Dispatch(set)
	d.Dispatch(set)

	if len(got) != 1 {
		t.Fatalf("published %d events, want 1", len(got))
	}
	ev := got[0]
	if ev.Key != "ar,terra" || !ev.At.Equal(at) || ev.ID == "" {
		t.Errorf("unexpected event %+v", ev)
	}
	if ev.Rule.Pattern != "crystal" {
		t.Errorf("pattern = %q", ev.Rule.Pattern)
	}
}
