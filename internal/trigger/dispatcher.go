package trigger

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/alexxanorafa/Jornada-Arquetipica/internal/bus"
)

// ElementSet is the set of currently selected element ids.
type ElementSet struct {
	m map[string]struct{}
}

// NewElementSet returns a set holding ids.
func NewElementSet(ids ...string) *ElementSet {
	s := &ElementSet{m: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.m[id] = struct{}{}
	}
	return s
}

// Toggle flips membership of id and reports whether it is now present.
func (s *ElementSet) Toggle(id string) bool {
	if _, ok := s.m[id]; ok {
		delete(s.m, id)
		return false
	}
	s.m[id] = struct{}{}
	return true
}

// Add inserts id and reports whether the set changed.
func (s *ElementSet) Add(id string) bool {
	if _, ok := s.m[id]; ok {
		return false
	}
	s.m[id] = struct{}{}
	return true
}

// Remove deletes id and reports whether the set changed.
func (s *ElementSet) Remove(id string) bool {
	if _, ok := s.m[id]; !ok {
		return false
	}
	delete(s.m, id)
	return true
}

// Has reports membership.
func (s *ElementSet) Has(id string) bool {
	_, ok := s.m[id]
	return ok
}

// Len returns the number of members.
func (s *ElementSet) Len() int { return len(s.m) }

// Clear empties the set.
func (s *ElementSet) Clear() {
	clear(s.m)
}

// IDs returns the members sorted.
func (s *ElementSet) IDs() []string {
	ids := make([]string, 0, len(s.m))
	for id := range s.m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Key returns the canonical combination key of the set.
func (s *ElementSet) Key() string {
	return Canonical(s.IDs())
}

// State is the dispatcher's position in its Idle/Armed/Fired cycle.
type State int

const (
	Idle State = iota
	Armed
	Fired
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Fired:
		return "fired"
	default:
		return "unknown"
	}
}

// Event is emitted once each time the active set settles on a rule's key.
type Event struct {
	ID       string
	Rule     Rule
	Key      string
	Elements []string
	At       time.Time
}

// Dispatcher evaluates element sets against a Table, edge-triggered: a
// rule fires again only after the set has left its key.
type Dispatcher struct {
	table     *Table
	state     State
	lastFired string
	fired     *bus.Topic[Event]
	now       func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClock replaces time.Now for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// NewDispatcher returns an idle dispatcher over table.
func NewDispatcher(table *Table, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		table: table,
		fired: bus.NewTopic[Event]("trigger.fired"),
		now:   time.Now,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// State returns the current state.
func (d *Dispatcher) State() State { return d.state }

// Fired is the topic Dispatch publishes on.
func (d *Dispatcher) Fired() *bus.Topic[Event] { return d.fired }

// Table returns the rule table.
func (d *Dispatcher) Table() *Table { return d.table }

// Evaluate checks set against the table and returns the event to emit, if
// this evaluation is the edge into a matching key. It does not publish.
func (d *Dispatcher) Evaluate(set *ElementSet) (Event, bool) {
	if set == nil || set.Len() == 0 {
		d.state = Idle
		d.lastFired = ""
		return Event{}, false
	}

	key := set.Key()
	if d.state == Fired && key == d.lastFired {
		return Event{}, false
	}

	if set.Len() >= MinCombination {
		if r, ok := d.table.Lookup(key); ok {
			d.state = Fired
			d.lastFired = key
			return Event{
				ID:       uuid.NewString(),
				Rule:     r,
				Key:      key,
				Elements: set.IDs(),
				At:       d.now(),
			}, true
		}
		d.state = Armed
	} else {
		d.state = Idle
	}
	d.lastFired = ""
	return Event{}, false
}

// Dispatch evaluates set and publishes a fired event on Fired.
func (d *Dispatcher) Dispatch(set *ElementSet) (Event, bool) {
	ev, ok := d.Evaluate(set)
	if ok {
		d.fired.Emit(ev)
	}
	return ev, ok
}

// Reset returns the dispatcher to Idle and forgets the last fired key.
func (d *Dispatcher) Reset() {
	d.state = Idle
	d.lastFired = ""
}
