// Package trigger maps combinations of active elements to transmutation
// rules and fires each match once.
package trigger

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// MinCombination is the smallest element set that can match a rule.
const MinCombination = 2

var (
	ErrInvalidRule   = errors.New("trigger: invalid rule")
	ErrDuplicateRule = errors.New("trigger: duplicate combination")
)

// Rule is one entry of the combination table.
type Rule struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	Elements  []string `yaml:"elements"`
	Message   string   `yaml:"message"`
	Effect    string   `yaml:"effect"`
	Pattern   string   `yaml:"pattern,omitempty"` // pattern revealed on fire
	Narrative string   `yaml:"narrative,omitempty"`
	Icon      string   `yaml:"icon,omitempty"`
	XP        int      `yaml:"xp"`
}

// Key returns the rule's canonical combination key.
func (r Rule) Key() string {
	return Canonical(r.Elements)
}

// Canonical sorts and de-duplicates ids and joins them with commas.
func Canonical(ids []string) string {
	set := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := set[id]; dup {
			continue
		}
		set[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

// Table is a read-only set of rules keyed by canonical combination.
type Table struct {
	rules map[string]Rule
}

// NewTable validates and indexes rules. Element order in the input does
// not matter: "terra,ar" and "ar,terra" name the same combination.
func NewTable(rules []Rule) (*Table, error) {
	t := &Table{rules: make(map[string]Rule, len(rules))}
	for i, r := range rules {
		key := r.Key()
		if len(strings.Split(key, ",")) < MinCombination || strings.Contains(","+key+",", ",,") {
			return nil, fmt.Errorf("%w: rule %d (%q) needs %d distinct elements", ErrInvalidRule, i, r.ID, MinCombination)
		}
		if prev, ok := t.rules[key]; ok {
			return nil, fmt.Errorf("%w: %q used by %q and %q", ErrDuplicateRule, key, prev.ID, r.ID)
		}
		r.Elements = strings.Split(key, ",")
		t.rules[key] = r
	}
	return t, nil
}

// Lookup finds the rule for a canonical key.
func (t *Table) Lookup(key string) (Rule, bool) {
	r, ok := t.rules[key]
	return r, ok
}

// Len returns the number of rules.
func (t *Table) Len() int { return len(t.rules) }

// Rules returns every rule ordered by key.
func (t *Table) Rules() []Rule {
	keys := make([]string, 0, len(t.rules))
	for k := range t.rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Rule, 0, len(keys))
	for _, k := range keys {
		out = append(out, t.rules[k])
	}
	return out
}
