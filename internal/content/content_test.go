package content

import (
	"errors"
	"testing"

	"github.com/alexxanorafa/Jornada-Arquetipica/internal/trigger"
)

func TestLoadEmbedded(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Elements) != 13 {
		t.Errorf("got %d elements, want 13", len(c.Elements))
	}
	if len(c.Rules) != 12 {
		t.Errorf("got %d fusions, want 12", len(c.Rules))
	}

	table, err := c.Table()
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	for key, pattern := range map[string]string{"agua,fogo": "spiral", "ar,terra": "crystal"} {
		r, ok := table.Lookup(key)
		if !ok || r.Effect != "reveal" || r.Pattern != pattern {
			t.Errorf("%s: got %+v ok=%v", key, r, ok)
		}
	}
}

func TestEveryRuleUsesKnownElements(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range c.Rules {
		for _, id := range r.Elements {
			if _, ok := c.Element(id); !ok {
				t.Errorf("rule %s references unknown element %q", r.ID, id)
			}
		}
	}
}

func TestLookups(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	e, ok := c.ByKey("1")
	if !ok || e.ID != "agua" || e.Kind != Archetype {
		t.Errorf("key 1 = %+v ok=%v", e, ok)
	}
	if s, ok := c.Element("sal"); !ok || s.Kind != Symbol {
		t.Errorf("sal = %+v ok=%v", s, ok)
	}

	cands := c.Candidates()
	if len(cands) != len(c.Elements) || cands[0].ID != "agua" {
		t.Fatalf("candidates = %v", cands)
	}
	if cands[0].Center.X != 300 || cands[0].Center.Y != 40 {
		t.Errorf("agua anchor = %v", cands[0].Center)
	}
}

func TestParseRejectsDuplicates(t *testing.T) {
	for name, elems := range map[string]string{
		"id":  "archetypes:\n  - {id: agua}\nsymbols:\n  - {id: agua}\n",
		"key": "archetypes:\n  - {id: agua, key: \"1\"}\n  - {id: fogo, key: \"1\"}\n",
	} {
		if _, err := Parse([]byte(elems), nil); !errors.Is(err, ErrDuplicateElement) {
			t.Errorf("duplicate %s: expected ErrDuplicateElement, got %v", name, err)
		}
	}
	if _, err := Parse([]byte("archetypes:\n  - {id: agua}\n  - {id: fogo}\n"), nil); err != nil {
		t.Errorf("elements without keys should load: %v", err)
	}

	bad := []byte("fusions:\n  - {id: x, elements: [agua]}\n")
	c, err := Parse(nil, bad)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Table(); !errors.Is(err, trigger.ErrInvalidRule) {
		t.Errorf("expected ErrInvalidRule, got %v", err)
	}
}
