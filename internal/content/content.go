// Package content loads the embedded element and combination tables.
package content

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/alexxanorafa/Jornada-Arquetipica/internal/geom"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/proximity"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/trigger"
)

//go:embed elements.yaml
var elementsYAML []byte

//go:embed fusions.yaml
var fusionsYAML []byte

var ErrDuplicateElement = errors.New("content: duplicate element")

// Kind separates archetype cards from alchemical symbols.
type Kind string

const (
	Archetype Kind = "archetype"
	Symbol    Kind = "symbol"
)

// Anchor is an element's position on the canvas.
type Anchor struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Element is one selectable archetype or symbol.
type Element struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	Icon     string `yaml:"icon"`
	Color    string `yaml:"color"`
	Key      string `yaml:"key"`
	Anchor   Anchor `yaml:"anchor"`
	Kind     Kind   `yaml:"-"`
}

// Point returns the anchor as a canvas point.
func (e Element) Point() geom.Point {
	return geom.Pt(e.Anchor.X, e.Anchor.Y)
}

type elementsFile struct {
	Archetypes []Element `yaml:"archetypes"`
	Symbols    []Element `yaml:"symbols"`
}

type fusionsFile struct {
	Fusions []trigger.Rule `yaml:"fusions"`
}

// Catalog is the loaded content.
type Catalog struct {
	Elements []Element
	Rules    []trigger.Rule

	byID  map[string]int
	byKey map[string]int
}

// Load parses the embedded tables.
func Load() (*Catalog, error) {
	return Parse(elementsYAML, fusionsYAML)
}

// Parse builds a catalog from raw YAML tables.
func Parse(elements, fusions []byte) (*Catalog, error) {
	var ef elementsFile
	if err := yaml.Unmarshal(elements, &ef); err != nil {
		return nil, fmt.Errorf("parse elements: %w", err)
	}
	var ff fusionsFile
	if err := yaml.Unmarshal(fusions, &ff); err != nil {
		return nil, fmt.Errorf("parse fusions: %w", err)
	}

	c := &Catalog{
		Rules: ff.Fusions,
		byID:  make(map[string]int),
		byKey: make(map[string]int),
	}
	add := func(list []Element, kind Kind) error {
		for _, e := range list {
			if _, dup := c.byID[e.ID]; dup {
				return fmt.Errorf("%w: %q", ErrDuplicateElement, e.ID)
			}
			if _, dup := c.byKey[e.Key]; dup && e.Key != "" {
				return fmt.Errorf("%w: key %q on %q", ErrDuplicateElement, e.Key, e.ID)
			}
			e.Kind = kind
			c.byID[e.ID] = len(c.Elements)
			if e.Key != "" {
				c.byKey[e.Key] = len(c.Elements)
			}
			c.Elements = append(c.Elements, e)
		}
		return nil
	}
	if err := add(ef.Archetypes, Archetype); err != nil {
		return nil, err
	}
	if err := add(ef.Symbols, Symbol); err != nil {
		return nil, err
	}
	return c, nil
}

// Table builds the rule table, validating every fusion.
func (c *Catalog) Table() (*trigger.Table, error) {
	return trigger.NewTable(c.Rules)
}

// Element looks an element up by id.
func (c *Catalog) Element(id string) (Element, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Element{}, false
	}
	return c.Elements[i], true
}

// ByKey returns the element bound to a keyboard shortcut.
func (c *Catalog) ByKey(key string) (Element, bool) {
	i, ok := c.byKey[key]
	if !ok {
		return Element{}, false
	}
	return c.Elements[i], true
}

// Candidates returns every element anchor as a proximity target.
func (c *Catalog) Candidates() []proximity.Candidate {
	out := make([]proximity.Candidate, 0, len(c.Elements))
	for _, e := range c.Elements {
		out = append(out, proximity.Candidate{ID: e.ID, Center: e.Point()})
	}
	return out
}
