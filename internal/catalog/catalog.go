// Package catalog loads card templates from YAML data files. The catalog is
// read once at startup and read-only afterwards.
package catalog

import (
	"fmt"
	"os"

	"github.com/shoukanhq/shoukan-server-go/internal/game/card"
	"gopkg.in/yaml.v3"
)

// Catalog is an indexed, immutable set of card templates.
type Catalog struct {
	templates map[string]card.Template
	order     []string
}

type cardsFile struct {
	Cards []card.Template `yaml:"cards"`
}

// Load reads a YAML card file and validates every template.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read card catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a catalog from raw YAML.
func Parse(data []byte) (*Catalog, error) {
	var file cardsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse card catalog: %w", err)
	}

	cat := &Catalog{templates: make(map[string]card.Template, len(file.Cards))}
	for i := range file.Cards {
		tpl := file.Cards[i]
		if err := resolveClass(&tpl); err != nil {
			return nil, fmt.Errorf("card %q: %w", tpl.ID, err)
		}
		if err := validate(tpl); err != nil {
			return nil, fmt.Errorf("card %q: %w", tpl.ID, err)
		}
		if _, dup := cat.templates[tpl.ID]; dup {
			return nil, fmt.Errorf("duplicate card id %q", tpl.ID)
		}
		cat.templates[tpl.ID] = tpl
		cat.order = append(cat.order, tpl.ID)
	}
	return cat, nil
}

func resolveClass(tpl *card.Template) error {
	switch tpl.ClassName {
	case "senshi":
		tpl.Class = card.ClassSenshi
	case "evogear":
		tpl.Class = card.ClassEvogear
	case "field":
		tpl.Class = card.ClassField
	default:
		return fmt.Errorf("unknown class %q", tpl.ClassName)
	}
	return nil
}

func validate(tpl card.Template) error {
	if tpl.ID == "" {
		return fmt.Errorf("missing id")
	}
	if tpl.Name == "" {
		return fmt.Errorf("missing name")
	}
	if tpl.ManaCost < 0 || tpl.BloodCost < 0 || tpl.SacrificeCost < 0 {
		return fmt.Errorf("negative cost")
	}
	if tpl.Attack < 0 || tpl.Defense < 0 {
		return fmt.Errorf("negative stat")
	}
	if tpl.EffectID != "" {
		if _, ok := card.LookupEffect(tpl.EffectID); !ok {
			return fmt.Errorf("unknown effect %q", tpl.EffectID)
		}
	}
	return nil
}

// Get returns a template by ID.
func (c *Catalog) Get(id string) (card.Template, bool) {
	tpl, ok := c.templates[id]
	return tpl, ok
}

// Resolve maps a list of card IDs to templates, preserving order. Unknown
// IDs are an error; a deck referencing a missing card is invalid.
func (c *Catalog) Resolve(ids []string) ([]card.Template, error) {
	out := make([]card.Template, 0, len(ids))
	for _, id := range ids {
		tpl, ok := c.templates[id]
		if !ok {
			return nil, fmt.Errorf("unknown card id %q", id)
		}
		out = append(out, tpl)
	}
	return out, nil
}

// All returns every template in file order.
func (c *Catalog) All() []card.Template {
	out := make([]card.Template, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.templates[id])
	}
	return out
}

// Len returns the number of templates.
func (c *Catalog) Len() int { return len(c.order) }
