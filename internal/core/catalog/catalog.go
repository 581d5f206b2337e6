// Package catalog holds the read-only registry of service templates that seed
// a wizard session.
//
// The catalog is a value: it is built once (from the builtin list, a file, or
// imported compose documents) and only read afterwards. Every accessor returns
// deep copies so callers may edit what they get back.
package catalog

import (
	"errors"
	"fmt"

	"github.com/artpar/stackwizard/internal/core/domain"
)

// ErrDuplicateID is returned when two templates share an ID.
var ErrDuplicateID = errors.New("duplicate template id")

// Catalog is an ordered, immutable set of templates.
type Catalog struct {
	templates []domain.Template
	byID      map[string]int
}

// New builds a catalog from templates, keeping their order. Every template must
// pass domain.ValidateTemplate and IDs must be unique.
func New(templates ...domain.Template) (*Catalog, error) {
	c := &Catalog{
		templates: make([]domain.Template, 0, len(templates)),
		byID:      make(map[string]int, len(templates)),
	}
	for _, t := range templates {
		if errs := domain.ValidateTemplate(t); len(errs) > 0 {
			return nil, fmt.Errorf("template %q: %w", t.ID, errors.Join(errs...))
		}
		if _, exists := c.byID[t.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
		}
		t = t.Clone()
		t.Tags = domain.NormalizeTags(t.Tags)
		c.byID[t.ID] = len(c.templates)
		c.templates = append(c.templates, t)
	}
	return c, nil
}

// List returns every template in catalog order.
func (c *Catalog) List() []domain.Template {
	out := make([]domain.Template, len(c.templates))
	for i, t := range c.templates {
		out[i] = t.Clone()
	}
	return out
}

// Get looks a template up by ID.
func (c *Catalog) Get(id string) (domain.Template, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Template{}, false
	}
	return c.templates[i].Clone(), true
}

// Len returns the number of templates.
func (c *Catalog) Len() int {
	return len(c.templates)
}

// Categories returns the distinct categories in first-appearance order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range c.templates {
		if t.Category == "" || seen[t.Category] {
			continue
		}
		seen[t.Category] = true
		out = append(out, t.Category)
	}
	return out
}

// ByCategory returns the templates of one category in catalog order.
func (c *Catalog) ByCategory(category string) []domain.Template {
	var out []domain.Template
	for _, t := range c.templates {
		if t.Category == category {
			out = append(out, t.Clone())
		}
	}
	return out
}
