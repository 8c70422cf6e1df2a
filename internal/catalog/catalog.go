// Package catalog is the list of tools shown on the dashboard together with
// the educational facts displayed while a generation runs.
package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"math/rand/v2"

	"gopkg.in/yaml.v3"

	"github.com/edify-labs/edify/internal/store"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Entry describes one tool.
type Entry struct {
	Slug        string `yaml:"slug"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
	Implemented bool   `yaml:"implemented"`
}

// Catalog is the parsed tool list.
type Catalog struct {
	Tools []Entry  `yaml:"tools"`
	Facts []string `yaml:"facts"`

	bySlug map[string]int
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes a catalog document. Unknown keys, duplicate slugs and
// entries without a slug or name are rejected.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	c.bySlug = make(map[string]int, len(c.Tools))
	for i, e := range c.Tools {
		if e.Slug == "" || e.Name == "" {
			return nil, fmt.Errorf("catalog: entry %d needs a slug and a name", i+1)
		}
		if err := store.ValidateSlugFormat(e.Slug); err != nil {
			return nil, fmt.Errorf("catalog: %s: %w", e.Slug, err)
		}
		if _, dup := c.bySlug[e.Slug]; dup {
			return nil, fmt.Errorf("catalog: duplicate slug %q", e.Slug)
		}
		c.bySlug[e.Slug] = i
	}
	return &c, nil
}

// Get returns the entry for slug.
func (c *Catalog) Get(slug string) (Entry, bool) {
	i, ok := c.bySlug[slug]
	if !ok {
		return Entry{}, false
	}
	return c.Tools[i], true
}

// Implemented returns the entries that can be run, in catalog order.
func (c *Catalog) Implemented() []Entry {
	var out []Entry
	for _, e := range c.Tools {
		if e.Implemented {
			out = append(out, e)
		}
	}
	return out
}

// RandomFact returns one of the facts, or "" when there are none.
func (c *Catalog) RandomFact() string {
	if len(c.Facts) == 0 {
		return ""
	}
	return c.Facts[rand.IntN(len(c.Facts))]
}

// Defs converts the catalog to the rows kept in ai_tools.
func (c *Catalog) Defs() []store.ToolDef {
	defs := make([]store.ToolDef, len(c.Tools))
	for i, e := range c.Tools {
		defs[i] = store.ToolDef{
			Slug:        e.Slug,
			Name:        e.Name,
			Description: e.Description,
			Icon:        e.Icon,
			Implemented: e.Implemented,
		}
	}
	return defs
}

// Syncer stores catalog rows.
type Syncer interface {
	Sync(ctx context.Context, defs []store.ToolDef) error
}

// Sync writes the catalog into s.
func (c *Catalog) Sync(ctx context.Context, s Syncer) error {
	if err := s.Sync(ctx, c.Defs()); err != nil {
		return fmt.Errorf("catalog: sync: %w", err)
	}
	return nil
}
