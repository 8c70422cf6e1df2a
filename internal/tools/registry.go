package tools

// Registry maps slugs to tool implementations.
type Registry struct {
	bySlug map[string]Tool
	order  []string
}

// NewRegistry registers ts in order. A later tool with the same slug replaces
// an earlier one.
func NewRegistry(ts ...Tool) *Registry {
	r := &Registry{bySlug: make(map[string]Tool, len(ts))}
	for _, t := range ts {
		if _, ok := r.bySlug[t.Slug()]; !ok {
			r.order = append(r.order, t.Slug())
		}
		r.bySlug[t.Slug()] = t
	}
	return r
}

// Get returns the tool for slug.
func (r *Registry) Get(slug string) (Tool, bool) {
	t, ok := r.bySlug[slug]
	return t, ok
}

// Has reports whether slug has an implementation.
func (r *Registry) Has(slug string) bool {
	_, ok := r.bySlug[slug]
	return ok
}

// Slugs returns registered slugs in registration order.
func (r *Registry) Slugs() []string {
	return append([]string(nil), r.order...)
}
