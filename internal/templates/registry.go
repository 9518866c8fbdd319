package templates

import (
	"context"
	"embed"
	"sort"
	"sync"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Builtin parses the templates compiled into the binary.
func Builtin() ([]*Template, error) {
	return LoadFS(context.Background(), builtinFS, "builtin")
}

// Registry holds templates keyed by ID. It is filled at startup and read
// concurrently afterwards.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewRegistry creates a registry holding the given templates
func NewRegistry(templates ...*Template) *Registry {
	r := &Registry{templates: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		r.Register(t)
	}
	return r
}

// Register adds t, replacing any template with the same ID.
func (r *Registry) Register(t *Template) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[t.ID] = t
}

// Get returns the template with the given ID.
func (r *Registry) Get(id string) (*Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[id]
	return t, ok
}

// List returns every template sorted by ID.
func (r *Registry) List() []*Template {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Template, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
