package command

import (
	devrunerrors "github.com/runlabhq/devrun/internal/errors"
)

// Registry maps command names to their specs while preserving insertion
// order for usage listings. It is constructed once at startup and passed
// into the dispatcher; there is no ambient global table.
type Registry struct {
	specs map[string]Spec
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]Spec)}
}

// Register adds a spec to the registry. Registering a name twice is a
// programmer (or config) error and returns a DuplicateCommand error.
func (r *Registry) Register(spec Spec) error {
	if _, exists := r.specs[spec.Name]; exists {
		return devrunerrors.NewDuplicateCommandError(spec.Name)
	}
	r.specs[spec.Name] = spec
	r.order = append(r.order, spec.Name)
	return nil
}

// MustRegister registers a spec and panics on duplicate names. Used for
// the built-in table, where a collision cannot be a user mistake.
func (r *Registry) MustRegister(spec Spec) {
	if err := r.Register(spec); err != nil {
		panic(err)
	}
}

// Lookup returns the spec for name and whether it exists.
func (r *Registry) Lookup(name string) (Spec, bool) {
	spec, ok := r.specs[name]
	return spec, ok
}

// List returns all registered specs in insertion order.
func (r *Registry) List() []Spec {
	out := make([]Spec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.specs[name])
	}
	return out
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	return len(r.order)
}
