package model

import "iter"

// Registry maps type names to their descriptions across every source file.
// Iteration follows first-registration order.
type Registry struct {
	types Members[*TypeDescription]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers t. A type already registered under the same name is
// replaced (last wins) and Add reports true.
func (r *Registry) Add(t *TypeDescription) bool {
	replaced := r.types.Has(t.Name)
	r.types.Put(t.Name, func(int) *TypeDescription { return t })
	return replaced
}

// Merge adds every type in order and returns the names that replaced an
// existing entry.
func (r *Registry) Merge(types []*TypeDescription) []string {
	var dups []string
	for _, t := range types {
		if r.Add(t) {
			dups = append(dups, t.Name)
		}
	}
	return dups
}

// Get looks up a type by name.
func (r *Registry) Get(name string) (*TypeDescription, bool) {
	return r.types.Get(name)
}

// Len returns the number of registered types.
func (r *Registry) Len() int { return r.types.Len() }

// All iterates the registered types in registration order.
func (r *Registry) All() iter.Seq[*TypeDescription] {
	return func(yield func(*TypeDescription) bool) {
		for _, t := range r.types.All() {
			if !yield(t) {
				return
			}
		}
	}
}

// Filter returns a registry holding the types for which keep returns true,
// in the same order. The descriptions are shared, not copied.
func (r *Registry) Filter(keep func(*TypeDescription) bool) *Registry {
	out := NewRegistry()
	for t := range r.All() {
		if keep(t) {
			out.Add(t)
		}
	}
	return out
}
