package model

import "iter"

// Members is a name-keyed collection that remembers insertion order. Each
// name receives its order exactly once, on first insertion; replacing the
// value under an existing name keeps the original position.
type Members[T any] struct {
	start int
	names []string
	byKey map[string]T
	order map[string]int
}

// NewMembers returns an empty collection whose first member gets order start.
func NewMembers[T any](start int) Members[T] {
	return Members[T]{start: start}
}

// Put stores the value built for name. build receives the order assigned to
// name, which is a fresh one only when name has not been seen before.
func (m *Members[T]) Put(name string, build func(order int) T) T {
	if m.byKey == nil {
		m.byKey = make(map[string]T)
		m.order = make(map[string]int)
	}
	ord, seen := m.order[name]
	if !seen {
		ord = m.start + len(m.names)
		m.order[name] = ord
		m.names = append(m.names, name)
	}
	v := build(ord)
	m.byKey[name] = v
	return v
}

// Get returns the member stored under name.
func (m *Members[T]) Get(name string) (T, bool) {
	v, ok := m.byKey[name]
	return v, ok
}

// Has reports whether name has been inserted.
func (m *Members[T]) Has(name string) bool {
	_, ok := m.byKey[name]
	return ok
}

// OrderOf returns the order assigned to name.
func (m *Members[T]) OrderOf(name string) (int, bool) {
	o, ok := m.order[name]
	return o, ok
}

// Len returns the number of distinct names.
func (m *Members[T]) Len() int { return len(m.names) }

// Names returns the member names in ascending order.
func (m *Members[T]) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// All iterates name/value pairs in ascending order.
func (m *Members[T]) All() iter.Seq2[string, T] {
	return func(yield func(string, T) bool) {
		for _, name := range m.names {
			if !yield(name, m.byKey[name]) {
				return
			}
		}
	}
}

// Values returns the values in ascending order.
func (m *Members[T]) Values() []T {
	out := make([]T, 0, len(m.names))
	for _, name := range m.names {
		out = append(out, m.byKey[name])
	}
	return out
}
