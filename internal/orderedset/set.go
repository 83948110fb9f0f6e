// Package orderedset provides an insertion-ordered set of comparable values.
package orderedset

// Set keeps distinct values in the order they were first added.
//
// The zero value is not usable; construct with New.
type Set[T comparable] struct {
	seen  map[T]struct{}
	items []T
}

// New constructs an empty Set, optionally seeded with values.
//
// Postcondition: Len() equals the number of distinct values in seed.
func New[T comparable](seed ...T) *Set[T] {
	s := &Set[T]{seen: make(map[T]struct{}, len(seed))}
	for _, v := range seed {
		s.Add(v)
	}
	return s
}

// Add inserts v if it is not already present and reports whether it was added.
//
// Postcondition: v is in Values(); the position of an existing v is unchanged.
func (s *Set[T]) Add(v T) bool {
	if _, ok := s.seen[v]; ok {
		return false
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// Len returns the number of distinct values.
func (s *Set[T]) Len() int { return len(s.items) }

// Values returns a copy of the values in first-insertion order.
func (s *Set[T]) Values() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}
