// Package setutil provides small set helpers shared across packages.
package setutil

import "sort"

// UintSet is a set of uint identifiers. The zero value is not usable;
// construct with NewUintSet.
type UintSet struct {
	items map[uint]struct{}
}

// NewUintSet creates a set seeded with the given values.
func NewUintSet(values ...uint) *UintSet {
	s := &UintSet{items: make(map[uint]struct{}, len(values))}
	for _, v := range values {
		s.items[v] = struct{}{}
	}
	return s
}

// Add inserts a value into the set.
func (s *UintSet) Add(v uint) {
	s.items[v] = struct{}{}
}

// Remove deletes a value from the set.
func (s *UintSet) Remove(v uint) {
	delete(s.items, v)
}

// Contains reports whether v is in the set.
func (s *UintSet) Contains(v uint) bool {
	_, ok := s.items[v]
	return ok
}

// Len returns the number of values in the set.
func (s *UintSet) Len() int {
	return len(s.items)
}

// Union adds all values from other into s.
func (s *UintSet) Union(other *UintSet) {
	if other == nil {
		return
	}
	for v := range other.items {
		s.items[v] = struct{}{}
	}
}

// Equal reports whether both sets contain exactly the same values.
func (s *UintSet) Equal(other *UintSet) bool {
	if other == nil {
		return s.Len() == 0
	}
	if len(s.items) != len(other.items) {
		return false
	}
	for v := range s.items {
		if _, ok := other.items[v]; !ok {
			return false
		}
	}
	return true
}

// Sorted returns the values in ascending order. Useful when rendering
// the set into deterministic SQL.
func (s *UintSet) Sorted() []uint {
	out := make([]uint, 0, len(s.items))
	for v := range s.items {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
