package chunk

import (
	"iter"
	"slices"
)

// Entry is one explicitly stored voxel.
type Entry[T any] struct {
	Index int
	Value T
}

// SparseStore maps flattened voxel indices to values. Indices that were never
// set read as the store default, so a chunk of mostly air costs nothing for
// the air. Entries are kept in a dense slice; iteration follows that slice
// and is stable between mutations.
type SparseStore[T comparable] struct {
	def     T
	slots   map[int]int
	entries []Entry[T]
}

func NewSparseStore[T comparable](def T) *SparseStore[T] {
	return &SparseStore[T]{
		def:   def,
		slots: make(map[int]int),
	}
}

// Default returns the value read for unset indices.
func (s *SparseStore[T]) Default() T {
	return s.def
}

// Get returns the value at i, or the default if i was never set.
func (s *SparseStore[T]) Get(i int) T {
	if slot, ok := s.slots[i]; ok {
		return s.entries[slot].Value
	}
	return s.def
}

// Lookup returns the value at i and whether it was explicitly set.
func (s *SparseStore[T]) Lookup(i int) (T, bool) {
	if slot, ok := s.slots[i]; ok {
		return s.entries[slot].Value, true
	}
	return s.def, false
}

// Set stores v at i. Setting the default value still records the index.
func (s *SparseStore[T]) Set(i int, v T) {
	if slot, ok := s.slots[i]; ok {
		s.entries[slot].Value = v
		return
	}
	s.slots[i] = len(s.entries)
	s.entries = append(s.entries, Entry[T]{Index: i, Value: v})
}

// Len returns the number of explicitly stored indices.
func (s *SparseStore[T]) Len() int {
	return len(s.entries)
}

// All yields explicitly stored entries.
func (s *SparseStore[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for _, e := range s.entries {
			if !yield(e.Index, e.Value) {
				return
			}
		}
	}
}

// Sorted returns a copy of the stored entries in ascending index order.
func (s *SparseStore[T]) Sorted() []Entry[T] {
	out := slices.Clone(s.entries)
	slices.SortFunc(out, func(a, b Entry[T]) int {
		return a.Index - b.Index
	})
	return out
}

// Equal reports whether both stores have the same default and the same
// explicit entries, ignoring order.
func (s *SparseStore[T]) Equal(o *SparseStore[T]) bool {
	if s.def != o.def || len(s.entries) != len(o.entries) {
		return false
	}
	for _, e := range s.entries {
		v, ok := o.Lookup(e.Index)
		if !ok || v != e.Value {
			return false
		}
	}
	return true
}
