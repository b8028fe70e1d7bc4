package loader

import (
	"github.com/OCharnyshevich/voxel-engine/internal/engine/chunk"
)

// ordered is a position-keyed map that remembers insertion order. Deleting
// moves the last entry into the freed slot, so iteration order is stable
// between mutations but not across deletes.
type ordered[V any] struct {
	keys   []chunk.Position
	values []V
	index  map[chunk.Position]int
}

func newOrdered[V any]() *ordered[V] {
	return &ordered[V]{index: make(map[chunk.Position]int)}
}

func (o *ordered[V]) Len() int {
	return len(o.keys)
}

func (o *ordered[V]) Has(pos chunk.Position) bool {
	_, ok := o.index[pos]
	return ok
}

func (o *ordered[V]) Get(pos chunk.Position) (V, bool) {
	i, ok := o.index[pos]
	if !ok {
		var zero V
		return zero, false
	}
	return o.values[i], true
}

// Set stores v at pos. An existing entry keeps its place in the order.
func (o *ordered[V]) Set(pos chunk.Position, v V) {
	if i, ok := o.index[pos]; ok {
		o.values[i] = v
		return
	}
	o.index[pos] = len(o.keys)
	o.keys = append(o.keys, pos)
	o.values = append(o.values, v)
}

func (o *ordered[V]) Delete(pos chunk.Position) (V, bool) {
	i, ok := o.index[pos]
	if !ok {
		var zero V
		return zero, false
	}
	v := o.values[i]
	last := len(o.keys) - 1
	if i != last {
		o.keys[i] = o.keys[last]
		o.values[i] = o.values[last]
		o.index[o.keys[i]] = i
	}
	var zero V
	o.values[last] = zero
	o.keys = o.keys[:last]
	o.values = o.values[:last]
	delete(o.index, pos)
	return v, true
}

// Head returns up to n positions from the front of the order.
func (o *ordered[V]) Head(n int) []chunk.Position {
	n = min(n, len(o.keys))
	if n <= 0 {
		return nil
	}
	return append([]chunk.Position(nil), o.keys[:n]...)
}

// Keys returns a copy of every position in order.
func (o *ordered[V]) Keys() []chunk.Position {
	return o.Head(len(o.keys))
}

// posSet is an ordered set of positions.
type posSet = ordered[struct{}]

func newPosSet() *posSet {
	return newOrdered[struct{}]()
}
