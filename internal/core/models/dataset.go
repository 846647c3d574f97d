package models

import (
	"fmt"
	"iter"
	"math"
	"slices"
)

// Entry is one (ref, value) pair owned by a Dataset.
type Entry[T any] struct {
	Ref   Ref[T] `json:"ref" yaml:"ref"`
	Value T      `json:"value" yaml:"value"`
}

// Dataset is an insertion-ordered collection of entities of kind T.
// Order matters for iteration and display, never for lookup.
//
// Ids minted by Insert only ever grow, so a ref kept for a removed entity
// never finds a later one. A decoded dataset resumes counting after its
// highest id.
//
// A dataset has a single owner; it is not safe for concurrent mutation.
type Dataset[T any] struct {
	Items []Entry[T] `json:"items" yaml:"items"`

	// next is the id Insert mints next.
	next EntityID
	// spent is set once math.MaxUint64 has been handed out or inserted.
	spent bool
}

// NewDataset returns an empty dataset.
func NewDataset[T any]() Dataset[T] {
	return Dataset[T]{Items: make([]Entry[T], 0)}
}

func (d *Dataset[T]) Len() int { return len(d.Items) }

// Insert appends value under a freshly minted id and returns its ref.
func (d *Dataset[T]) Insert(value T) Ref[T] {
	ref := NewRef[T](d.nextID())
	d.Items = append(d.Items, Entry[T]{Ref: ref, Value: value})
	return ref
}

// InsertRef appends value under an existing ref. The id must not be in use.
func (d *Dataset[T]) InsertRef(ref Ref[T], value T) error {
	if _, ok := d.FindIndex(ref.ToQuery()); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, ref)
	}
	d.Items = append(d.Items, Entry[T]{Ref: ref, Value: value})
	d.observe(ref.ID)
	return nil
}

// Remove deletes the first entry matching q, keeping the order of the rest.
func (d *Dataset[T]) Remove(q Query[T]) bool {
	i, ok := d.FindIndex(q)
	if !ok {
		return false
	}
	d.Items = append(d.Items[:i], d.Items[i+1:]...)
	return true
}

// SetAlias changes the alias of the entry matching q and returns its new ref.
func (d *Dataset[T]) SetAlias(q Query[T], alias string) (Ref[T], bool) {
	i, ok := d.FindIndex(q)
	if !ok {
		return Ref[T]{}, false
	}
	d.Items[i].Ref = d.Items[i].Ref.WithAlias(alias)
	return d.Items[i].Ref, true
}

// FindIndex returns the index of the first entry matching q.
func (d *Dataset[T]) FindIndex(q Query[T]) (int, bool) {
	for i := range d.Items {
		if d.Items[i].Ref.Matches(q) {
			return i, true
		}
	}
	return -1, false
}

// Find returns a copy of the first entry matching q.
func (d *Dataset[T]) Find(q Query[T]) (Entry[T], bool) {
	i, ok := d.FindIndex(q)
	if !ok {
		return Entry[T]{}, false
	}
	return d.Items[i], true
}

// FindID returns the id of the first entry matching q.
func (d *Dataset[T]) FindID(q Query[T]) (EntityID, bool) {
	e, ok := d.Find(q)
	if !ok {
		return 0, false
	}
	return e.Ref.ID, true
}

// At returns the entry at index i for in-place mutation by the owner,
// or nil when i is out of range.
func (d *Dataset[T]) At(i int) *Entry[T] {
	if i < 0 || i >= len(d.Items) {
		return nil
	}
	return &d.Items[i]
}

// All iterates refs and values in insertion order.
func (d *Dataset[T]) All() iter.Seq2[Ref[T], T] {
	return func(yield func(Ref[T], T) bool) {
		for _, e := range d.Items {
			if !yield(e.Ref, e.Value) {
				return
			}
		}
	}
}

// Refs returns the refs in insertion order.
func (d *Dataset[T]) Refs() []Ref[T] {
	refs := make([]Ref[T], len(d.Items))
	for i, e := range d.Items {
		refs[i] = e.Ref
	}
	return refs
}

// Clone copies the dataset. Values implementing Clone() T are deep-copied.
func (d Dataset[T]) Clone() Dataset[T] {
	out := Dataset[T]{Items: make([]Entry[T], len(d.Items)), next: d.next, spent: d.spent}
	for i, e := range d.Items {
		if c, ok := any(e.Value).(interface{ Clone() T }); ok {
			e.Value = c.Clone()
		}
		out.Items[i] = e
	}
	return out
}

// Validate reports ids used by more than one entry. Decoded datasets are not
// checked on the way in, so lookups on an invalid one depend on order.
func (d *Dataset[T]) Validate() error {
	seen := make(map[EntityID]struct{}, len(d.Items))
	for _, e := range d.Items {
		if _, dup := seen[e.Ref.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, e.Ref)
		}
		seen[e.Ref.ID] = struct{}{}
	}
	return nil
}

func (d *Dataset[T]) nextID() EntityID {
	for _, e := range d.Items {
		d.observe(e.Ref.ID)
	}
	if !d.spent {
		id := d.next
		d.observe(id)
		return id
	}
	// The counter cannot grow past the top of the id space, so fall back to
	// the lowest id no live entry holds.
	ids := make([]EntityID, 0, len(d.Items))
	for _, e := range d.Items {
		ids = append(ids, e.Ref.ID)
	}
	slices.Sort(ids)
	var free EntityID
	for _, id := range ids {
		if id > free {
			break
		}
		if id == free {
			free++
		}
	}
	return free
}

func (d *Dataset[T]) observe(id EntityID) {
	if d.spent || id < d.next {
		return
	}
	if id == math.MaxUint64 {
		d.spent = true
		return
	}
	d.next = id + 1
}

// MergeDatasets merges every entry of self with its counterpart in other,
// located by ref.ToQuery(). An entry of self with no counterpart fails the
// whole merge with ErrStructuralMismatch and self is left untouched.
func MergeDatasets[T any](self *Dataset[T], other Dataset[T], merge func(dst *T, src T) error) error {
	merged := self.Clone()
	for i := range merged.Items {
		ref := merged.Items[i].Ref
		counterpart, ok := other.Find(ref.ToQuery())
		if !ok {
			return fmt.Errorf("%w: no counterpart for %s", ErrStructuralMismatch, ref)
		}
		if err := merge(&merged.Items[i].Value, counterpart.Value); err != nil {
			return fmt.Errorf("merge %s: %w", ref, err)
		}
	}
	self.Items = merged.Items
	return nil
}
