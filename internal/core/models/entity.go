package models

import (
	"strconv"
)

// EntityID is the durable numeric identity of an entity inside its dataset.
type EntityID = uint64

// Ref is a serializable identity token for one entity of kind T.
//
// T is a phantom parameter: it only stops a ref minted for one kind of entity
// (a sail, say) from indexing a dataset of another kind (a boat). It holds no
// data at runtime and never appears in a serialized ref.
//
// Two refs are equal only if both the ID and the alias match, so a Ref can be
// used directly as a map key.
type Ref[T any] struct {
	ID    EntityID
	alias string
	named bool
	_     [0]*T
}

// NewRef returns a ref with the given id and no alias.
func NewRef[T any](id EntityID) Ref[T] {
	return Ref[T]{ID: id}
}

// WithAlias returns a copy of the ref carrying alias.
func (r Ref[T]) WithAlias(alias string) Ref[T] {
	r.alias = alias
	r.named = true
	return r
}

// WithoutAlias returns a copy of the ref with the alias removed.
func (r Ref[T]) WithoutAlias() Ref[T] {
	r.alias = ""
	r.named = false
	return r
}

// Alias returns the human-facing label and whether one is set.
func (r Ref[T]) Alias() (string, bool) {
	return r.alias, r.named
}

// ToQuery returns the canonical query for finding exactly this entity again,
// independent of later alias changes.
func (r Ref[T]) ToQuery() Query[T] {
	return ByID[T](r.ID)
}

// Matches reports whether the query selects this ref.
func (r Ref[T]) Matches(q Query[T]) bool {
	switch q.kind {
	case queryByID:
		return r.ID == q.id
	case queryByAlias:
		return r.named && r.alias == q.alias
	default:
		return false
	}
}

func (r Ref[T]) String() string {
	if r.named {
		return strconv.FormatUint(r.ID, 10) + " (" + r.alias + ")"
	}
	return strconv.FormatUint(r.ID, 10)
}

// UnsafeReinterpret converts a ref of kind T into a ref of kind U, keeping the
// id and alias.
//
// WARNING: this defeats the whole point of typed refs. It always succeeds, and
// a misused result silently matches nothing or the wrong entity. Only call it
// when the id/alias pair is known to be valid for a dataset of kind U.
func UnsafeReinterpret[U, T any](r Ref[T]) Ref[U] {
	return Ref[U]{
		ID:    r.ID,
		alias: r.alias,
		named: r.named,
	}
}
