package models

import "strconv"

type queryKind uint8

const (
	queryByID queryKind = iota
	queryByAlias
)

// Query is a lookup predicate for entities of kind T: either by numeric id or
// by alias. It never matches through the other criterion.
//
// The zero value is ByID(0).
type Query[T any] struct {
	kind  queryKind
	id    EntityID
	alias string
	_     [0]*T
}

// ByID returns a query matching the ref whose ID equals id.
func ByID[T any](id EntityID) Query[T] {
	return Query[T]{kind: queryByID, id: id}
}

// ByAlias returns a query matching the ref whose alias equals alias.
// Refs without an alias are never matched.
func ByAlias[T any](alias string) Query[T] {
	return Query[T]{kind: queryByAlias, alias: alias}
}

// ID returns the id the query selects on, if it is an id query.
func (q Query[T]) ID() (EntityID, bool) {
	if q.kind != queryByID {
		return 0, false
	}
	return q.id, true
}

// Alias returns the alias the query selects on, if it is an alias query.
func (q Query[T]) Alias() (string, bool) {
	if q.kind != queryByAlias {
		return "", false
	}
	return q.alias, true
}

func (q Query[T]) String() string {
	if q.kind == queryByAlias {
		return "alias:" + q.alias
	}
	return "id:" + strconv.FormatUint(q.id, 10)
}
