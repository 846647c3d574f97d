package models

import "errors"

var (
	// ErrDuplicateID is returned when an id is already used in a dataset.
	ErrDuplicateID = errors.New("duplicate entity id")

	// ErrStructuralMismatch means two datasets being merged do not describe
	// the same set of entities.
	ErrStructuralMismatch = errors.New("structural mismatch")

	// ErrInvalidQuery is returned when decoding a query that names neither
	// or both criteria.
	ErrInvalidQuery = errors.New("query must have exactly one of id or alias")
)
