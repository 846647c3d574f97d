package physics

import (
	"errors"

	"github.com/zeusync/sailsim/internal/core/models"
)

var (
	// ErrStructuralMismatch is returned by Merge when the two states do not
	// hold the same set of nested entities.
	ErrStructuralMismatch = models.ErrStructuralMismatch

	// ErrInvalidConfiguration marks static configuration that would make a
	// partial step produce non-finite results.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)
