package pagination

import (
	"errors"
	"fmt"
)

var (
	// ErrRelationAbsent matches every *RelationError.
	ErrRelationAbsent = errors.New("link relation absent")

	// ErrInvalidLimit is returned for a negative request limit.
	ErrInvalidLimit = errors.New("limit must be >= 0")
)

// RelationError reports that a Link header lacks the requested relation.
type RelationError struct {
	Rel string
}

// Error implements the error interface.
func (e *RelationError) Error() string {
	return fmt.Sprintf("no %s link", e.Rel)
}

// Is reports whether target is ErrRelationAbsent.
func (e *RelationError) Is(target error) bool {
	return target == ErrRelationAbsent
}
