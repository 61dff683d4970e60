package notation

import "errors"

// Boundary error kinds, matching the named-error taxonomy callers are
// expected to test with errors.Is/errors.As rather than string
// matching.
var (
	// ErrEmptyRange is returned when a range has no non-zero weight
	// to sample from.
	ErrEmptyRange = errors.New("empty range")

	// ErrConflictingBoard is returned when a supplied board shares a
	// card with one of the players' hole cards.
	ErrConflictingBoard = errors.New("conflicting board")

	// ErrInvalidConfig is returned when a GameConfig fails validation
	// (e.g. non-positive bet sizes, a zero street cap).
	ErrInvalidConfig = errors.New("invalid config")
)
