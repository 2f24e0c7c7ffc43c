package sequence

import "errors"

var (
	// ErrStoreUnavailable is returned when the backing store cannot be
	// reached. It is not retried internally.
	ErrStoreUnavailable = errors.New("sequence: store unavailable")

	// ErrLockTimeout is returned when the partition lock could not be taken
	// within the store's bounded wait. Callers may retry the whole create
	// operation; a previously computed identifier must not be reused.
	ErrLockTimeout = errors.New("sequence: lock timeout")

	// ErrMalformedSequence marks a stored identifier whose numeric suffix
	// cannot be parsed. The assigner treats it as a warning and falls back to
	// counting.
	ErrMalformedSequence = errors.New("sequence: malformed identifier")

	ErrInvalidKey = errors.New("sequence: invalid key")

	// ErrNoTx is returned by store operations that need an open scope.
	ErrNoTx = errors.New("sequence: no transaction in context")

	// ErrDuplicate is returned when an identifier is stored twice.
	ErrDuplicate = errors.New("sequence: duplicate identifier")
)
