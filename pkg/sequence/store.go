package sequence

import "context"

// Store is the persistence contract the Assigner runs against.
//
// InTx opens the serializing scope. Lock, Greatest and Count must be called
// with the context handed to the InTx callback; the lock taken by Lock is held
// until that scope commits or rolls back.
type Store interface {
	InTx(ctx context.Context, fn func(context.Context) error) error

	// Lock takes the exclusive per-key lock, waiting at most the store's
	// configured timeout. Locks for different keys never contend.
	Lock(ctx context.Context, key Key) error

	// Greatest returns the well-formed identifier under key with the highest
	// sequence. Identifiers whose suffix is not a positive decimal number are
	// ignored, however they sort.
	Greatest(ctx context.Context, key Key) (id string, found bool, err error)

	// Count tallies the identifiers under key, well-formed or not.
	Count(ctx context.Context, key Key) (Tally, error)
}

// Tally is the result of Store.Count.
type Tally struct {
	Total     int64
	Malformed int64
}

// greater reports whether a sorts after b when ordered by length, then
// lexically.
func greater(a, b string) bool {
	if len(a) != len(b) {
		return len(a) > len(b)
	}
	return a > b
}
