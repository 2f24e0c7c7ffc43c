package main

import (
	"errors"

	"github.com/iota-uz/garage/modules/workshop/domain/aggregates/jobcard"
	"github.com/iota-uz/garage/modules/workshop/domain/entities/catalog"
	"github.com/iota-uz/garage/pkg/sequence"
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK         = 0
	exitValidation = 2
	exitUsage      = 3
	exitDB         = 4
	exitNotFound   = 5
	exitConflict   = 6
	exitBusy       = 7
)

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

// exitCode prefers an explicit code, then classifies domain and sequence
// errors.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	var (
		verr *jobcard.ValidationError
		cerr *catalog.ValidationError
	)
	switch {
	case errors.As(err, &verr), errors.As(err, &cerr):
		return exitValidation
	case errors.Is(err, jobcard.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		return exitNotFound
	case errors.Is(err, catalog.ErrDuplicate),
		errors.Is(err, jobcard.ErrBillNumberTaken),
		errors.Is(err, jobcard.ErrAlreadyDelivered),
		errors.Is(err, jobcard.ErrNotDelivered),
		errors.Is(err, jobcard.ErrStatusRegression):
		return exitConflict
	case errors.Is(err, sequence.ErrLockTimeout):
		return exitBusy
	case errors.Is(err, sequence.ErrStoreUnavailable):
		return exitDB
	default:
		return 1
	}
}
