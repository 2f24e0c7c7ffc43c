package persistence

import (
	stderrors "errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iota-uz/garage/modules/workshop/domain/aggregates/jobcard"
	"github.com/iota-uz/garage/modules/workshop/domain/entities/catalog"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	jobcardBillNumberKey  = "jobcards_bill_number_key"
)

// translateJobCardError maps database failures to job card errors.
func translateJobCardError(err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, pgx.ErrNoRows) {
		return jobcard.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == jobcardBillNumberKey {
		return stderrors.Join(jobcard.ErrBillNumberTaken, err)
	}
	return err
}

func translateCatalogError(err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, pgx.ErrNoRows) {
		return catalog.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return stderrors.Join(catalog.ErrDuplicate, err)
		case pgForeignKeyViolation:
			return stderrors.Join(catalog.ErrNotFound, err)
		}
	}
	return err
}
