package sequence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iota-uz/garage/pkg/composables"
)

// PostgresStore reads identifiers from one text column of one table and
// serializes assignment with a transaction-scoped advisory lock per key. The
// pool is taken from ctx (composables.WithPool).
type PostgresStore struct {
	table       pgx.Identifier
	column      string
	lockTimeout time.Duration
	tableLabel  string
}

func NewPostgresStore(table pgx.Identifier, column string, lockTimeout time.Duration) (*PostgresStore, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: table is required", ErrInvalidKey)
	}
	column = strings.TrimSpace(column)
	if column == "" {
		return nil, fmt.Errorf("%w: column is required", ErrInvalidKey)
	}
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &PostgresStore{
		table:       table,
		column:      column,
		lockTimeout: lockTimeout,
		tableLabel:  strings.Join(table, "."),
	}, nil
}

func (s *PostgresStore) InTx(ctx context.Context, fn func(context.Context) error) error {
	return classifyPgError(composables.InTx(ctx, fn))
}

func (s *PostgresStore) Lock(ctx context.Context, key Key) error {
	tx, err := composables.UseExplicitTx(ctx)
	if err != nil {
		return ErrNoTx
	}
	timeout := fmt.Sprintf("%dms", s.lockTimeout.Milliseconds())
	if _, err := tx.Exec(ctx, "SELECT set_config('lock_timeout', $1, true)", timeout); err != nil {
		return classifyPgError(err)
	}
	_, err = tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1), hashtext($2))", s.tableLabel, key.String())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %w", ErrLockTimeout, err)
		}
		return classifyPgError(err)
	}
	return nil
}

// wellFormedSuffix matches what parseSuffix accepts, short of int64 overflow.
const wellFormedSuffix = `^0*[1-9][0-9]*$`

func (s *PostgresStore) Greatest(ctx context.Context, key Key) (string, bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return "", false, classifyPgError(err)
	}
	col := pgx.Identifier{s.column}.Sanitize()
	query := fmt.Sprintf(`SELECT %[1]s FROM %[2]s
		WHERE %[1]s LIKE $1 ESCAPE '\' AND substr(%[1]s, $2) ~ $3
		ORDER BY length(ltrim(substr(%[1]s, $2), '0')) DESC, ltrim(substr(%[1]s, $2), '0') DESC, %[1]s DESC
		LIMIT 1`,
		col, s.table.Sanitize(),
	)
	var id string
	if err := tx.QueryRow(ctx, query, likePattern(key), suffixStart(key), wellFormedSuffix).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, classifyPgError(err)
	}
	return id, true, nil
}

func (s *PostgresStore) Count(ctx context.Context, key Key) (Tally, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return Tally{}, classifyPgError(err)
	}
	col := pgx.Identifier{s.column}.Sanitize()
	query := fmt.Sprintf(
		`SELECT count(*), count(*) FILTER (WHERE substr(%[1]s, $2) !~ $3) FROM %[2]s WHERE %[1]s LIKE $1 ESCAPE '\'`,
		col, s.table.Sanitize(),
	)
	var t Tally
	if err := tx.QueryRow(ctx, query, likePattern(key), suffixStart(key), wellFormedSuffix).Scan(&t.Total, &t.Malformed); err != nil {
		return Tally{}, classifyPgError(err)
	}
	return t, nil
}

// IDs lists identifiers under key, lowest first.
func (s *PostgresStore) IDs(ctx context.Context, key Key) ([]string, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, classifyPgError(err)
	}
	col := pgx.Identifier{s.column}.Sanitize()
	query := fmt.Sprintf(
		`SELECT %[1]s FROM %[2]s WHERE %[1]s LIKE $1 ESCAPE '\' ORDER BY length(%[1]s), %[1]s`,
		col, s.table.Sanitize(),
	)
	rows, err := tx.Query(ctx, query, likePattern(key))
	if err != nil {
		return nil, classifyPgError(err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, classifyPgError(err)
	}
	return ids, nil
}

// suffixStart is the 1-based character position of the numeric suffix.
func suffixStart(key Key) int {
	return utf8.RuneCountInString(key.Stem()) + 1
}

func likePattern(key Key) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(key.Stem()) + "%"
}

func classifyPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrLockTimeout) || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	if errors.Is(err, composables.ErrNoPool) {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "55P03": // lock_not_available
			return fmt.Errorf("%w: %w", ErrLockTimeout, err)
		case strings.HasPrefix(pgErr.Code, "08"), // connection_exception
			pgErr.Code == "57P01", // admin_shutdown
			pgErr.Code == "57P02", // crash_shutdown
			pgErr.Code == "57P03": // cannot_connect_now
			return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		return err
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return err
}
