package sequence

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/garage/pkg/composables"
	"github.com/iota-uz/garage/pkg/itf"
)

var ticketsSchema = fstest.MapFS{
	"00001_tickets.sql": &fstest.MapFile{Data: []byte(`-- +goose Up
CREATE TABLE tickets (
    id serial PRIMARY KEY,
    code varchar(32) NOT NULL UNIQUE
);

-- +goose Down
DROP TABLE tickets;
`)},
}

func newPgStore(t *testing.T, timeout time.Duration) (*itf.TestEnvironment, *PostgresStore) {
	t.Helper()
	env := itf.NewTestContext().WithMigrations(ticketsSchema).Build(t)
	store, err := NewPostgresStore(pgx.Identifier{"tickets"}, "code", timeout)
	require.NoError(t, err)
	return env, store
}

func insertTicket(ctx context.Context, code string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, "INSERT INTO tickets (code) VALUES ($1)", code)
	return err
}

func pgCreate(ctx context.Context, a *Assigner, prefix, partition string) (string, error) {
	return a.WithNext(ctx, prefix, partition, insertTicket)
}

func TestPostgresStore_AssignsFromGreatest(t *testing.T) {
	env, store := newPgStore(t, time.Second)
	env.Exec(t, "INSERT INTO tickets (code) VALUES ('JB-26-001'), ('JB-26-003'), ('JB-26-999'), ('JB-26-1000'), ('JB-25-007')")

	a := NewAssigner(store)
	id, err := pgCreate(env.Ctx, a, "JB", "26")
	require.NoError(t, err)
	assert.Equal(t, "JB-26-1001", id)

	id, err = pgCreate(env.Ctx, a, "JB", "25")
	require.NoError(t, err)
	assert.Equal(t, "JB-25-008", id)

	id, err = pgCreate(env.Ctx, a, "JB", "27")
	require.NoError(t, err)
	assert.Equal(t, "JB-27-001", id)
}

func TestPostgresStore_LikeWildcardsAreLiteral(t *testing.T) {
	env, store := newPgStore(t, time.Second)
	env.Exec(t, "INSERT INTO tickets (code) VALUES ('JXB-26-050')")

	a := NewAssigner(store)
	id, err := pgCreate(env.Ctx, a, "J_B", "26")
	require.NoError(t, err)
	assert.Equal(t, "J_B-26-001", id)
}

func TestPostgresStore_ConcurrentCreates(t *testing.T) {
	const n = 50
	env, store := newPgStore(t, 10*time.Second)
	a := NewAssigner(store)

	var wg sync.WaitGroup
	ids := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = pgCreate(env.Ctx, a, "JB", "26")
		}(i)
	}
	wg.Wait()

	seqs := make([]int, 0, n)
	for i := range ids {
		require.NoError(t, errs[i])
		parsed, err := Parse(ids[i])
		require.NoError(t, err)
		seqs = append(seqs, int(parsed.Sequence))
	}
	sort.Ints(seqs)
	for i, seq := range seqs {
		require.Equal(t, i+1, seq)
	}
}

func TestPostgresStore_RollbackReleasesIdentifier(t *testing.T) {
	env, store := newPgStore(t, time.Second)
	a := NewAssigner(store)

	boom := errors.New("boom")
	_, err := a.WithNext(env.Ctx, "JB", "26", func(ctx context.Context, id string) error {
		require.NoError(t, insertTicket(ctx, id))
		return boom
	})
	require.ErrorIs(t, err, boom)

	id, err := pgCreate(env.Ctx, a, "JB", "26")
	require.NoError(t, err)
	assert.Equal(t, "JB-26-001", id)
}

func TestPostgresStore_LockTimeout(t *testing.T) {
	env, store := newPgStore(t, 100*time.Millisecond)
	a := NewAssigner(store)

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- store.InTx(env.Ctx, func(ctx context.Context) error {
			if err := store.Lock(ctx, Key{Prefix: "JB", Partition: "26"}); err != nil {
				close(locked)
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	_, err := pgCreate(env.Ctx, a, "JB", "26")
	require.ErrorIs(t, err, ErrLockTimeout)

	id, err := pgCreate(env.Ctx, a, "JB", "27")
	require.NoError(t, err)
	assert.Equal(t, "JB-27-001", id)

	close(release)
	require.NoError(t, <-done)
}

func TestPostgresStore_MalformedFallback(t *testing.T) {
	env, store := newPgStore(t, time.Second)
	env.Exec(t, "INSERT INTO tickets (code) VALUES ('JB-26-abc')")

	a := NewAssigner(store)
	id, err := pgCreate(env.Ctx, a, "JB", "26")
	require.NoError(t, err)
	assert.Equal(t, "JB-26-002", id)
}

func TestPostgresStore_MalformedIgnoredAfterDeletions(t *testing.T) {
	env, store := newPgStore(t, time.Second)
	env.Exec(t, "INSERT INTO tickets (code) VALUES ('JB-26-001'), ('JB-26-002'), ('JB-26-003'), ('JB-26-004'), ('JB-26-005'), ('JB-26-abc')")
	env.Exec(t, "DELETE FROM tickets WHERE code IN ('JB-26-002', 'JB-26-003')")
	env.Exec(t, "INSERT INTO tickets (code) VALUES ('JB-25-005'), ('JB-25-0a1'), ('JB-24-0010'), ('JB-24-011'), ('JB-24-0000')")
	a := NewAssigner(store)

	err := store.InTx(env.Ctx, func(ctx context.Context) error {
		tally, err := store.Count(ctx, Key{Prefix: "JB", Partition: "26"})
		require.NoError(t, err)
		assert.Equal(t, Tally{Total: 4, Malformed: 1}, tally)
		return nil
	})
	require.NoError(t, err)

	id, err := pgCreate(env.Ctx, a, "JB", "26")
	require.NoError(t, err)
	assert.Equal(t, "JB-26-006", id)

	id, err = pgCreate(env.Ctx, a, "JB", "25")
	require.NoError(t, err)
	assert.Equal(t, "JB-25-006", id)

	id, err = pgCreate(env.Ctx, a, "JB", "24")
	require.NoError(t, err)
	assert.Equal(t, "JB-24-012", id)
}

func TestPostgresStore_IDs(t *testing.T) {
	env, store := newPgStore(t, time.Second)
	env.Exec(t, "INSERT INTO tickets (code) VALUES ('JB-26-1000'), ('JB-26-002'), ('JB-26-010')")

	ids, err := store.IDs(env.Ctx, Key{Prefix: "JB", Partition: "26"})
	require.NoError(t, err)
	assert.Equal(t, []string{"JB-26-002", "JB-26-010", "JB-26-1000"}, ids)
}

func TestPostgresStore_NoPool(t *testing.T) {
	store, err := NewPostgresStore(pgx.Identifier{"tickets"}, "code", time.Second)
	require.NoError(t, err)

	err = store.InTx(context.Background(), func(context.Context) error { return nil })
	require.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestNewPostgresStore_Validation(t *testing.T) {
	_, err := NewPostgresStore(nil, "code", time.Second)
	require.ErrorIs(t, err, ErrInvalidKey)

	_, err = NewPostgresStore(pgx.Identifier{"tickets"}, " ", time.Second)
	require.ErrorIs(t, err, ErrInvalidKey)

	s, err := NewPostgresStore(pgx.Identifier{"public", "tickets"}, "code", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultLockTimeout, s.lockTimeout)
	assert.Equal(t, "public.tickets", s.tableLabel)
}

func TestClassifyPgError(t *testing.T) {
	assert.NoError(t, classifyPgError(nil))
	assert.ErrorIs(t, classifyPgError(&pgconn.PgError{Code: "55P03"}), ErrLockTimeout)
	assert.ErrorIs(t, classifyPgError(&pgconn.PgError{Code: "08006"}), ErrStoreUnavailable)
	assert.ErrorIs(t, classifyPgError(&pgconn.PgError{Code: "57P01"}), ErrStoreUnavailable)
	assert.ErrorIs(t, classifyPgError(composables.ErrNoPool), ErrStoreUnavailable)

	unique := &pgconn.PgError{Code: "23505"}
	got := classifyPgError(unique)
	assert.NotErrorIs(t, got, ErrLockTimeout)
	assert.NotErrorIs(t, got, ErrStoreUnavailable)
	var pgErr *pgconn.PgError
	assert.True(t, errors.As(got, &pgErr))
}
