package itf

import (
	"context"
	"io/fs"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/garage/pkg/composables"
	"github.com/iota-uz/garage/pkg/migrations"
)

// TestContext provides a fluent API for building test contexts
type TestContext struct {
	ctx        context.Context
	migrations []fs.FS
	dbName     string
	keepDB     bool
}

func NewTestContext() *TestContext {
	return &TestContext{ctx: context.Background()}
}

// WithMigrations adds goose migration sets applied in order on Build.
func (tc *TestContext) WithMigrations(fsys ...fs.FS) *TestContext {
	tc.migrations = append(tc.migrations, fsys...)
	return tc
}

// WithDBName sets a custom database name
func (tc *TestContext) WithDBName(name string) *TestContext {
	tc.dbName = name
	return tc
}

// KeepDB leaves the database in place after the test for inspection.
func (tc *TestContext) KeepDB() *TestContext {
	tc.keepDB = true
	return tc
}

// Build creates a fresh database, migrates it and returns a context that
// carries the pool. No transaction is opened, so code under test starts its
// own and competing transactions really compete.
func (tc *TestContext) Build(tb testing.TB) *TestEnvironment {
	tb.Helper()
	RequirePostgres(tb)

	if tc.dbName == "" {
		tc.dbName = tb.Name()
	}
	CreateDB(tc.dbName)

	logger := logrus.NewEntry(logrus.StandardLogger()).WithField("test", tb.Name())
	for _, fsys := range tc.migrations {
		runner, err := migrations.Open(DbOpts(tc.dbName), fsys, logger)
		if err != nil {
			tb.Fatal(err)
		}
		err = runner.Up(tc.ctx)
		_ = runner.Close()
		if err != nil {
			tb.Fatal(err)
		}
	}

	pool := NewPool(DbOpts(tc.dbName))
	tb.Cleanup(func() {
		pool.Close()
		if tc.keepDB {
			return
		}
		if err := DropDB(tc.dbName); err != nil {
			tb.Logf("Warning: failed to drop database %s: %v", tc.dbName, err)
		}
	})

	return &TestEnvironment{
		Ctx:    composables.WithPool(tc.ctx, pool),
		Pool:   pool,
		DBName: sanitizeDBName(tc.dbName),
	}
}

// TestEnvironment contains all test dependencies
type TestEnvironment struct {
	Ctx    context.Context
	Pool   *pgxpool.Pool
	DBName string
}

// AssertNoError fails the test if err is not nil
func (te *TestEnvironment) AssertNoError(tb testing.TB, err error) {
	tb.Helper()
	if err != nil {
		tb.Fatal(err)
	}
}

// Exec runs a statement outside any transaction, for fixtures.
func (te *TestEnvironment) Exec(tb testing.TB, sql string, args ...any) {
	tb.Helper()
	if _, err := te.Pool.Exec(te.Ctx, sql, args...); err != nil {
		tb.Fatalf("exec %q: %v", sql, err)
	}
}
