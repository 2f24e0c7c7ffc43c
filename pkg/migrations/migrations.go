// Package migrations applies the embedded goose schema migrations.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

type Runner struct {
	db       *sql.DB
	provider *goose.Provider
	logger   *logrus.Entry
}

// Open connects with lib/pq and prepares a goose provider over fsys, whose
// root must contain the numbered .sql files.
func Open(dsn string, fsys fs.FS, logger *logrus.Entry) (*Runner, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open migrations db: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create goose provider: %w", err)
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Runner{db: db, provider: provider, logger: logger}, nil
}

func (r *Runner) Up(ctx context.Context) error {
	results, err := r.provider.Up(ctx)
	for _, res := range results {
		r.logger.WithFields(logrus.Fields{
			"version":  res.Source.Version,
			"path":     res.Source.Path,
			"duration": res.Duration,
		}).Info("migrations: applied")
	}
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

func (r *Runner) Down(ctx context.Context) error {
	res, err := r.provider.Down(ctx)
	if err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	if res != nil {
		r.logger.WithField("version", res.Source.Version).Info("migrations: rolled back")
	}
	return nil
}

func (r *Runner) Version(ctx context.Context) (int64, error) {
	return r.provider.GetDBVersion(ctx)
}

func (r *Runner) Close() error {
	return r.db.Close()
}
