package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/garage/modules/workshop"
	"github.com/iota-uz/garage/pkg/composables"
	"github.com/iota-uz/garage/pkg/configuration"
)

// appEnv is opened by the first command that needs the database and closed
// once by Execute.
type appEnv struct {
	conf   *configuration.Configuration
	logger *logrus.Entry
	pool   *pgxpool.Pool
	module *workshop.Module
}

var current *appEnv

func useConfig() (*configuration.Configuration, *logrus.Entry) {
	conf := configuration.Use()
	return conf, logrus.NewEntry(conf.Logger()).WithField("entrypoint", "workshop")
}

func connectDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, withCode(exitDB, fmt.Errorf("db connect failed: %w", err))
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, withCode(exitDB, fmt.Errorf("db ping failed: %w", err))
	}
	return pool, nil
}

// openEnv returns ctx carrying the pool together with the workshop module.
func openEnv(ctx context.Context) (context.Context, *appEnv, error) {
	if current != nil {
		return composables.WithPool(ctx, current.pool), current, nil
	}
	conf, logger := useConfig()
	pool, err := connectDB(ctx, conf.Database.Opts)
	if err != nil {
		return nil, nil, err
	}
	module, err := workshop.NewPostgresModule(workshop.ModuleOptions{
		BillNumber: conf.BillNumber,
		Invoice:    conf.Invoice,
		Logger:     logger,
	})
	if err != nil {
		pool.Close()
		return nil, nil, withCode(exitUsage, err)
	}
	current = &appEnv{conf: conf, logger: logger, pool: pool, module: module}
	return composables.WithPool(ctx, pool), current, nil
}

func closeRuntime() {
	if current == nil {
		return
	}
	current.pool.Close()
	current.conf.Unload()
	current = nil
}
