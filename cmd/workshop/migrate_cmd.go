package main

import (
	"github.com/spf13/cobra"

	"github.com/iota-uz/garage/modules/workshop"
	"github.com/iota-uz/garage/pkg/migrations"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the workshop schema",
	}
	cmd.AddCommand(newMigrateActionCmd("up", "Apply all pending migrations", func(cmd *cobra.Command, r *migrations.Runner) error {
		return r.Up(cmd.Context())
	}))
	cmd.AddCommand(newMigrateActionCmd("down", "Roll back the latest migration", func(cmd *cobra.Command, r *migrations.Runner) error {
		return r.Down(cmd.Context())
	}))
	cmd.AddCommand(newMigrateActionCmd("status", "Print the current schema version", func(cmd *cobra.Command, r *migrations.Runner) error {
		version, err := r.Version(cmd.Context())
		if err != nil {
			return err
		}
		return writeJSON(map[string]int64{"version": version})
	}))
	return cmd
}

func newMigrateActionCmd(use, short string, action func(*cobra.Command, *migrations.Runner) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, logger := useConfig()
			defer conf.Unload()
			runner, err := migrations.Open(conf.Database.Opts, workshop.MigrationFiles(), logger.WithField("component", "migrations"))
			if err != nil {
				return withCode(exitDB, err)
			}
			defer runner.Close()
			if err := action(cmd, runner); err != nil {
				return withCode(exitDB, err)
			}
			return nil
		},
	}
}
