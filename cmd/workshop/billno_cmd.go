package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newBillNoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billno",
		Short: "Inspect bill number sequences",
	}
	cmd.AddCommand(newBillNoNextCmd())
	cmd.AddCommand(newBillNoAuditCmd())
	return cmd
}

// parseYear defaults to the current year when args is empty.
func parseYear(args []string, now time.Time) (int, error) {
	if len(args) == 0 {
		return now.Year(), nil
	}
	year, err := strconv.Atoi(args[0])
	if err != nil || year < 1900 || year > 9999 {
		return 0, withCode(exitUsage, fmt.Errorf("invalid year %q", args[0]))
	}
	return year, nil
}

func newBillNoNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next [year]",
		Short: "Print the bill number the next job card of a year would receive",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYear(args, time.Now())
			if err != nil {
				return err
			}
			ctx, env, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			next, err := env.module.BillNumbers.Peek(ctx, year)
			if err != nil {
				return err
			}
			return writeJSON(map[string]any{"year": year, "next": next})
		},
	}
}

func newBillNoAuditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit [year]",
		Short: "Report malformed bill numbers of a year",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYear(args, time.Now())
			if err != nil {
				return err
			}
			ctx, env, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			report, err := env.module.BillNumbers.Audit(ctx, year)
			if err != nil {
				return err
			}
			malformed := report.Malformed
			if malformed == nil {
				malformed = []string{}
			}
			return writeJSON(map[string]any{
				"key":       report.Key.String(),
				"total":     report.Total,
				"greatest":  report.Greatest,
				"malformed": malformed,
				"next":      report.Next,
			})
		},
	}
}
