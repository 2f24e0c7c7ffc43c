package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "workshop",
		Short:         "Garage workshop job cards, bill numbers and invoices",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newJobCardCmd())
	cmd.AddCommand(newCatalogCmd())
	cmd.AddCommand(newBillNoCmd())
	cmd.AddCommand(newInvoiceCmd())
	cmd.AddCommand(newServeCmd())
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		closeRuntime()
		os.Exit(exitCode(err))
	}
	closeRuntime()
}
