package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/iota-uz/garage/modules/workshop/services"
)

func newInvoiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Bill a job card",
	}
	cmd.AddCommand(newInvoiceExportCmd())
	return cmd
}

func newInvoiceExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <id|bill-number>",
		Short: "Write the invoice of a job card as an XLSX workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, env, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			card, err := resolveCard(ctx, env.module.JobCards, args[0])
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			inv, err := env.module.Invoices.ExportXLSX(ctx, card.ID(), &buf)
			if err != nil {
				return err
			}
			path := out
			if path == "" {
				dir := env.conf.Invoice.ExportPath
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return withCode(exitUsage, fmt.Errorf("create %s: %w", dir, err))
				}
				path = filepath.Join(dir, services.FileName(inv))
			}
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return withCode(exitUsage, fmt.Errorf("write %s: %w", path, err))
			}
			return writeJSON(map[string]any{
				"bill_number": inv.BillNumber,
				"grand_total": inv.GrandTotal,
				"currency":    inv.Currency,
				"path":        path,
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default INVOICE_EXPORT_PATH/invoice-<bill>.xlsx)")
	return cmd
}
