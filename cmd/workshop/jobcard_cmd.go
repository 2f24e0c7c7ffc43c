package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iota-uz/garage/modules/workshop/domain/aggregates/jobcard"
	"github.com/iota-uz/garage/modules/workshop/services"
)

func newJobCardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "jobcard",
		Aliases: []string{"jc"},
		Short:   "Manage job cards",
	}
	cmd.AddCommand(newJobCardCreateCmd())
	cmd.AddCommand(newJobCardUpdateCmd())
	cmd.AddCommand(newJobCardShowCmd())
	cmd.AddCommand(newJobCardListCmd())
	cmd.AddCommand(newJobCardCountDeliveredCmd())
	cmd.AddCommand(newJobCardActionCmd("deliver", "Mark a job card as delivered", (*services.JobCardService).MarkDelivered))
	cmd.AddCommand(newJobCardActionCmd("undeliver", "Return a delivered job card to the active list", (*services.JobCardService).UndoDelivered))
	cmd.AddCommand(newJobCardActionCmd("hold", "Toggle the on-hold flag", (*services.JobCardService).ToggleHold))
	cmd.AddCommand(newJobCardActionCmd("delete", "Delete a job card; its bill number is never reused", (*services.JobCardService).Delete))
	return cmd
}

// readPayload decodes JSON from path, or from stdin when path is "-".
func readPayload(path string, v any) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return withCode(exitUsage, err)
		}
		defer f.Close()
		r = f
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return withCode(exitValidation, fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}

// resolveCard accepts either a card id or a bill number.
func resolveCard(ctx context.Context, svc *services.JobCardService, ref string) (jobcard.JobCard, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return svc.GetByID(ctx, id)
	}
	return svc.GetByBillNumber(ctx, ref)
}

func newJobCardCreateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a job card and assign the next bill number of its admission year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var dto jobcard.CreateDTO
			if err := readPayload(file, &dto); err != nil {
				return err
			}
			ctx, env, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			card, err := env.module.JobCards.Create(ctx, &dto)
			if err != nil {
				return err
			}
			return writeJSON(toJobCardView(card))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON job card payload (- for stdin)")
	return cmd
}

func newJobCardUpdateCmd() *cobra.Command {
	var (
		file  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "update <id|bill-number>",
		Short: "Replace the editable fields of a job card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dto jobcard.UpdateDTO
			if err := readPayload(file, &dto); err != nil {
				return err
			}
			if force {
				dto.ForceStatus = true
			}
			ctx, env, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			card, err := resolveCard(ctx, env.module.JobCards, args[0])
			if err != nil {
				return err
			}
			updated, err := env.module.JobCards.Update(ctx, card.ID(), &dto)
			if err != nil {
				return err
			}
			return writeJSON(toJobCardView(updated))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON job card payload (- for stdin)")
	cmd.Flags().BoolVar(&force, "force", false, "Allow spare statuses to move backwards")
	return cmd
}

func newJobCardShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|bill-number>",
		Short: "Print a job card",
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
			return writeJSON(toJobCardView(card))
		},
	}
}

func newJobCardListCmd() *cobra.Command {
	var (
		delivered    bool
		limit        int
		registration string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active job cards, delivered ones, or the history of a vehicle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if delivered && registration != "" {
				return withCode(exitUsage, fmt.Errorf("--delivered and --registration are mutually exclusive"))
			}
			ctx, env, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			svc := env.module.JobCards
			var cards []jobcard.JobCard
			switch {
			case registration != "":
				cards, err = svc.ListByRegistration(ctx, registration)
			case delivered:
				cards, err = svc.ListDelivered(ctx, limit)
			default:
				cards, err = svc.ListActive(ctx)
			}
			if err != nil {
				return err
			}
			return writeJSON(toJobCardRows(cards))
		},
	}
	cmd.Flags().BoolVar(&delivered, "delivered", false, "List delivered job cards, most recent first")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of delivered job cards")
	cmd.Flags().StringVar(&registration, "registration", "", "List every job card of a registration number")
	return cmd
}

func newJobCardCountDeliveredCmd() *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "count-delivered",
		Short: "Count job cards delivered on a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := time.ParseInLocation(time.DateOnly, day, time.Local)
			if err != nil {
				return withCode(exitUsage, fmt.Errorf("invalid --date: %w", err))
			}
			ctx, env, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			n, err := env.module.JobCards.CountDeliveredOn(ctx, d)
			if err != nil {
				return err
			}
			return writeJSON(map[string]any{"date": day, "delivered": n})
		},
	}
	cmd.Flags().StringVar(&day, "date", time.Now().Format(time.DateOnly), "Day (YYYY-MM-DD, local time)")
	return cmd
}

func newJobCardActionCmd(
	use, short string,
	action func(*services.JobCardService, context.Context, uuid.UUID) (jobcard.JobCard, error),
) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id|bill-number>",
		Short: short,
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
			result, err := action(env.module.JobCards, ctx, card.ID())
			if err != nil {
				return err
			}
			return writeJSON(toJobCardView(result))
		},
	}
}
