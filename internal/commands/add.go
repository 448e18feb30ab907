package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/gastos/internal/ledger"
	"github.com/cleared-dev/gastos/internal/model"
	"github.com/cleared-dev/gastos/internal/money"
)

func newAddCommand(opts *rootOptions, e env) *cobra.Command {
	var in ledger.Entry

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.open(cmd, e)
			if err != nil {
				return err
			}
			defer a.Close()

			candidate, err := in.Expense(a.catalog, a.cfg.Ledger.DefaultTaxRate, e.now())
			if err != nil {
				return err
			}
			if candidate.Crew != "" && !a.catalog.IsCrew(candidate.Crew) {
				a.log.Warn().Str("crew", candidate.Crew).Msg("crew name not in config")
			}
			added, err := a.store.Add(cmd.Context(), candidate)
			if err != nil {
				return fmt.Errorf("adding expense: %w", err)
			}
			if err := a.persisted(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added %s: %s %s on %s (total %s)\n",
				added.ID, added.Category, money.Euro(added.Amount), added.Date.Format(model.DateFormat), money.Euro(added.Gross()))
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Amount, "amount", "", "pre-tax amount, e.g. 320.50 or 320,50 (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&in.Date, "date", "", "date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&in.Category, "category", "", "expense category (default Combustible)")
	cmd.Flags().StringVar(&in.Crew, "crew", "", "crew member")
	cmd.Flags().StringVar(&in.TaxRate, "rate", "", "IGIC percentage (default from config)")
	cmd.Flags().StringVar(&in.JobType, "job", "", "job type: Portuarios or \"Aguas interiores\" (default Portuarios)")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "free-text notes")

	return cmd
}

func newRemoveCommand(opts *rootOptions, e env) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Delete an expense by id",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd, e)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.store.Remove(cmd.Context(), args[0]) {
				if err := a.persisted(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "No expense with id %s\n", args[0])
			}
			return nil
		},
	}
}
