package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/gastos/internal/ledger"
	"github.com/cleared-dev/gastos/internal/model"
)

type filterFlags struct {
	month     string
	allMonths bool
	job       string
	search    string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.month, "month", "", "month as YYYY-MM (default current month)")
	cmd.Flags().BoolVar(&f.allMonths, "all", false, "ignore the month and show every record")
	cmd.Flags().StringVar(&f.job, "job", "", "job type: Portuarios, \"Aguas interiores\" or Todos")
	cmd.Flags().StringVarP(&f.search, "query", "q", "", "search category, notes and crew")
}

func (f *filterFlags) filter(e env) (ledger.Filter, error) {
	month := f.month
	switch {
	case f.allMonths:
		month = ""
	case month == "":
		month = e.now().Format(model.MonthFormat)
	}
	return ledger.ParseFilter(month, f.job, f.search)
}

func newListCommand(opts *rootOptions, e env) *cobra.Command {
	var ff filterFlags

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List expenses for a month",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := ff.filter(e)
			if err != nil {
				return err
			}
			a, err := opts.open(cmd, e)
			if err != nil {
				return err
			}
			defer a.Close()

			renderList(cmd.OutOrStdout(), a.store.View(f))
			return nil
		},
	}
	ff.register(cmd)
	return cmd
}

func newSummaryCommand(opts *rootOptions, e env) *cobra.Command {
	var ff filterFlags

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show totals by category and crew",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := ff.filter(e)
			if err != nil {
				return err
			}
			a, err := opts.open(cmd, e)
			if err != nil {
				return err
			}
			defer a.Close()

			renderSummary(cmd.OutOrStdout(), a.store.View(f))
			return nil
		},
	}
	ff.register(cmd)
	return cmd
}
