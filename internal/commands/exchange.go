package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/gastos/internal/csvcodec"
	"github.com/cleared-dev/gastos/internal/ledger"
	"github.com/cleared-dev/gastos/internal/logger"
	"github.com/cleared-dev/gastos/internal/model"
	"github.com/cleared-dev/gastos/internal/report"
)

func newExportCommand(opts *rootOptions, e env) *cobra.Command {
	var format, out, month string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every expense as CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "csv" && format != "xlsx" {
				return fmt.Errorf("unknown export format %q: must be csv or xlsx", format)
			}
			a, err := opts.open(cmd, e)
			if err != nil {
				return err
			}
			defer a.Close()

			if month == "" {
				month = e.now().Format(model.MonthFormat)
			}
			records := a.store.All()

			if out == "-" {
				return writeExport(cmd.OutOrStdout(), format, records)
			}
			if out == "" {
				out = csvcodec.Filename(month)
				if format == "xlsx" {
					out = report.Filename(month)
				}
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating export file: %w", err)
			}
			if err := writeExport(f, format, records); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing export file: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", len(records), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "csv or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout (default gastos_barco_<month>.<format>)")
	cmd.Flags().StringVar(&month, "month", "", "month used in the default file name (default current month)")

	return cmd
}

func writeExport(w io.Writer, format string, records []model.Expense) error {
	if format == "xlsx" {
		return report.WriteXLSX(w, records)
	}
	return csvcodec.Write(w, records)
}

func newImportCommand(opts *rootOptions, e env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [file.csv...]",
		Short: "Merge CSV files into the ledger",
		Long: `Merge CSV files into the ledger. Imported rows are placed before the
existing ones. Rows whose id is already taken get a fresh id.

Without arguments, every CSV in the project's import/ directory is merged and
then moved to import/processed/.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd, e)
			if err != nil {
				return err
			}
			defer a.Close()

			if len(args) > 0 {
				for _, path := range args {
					if err := importFile(cmd, a, path); err != nil {
						return err
					}
				}
				return nil
			}

			dir := filepath.Join(a.root, inboxDir)
			files, err := csvcodec.Scan(dir)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No CSV files in %s\n", dir)
				return nil
			}
			for _, f := range files {
				if err := importFile(cmd, a, f.Path); err != nil {
					return err
				}
				if err := csvcodec.MarkProcessed(dir, f.Name); err != nil {
					return err
				}
			}
			return nil
		},
	}
	return cmd
}

func importFile(cmd *cobra.Command, a *app, path string) error {
	res, err := a.store.Import(cmd.Context(), func(_ context.Context) ([]model.Expense, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()

		parsed, err := csvcodec.Parse(f, csvcodec.Options{IDs: a.env.ids, Now: a.env.now})
		if err != nil {
			return nil, err
		}
		for _, w := range parsed.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %s\n", filepath.Base(path), w)
		}
		return parsed.Records, nil
	})
	if err != nil {
		return err
	}
	if err := a.persisted(); err != nil {
		return fmt.Errorf("importing %s: %w", filepath.Base(path), err)
	}

	log := logger.FromContext(cmd.Context())
	log.Info().Str("file", path).Int("added", res.Added).Int("regenerated", len(res.Regenerated)).Msg("CSV imported")
	printImport(cmd.OutOrStdout(), filepath.Base(path), res)
	return nil
}

func printImport(w io.Writer, name string, res ledger.MergeResult) {
	fmt.Fprintf(w, "Imported %d records from %s", res.Added, name)
	if n := len(res.Regenerated); n > 0 {
		fmt.Fprintf(w, " (%d ids regenerated)", n)
	}
	fmt.Fprintln(w)
	for _, r := range res.Regenerated {
		fmt.Fprintf(w, "  %s -> %s\n", r.From, r.To)
	}
}
