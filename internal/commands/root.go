package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/gastos/internal/buildinfo"
	"github.com/cleared-dev/gastos/internal/id"
)

// env is what commands take from the process: clock, id source and
// environment lookup. Tests substitute deterministic ones.
type env struct {
	now       func() time.Time
	ids       id.Generator
	lookupEnv func(string) (string, bool)
}

type rootOptions struct {
	dir        string
	configPath string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(env{now: time.Now, ids: id.UUID{}, lookupEnv: os.LookupEnv})
}

func newRootCommand(e env) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "gastos",
		Short:   "Monthly boat crew expense ledger",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.dir, "dir", ".", "project directory")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default <dir>/gastos.yaml)")

	rootCmd.AddCommand(
		newInitCommand(opts, e),
		newAddCommand(opts, e),
		newRemoveCommand(opts, e),
		newListCommand(opts, e),
		newSummaryCommand(opts, e),
		newExportCommand(opts, e),
		newImportCommand(opts, e),
		newServeCommand(opts, e),
		newVersionCommand(),
	)

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "gastos "+buildinfo.String())
		},
	}
}
