package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/gastos/internal/config"
	"github.com/cleared-dev/gastos/internal/csvcodec"
	"github.com/cleared-dev/gastos/internal/slot"
)

// inboxDir is the project subdirectory scanned by "gastos import".
const inboxDir = "import"

func newInitCommand(opts *rootOptions, e env) *cobra.Command {
	var backend string
	var crew []string
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new gastos project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.dir = args[0]
			}
			dir, err := opts.absDir()
			if err != nil {
				return err
			}
			if err := writeProject(dir, opts.configFile(dir), backend, crew, force); err != nil {
				return err
			}

			a, err := opts.open(cmd, e)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.persisted(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized gastos project at %s (%d records)\n", dir, a.store.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "storage", slot.BackendFile, "storage backend: file, sqlite or memory")
	cmd.Flags().StringSliceVar(&crew, "crew", nil, "crew names (default Tripulante 1-3)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing gastos.yaml")

	return cmd
}

func writeProject(dir, cfgPath, backend string, crew []string, force bool) error {
	if _, err := os.Stat(cfgPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	cfg := config.Default()
	cfg.Storage.Backend = backend
	if len(crew) > 0 {
		cfg.Ledger.Crew = crew
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	dirs := []string{
		cfg.DataDir(dir),
		filepath.Join(dir, inboxDir),
		filepath.Join(dir, inboxDir, csvcodec.ProcessedDir),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	gitignore := cfg.Storage.Dir + "/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, inboxDir, ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}
	return nil
}
