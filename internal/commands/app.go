package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/gastos/internal/catalog"
	"github.com/cleared-dev/gastos/internal/config"
	"github.com/cleared-dev/gastos/internal/ledger"
	"github.com/cleared-dev/gastos/internal/logger"
	"github.com/cleared-dev/gastos/internal/slot"
)

// app is an opened project: its config, logger and loaded ledger.
type app struct {
	root    string
	cfg     *config.Config
	log     zerolog.Logger
	slot    slot.Slot
	store   *ledger.Store
	catalog *catalog.Service
	env     env
}

func (o *rootOptions) absDir() (string, error) {
	abs, err := filepath.Abs(o.dir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return abs, nil
}

func (o *rootOptions) configFile(root string) string {
	if o.configPath != "" {
		return o.configPath
	}
	return filepath.Join(root, config.FileName)
}

// loadConfig reads the project config with .env and environment overrides
// applied.
func (o *rootOptions) loadConfig(root string, e env) (*config.Config, error) {
	if err := config.LoadDotEnv(root); err != nil {
		return nil, err
	}
	cfg, err := config.LoadOrDefault(o.configFile(root))
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(e.lookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// open loads the config, opens the durable slot and loads the ledger.
func (o *rootOptions) open(cmd *cobra.Command, e env) (*app, error) {
	root, err := o.absDir()
	if err != nil {
		return nil, err
	}
	cfg, err := o.loadConfig(root, e)
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Out: cmd.ErrOrStderr()})

	s, err := slot.Open(cfg.Storage.Backend, cfg.DataDir(root))
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	store := ledger.New(s, ledger.Options{
		Key:    cfg.Storage.Key,
		IDs:    e.ids,
		Now:    e.now,
		Logger: &log,
	})
	ctx := logger.WithContext(cmdContext(cmd), log)
	cmd.SetContext(ctx)
	if store.Load(ctx) {
		log.Debug().Str("dir", cfg.DataDir(root)).Msg("started ledger from sample records")
	}

	return &app{
		root:    root,
		cfg:     cfg,
		log:     log,
		slot:    s,
		store:   store,
		catalog: catalog.Default(cfg.Ledger.Crew),
		env:     e,
	}, nil
}

// errNotPersisted is returned when a command changed the ledger but the
// durable slot rejected the write. The change is lost when the process exits.
var errNotPersisted = errors.New("ledger not persisted: writing to storage failed")

// persisted fails when the last slot write did not succeed.
func (a *app) persisted() error {
	if a.store.Degraded() {
		return fmt.Errorf("%w (backend %s, dir %s)", errNotPersisted, a.cfg.Storage.Backend, a.cfg.DataDir(a.root))
	}
	return nil
}

func (a *app) Close() error {
	return a.slot.Close()
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
