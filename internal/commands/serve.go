package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/gastos/internal/offline"
	"github.com/cleared-dev/gastos/internal/server"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *rootOptions, e env) *cobra.Command {
	var addr string
	var offlineFlag bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.open(cmd, e)
			if err != nil {
				return err
			}
			defer a.Close()

			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("offline") {
				a.cfg.Server.Offline = offlineFlag
			}

			srv := server.New(a.store, a.catalog, server.Options{
				Mode:           a.cfg.Server.Mode,
				DefaultTaxRate: a.cfg.Ledger.DefaultTaxRate,
				IDs:            e.ids,
				Now:            e.now,
				Logger:         &a.log,
			})
			if a.cfg.Server.Offline {
				offline.Register(srv.Engine())
			}

			ln, err := net.Listen("tcp", a.cfg.Server.Addr)
			if err != nil {
				return fmt.Errorf("listening on %s: %w", a.cfg.Server.Addr, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serveUntilDone(ctx, ln, srv.Engine(), a.log)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&offlineFlag, "offline", false, "serve the web manifest and service worker")

	return cmd
}

// serveUntilDone serves h on ln until ctx is cancelled, then shuts down
// gracefully.
func serveUntilDone(ctx context.Context, ln net.Listener, h http.Handler, log zerolog.Logger) error {
	httpServer := &http.Server{
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Msg("starting HTTP server")
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving HTTP: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
