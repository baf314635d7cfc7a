package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/envelope/internal/api"
	"github.com/Veraticus/envelope/internal/certs"
	"github.com/Veraticus/envelope/internal/tui"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve budget figures over HTTP",
		Long: `Serves read-only JSON for the widget and other local clients:

  GET /api/health
  GET /api/widget
  GET /api/summary
  GET /api/history/months
  GET /api/history/weeks
  GET /api/transactions

With --tls the server uses a self-signed certificate kept in server.cert_dir.
Install the printed certificate file on phones that should trust it.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (default from server.addr)")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	cmd.Flags().Bool("tls", false, "serve HTTPS with a self-signed certificate")
	_ = viper.BindPFlag("server.tls", cmd.Flags().Lookup("tls"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.closePeriods(ctx); err != nil {
		return err
	}

	srv := api.NewServer(a.cfg.ServerAddr, api.NewRouter(a.ledger, a.cfg.Location))
	if a.cfg.ServerTLS {
		manager := certs.NewFileManager(a.cfg.CertDir, a.cfg.TLSHosts...)
		tlsConfig, err := manager.TLSConfig()
		if err != nil {
			return fmt.Errorf("failed to prepare TLS certificate: %w", err)
		}
		srv.TLSConfig = tlsConfig
		fmt.Fprintf(cmd.OutOrStdout(), "Serving HTTPS on %s (certificate: %s)\n", a.cfg.ServerAddr, manager.CertFile())
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", a.cfg.ServerAddr, "tls", srv.TLSConfig != nil)
		var err error
		if srv.TLSConfig != nil {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

func dashboardCmd() *cobra.Command {
	var noAltScreen, refresh bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive budget dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.closePeriods(ctx); err != nil {
				return err
			}
			return tui.Run(ctx, a.ledger,
				tui.WithAltScreen(!noAltScreen),
				tui.WithRefreshOnStart(refresh),
			)
		},
	}

	cmd.Flags().BoolVar(&noAltScreen, "inline", false, "Render inline instead of in the alternate screen")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Fetch a live exchange rate on start")

	return cmd
}
