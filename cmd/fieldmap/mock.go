package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/artpar/fieldmap/bootstrap"
	"github.com/artpar/fieldmap/config"
	"github.com/artpar/fieldmap/web"
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Run a mock upstream that echoes every request as JSON",
	Long: `Start a local echo server to exercise definition files without a
real upstream. Every request is answered with a JSON mirror of its
method, path, query, headers, and body, so "fieldmap call" output can
be inspected directly.

The server address comes from the definition file's server section;
--addr overrides it. /metrics is served when metrics are enabled.

Examples:
  fieldmap mock
  fieldmap mock --addr 127.0.0.1:9090
  FIELDMAP_BASE_URL=http://127.0.0.1:8080 fieldmap call search`,
	RunE: runMock,
}

var mockAddr string

func init() {
	rootCmd.AddCommand(mockCmd)

	mockCmd.Flags().StringVar(&mockAddr, "addr", "", "listen address (overrides server.host:server.port)")
}

func runMock(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		// The mock is useful even without a definition file
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", cfgFile, err)
		}
		cfg = config.Default()
	}

	logger := bootstrap.SetupLogger(cfg.Logging)

	deps := web.Deps{Logger: logger}
	if cfg.Metrics.Enabled {
		deps.MetricsHandler = promhttp.Handler()
		deps.MetricsPath = cfg.Metrics.Path
	}

	addr := mockAddr
	if addr == "" {
		addr = fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      web.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("starting mock server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("mock server error: %w", err)
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info().Msg("shutdown complete")
	return nil
}
