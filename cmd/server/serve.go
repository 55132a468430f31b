package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"salaries/internal/api"
	"salaries/internal/dataset"
	"salaries/internal/logging"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard API server",
		Long:  `Start an HTTP server that exposes the filtered salary metrics and chart data. The dataset loads in the background; endpoints answer 503 until it is ready.`,
		RunE:  runServe,
	}
	cmd.Flags().String("addr", "", "Address to listen on (default :8080)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	e := api.NewEcho(logger, api.ServerOptions{
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   cfg.RateLimit,
	})

	// The API is live before the data is; handlers return 503 until SetStore.
	h := api.NewHandler(nil)
	h.RegisterRoutes(e)

	src := dataset.NewSource(cfg.DataURL,
		dataset.WithTimeout(cfg.FetchTimeout),
		dataset.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", cfg.Addr).Msg("server ready, dataset loading in background")
		if err := e.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		store, err := src.Store(gctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to load dataset: %w", err)
		}
		h.SetStore(store)
		logger.Info().Int("records", store.Len()).Msg("dataset ready, API fully available")
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}
