package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Harshitk-cp/soulbench/internal/api"
	"github.com/Harshitk-cp/soulbench/internal/artifact"
	"github.com/Harshitk-cp/soulbench/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	var resultsDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve persisted run artifacts over a read-only HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(resultsDir)
		},
	}

	cmd.Flags().StringVar(&resultsDir, "results-dir", "results", "root directory holding run artifacts")
	return cmd
}

func serve(resultsDir string) error {
	if err := config.Load(); err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	catalog := artifact.NewCatalog(resultsDir)
	router := api.NewRouter(catalog, logger)

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", addr),
			zap.String("results_dir", resultsDir))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
