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

	"permit-tracker-go/internal/app"
	"permit-tracker-go/internal/config"
	"permit-tracker-go/internal/db"
	"permit-tracker-go/pkg/logger"
)

var version = "dev"

func main() {
	log := logger.NewFromEnv("service", "permit-tracker", "version", version)

	if err := newRootCmd(log).Execute(); err != nil {
		log.Critical("app: command failed", "err", err)
		os.Exit(1)
	}
}

func newRootCmd(log logger.Logger) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(log)
		},
	}

	rootCmd := &cobra.Command{
		Use:           "permit-tracker",
		Short:         "Building permit package tracker API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveCmd.RunE,
	}
	rootCmd.AddCommand(
		serveCmd,
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate(log)
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Load counties and checklist definitions (idempotent)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return seed(cmd.Context(), log)
			},
		},
	)
	return rootCmd
}

func serve(log logger.Logger) error {
	log.Info("app: starting", "version", version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, log)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}

	srv := application.HTTPServer()
	log.Info("http: listening", "addr", srv.Addr)

	serverErrCh := make(chan error, 1)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("app: shutdown signal received")
	case err := <-serverErrCh:
		if err != nil {
			log.Critical("http: server failed", "addr", srv.Addr, "err", err)
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), application.Config().HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http: graceful shutdown failed", "err", err)
		runErr = errors.Join(runErr, err)
	}

	if err := application.Close(); err != nil {
		log.Error("app: close failed", "err", err)
		runErr = errors.Join(runErr, err)
	}

	if runErr == nil {
		log.Info("app: stopped")
	}
	return runErr
}

func migrate(log logger.Logger) error {
	cfg, err := config.Load(log)
	if err != nil {
		return err
	}
	cfg.DB.AutoMigrate = true

	dbConn, err := app.OpenDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close(dbConn)

	if cfg.DB.Driver == config.DriverSQLite {
		return nil
	}
	applied, err := db.AppliedMigrations(dbConn)
	if err != nil {
		return err
	}
	log.Info("migrate: done", "applied", len(applied))
	return nil
}

func seed(ctx context.Context, log logger.Logger) error {
	cfg, err := config.Load(log)
	if err != nil {
		return err
	}

	dbConn, err := app.OpenDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close(dbConn)

	store, err := app.NewObjectStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	result, err := app.RunSeed(ctx, app.NewServices(cfg, dbConn, store), log)
	if err != nil {
		return err
	}
	log.Info("seed: done",
		"counties_created", result.CountiesCreated,
		"counties_existing", result.CountiesExisted,
		"items_created", result.ItemsCreated,
		"items_existing", result.ItemsExisted)
	return nil
}
