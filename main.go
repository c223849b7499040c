package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"patient-activation/config"
	"patient-activation/storage"
	"patient-activation/utilities"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "objectives",
		Short:        "Patient-activation objectives API",
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP API",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "ensure-table",
			Short: "Create the objectives table if it does not exist",
			RunE:  runEnsureTable,
		},
	)
	return root
}

func setup() (*config.Config, error) {
	cfg, dotenv, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := utilities.InitLogger(cfg.Env); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	if !dotenv {
		utilities.LogInfo("no .env file found, using process environment")
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer utilities.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		utilities.LogError(err, "opening objective store")
		return err
	}
	defer closeStore()

	if err := ensureSchema(ctx, store); err != nil {
		utilities.LogWarn("table setup failed, storage operations may fail until permissions are configured: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           NewRouter(cfg.Server, store),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utilities.LogInfo("server listening on :%s (storage: %s)", cfg.Server.Port, cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			utilities.LogError(err, "http server failed")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	utilities.LogInfo("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utilities.LogError(err, "http server shutdown")
		return err
	}
	utilities.LogInfo("server stopped")
	return nil
}

func runEnsureTable(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer utilities.Sync()

	store, closeStore, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	return ensureSchema(cmd.Context(), store)
}

func ensureSchema(ctx context.Context, store storage.Store) error {
	if e, ok := store.(storage.SchemaEnsurer); ok {
		return e.EnsureSchema(ctx)
	}
	return nil
}
