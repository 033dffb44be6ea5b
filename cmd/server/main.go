package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nekogravitycat/tour-booking-backend/internal/config"
	"github.com/nekogravitycat/tour-booking-backend/internal/db"
	"github.com/nekogravitycat/tour-booking-backend/internal/logging"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env is what every subcommand needs before doing its own work.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
}

func loadEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.IsProduction)
	slog.SetDefault(logger)
	return &env{cfg: cfg, logger: logger}, nil
}

func poolOptions(cfg *config.Config) db.PoolOptions {
	return db.PoolOptions{
		MaxConns:        int32(cfg.DBMaxConns),
		ApplicationName: "tour-booking",
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tour-booking",
		Short:         "Trip availability and booking service for a tour-guide marketplace",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serve := newServeCmd()
	root.AddCommand(serve, newMigrateCmd())

	// Running without a subcommand starts the server.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())
	return root
}
