package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/nekogravitycat/tour-booking-backend/internal/app"
	"github.com/nekogravitycat/tour-booking-backend/internal/db"
)

func newServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func runServe(ctx context.Context, migrate bool) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	cfg, logger := e.cfg, e.logger

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN, poolOptions(cfg))
	if err != nil {
		return err
	}
	defer pool.Close()

	if migrate {
		if err := db.Migrate(ctx, pool, logger); err != nil {
			return err
		}
	}

	redisClient, err := app.ConnectRedis(ctx, cfg.RedisURL, cfg.IsProduction, logger)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	publisher, err := app.ConnectPublisher(cfg.RabbitMQURL, cfg.IsProduction, logger)
	if err != nil {
		return err
	}

	container := app.NewContainer(app.Config{
		IsProduction:         cfg.IsProduction,
		ProdOrigins:          cfg.ProdOrigins,
		Logger:               logger,
		DBPool:               pool,
		JWTSecret:            cfg.JWTSecret,
		JWTTTL:               cfg.JWTAccessTokenTTL,
		BcryptCost:           cfg.BcryptCost,
		Redis:                redisClient,
		ScheduleCacheTTL:     cfg.ScheduleCacheTTL,
		Publisher:            publisher,
		EventBreakerFailures: cfg.EventBreakerFailures,
		EventBreakerTimeout:  cfg.EventBreakerTimeout,
		DefaultPageSize:      cfg.DefaultPageSize,
		MaxPageSize:          cfg.MaxPageSize,
	})
	defer func() {
		if err := container.Notifier.Close(); err != nil {
			logger.Warn("closing event publisher failed", "error", err)
		}
	}()

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server running", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced to shutdown", "error", err)
	}

	logger.Info("server exited gracefully")
	return nil
}
