package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/choretracker/choretracker/internal/cache"
	"github.com/choretracker/choretracker/internal/config"
	"github.com/choretracker/choretracker/internal/database"
	"github.com/choretracker/choretracker/internal/repository"
	"github.com/choretracker/choretracker/internal/server"
	"github.com/choretracker/choretracker/pkg/logger"
)

type configLoader func() (*config.Config, error)

func newServeCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server. PostgreSQL is used when DATABASE_URL or DB_HOST and
DB_PASSWORD are set, otherwise data lives in memory. Statistics are cached in
Redis when REDIS_HOST is set. SIGINT or SIGTERM shuts the server down gracefully.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			log := logger.New(os.Stdout, cfg.App.LogLevel)
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	var opts []server.Option
	if cfg.RedisEnabled() {
		redisCache, err := cache.NewRedisCache(ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer func() { _ = redisCache.Close() }()

		store = repository.WithStatsCache(store, cache.NewStatsCache(redisCache, cache.DefaultStatsKey, cfg.Stats.CacheTTL), log)
		opts = append(opts, server.WithReadyCheck("redis", redisCache.Ping))
		log.Info("statistics cache enabled", "redis", cfg.Redis.Address(), "ttl", cfg.Stats.CacheTTL.String())
	}

	srv, err := server.New(cfg, log, store, opts...)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return <-errCh
}

// openStore connects to PostgreSQL and applies pending migrations when a
// database is configured, and falls back to the in-memory store otherwise.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (*repository.Store, error) {
	if !cfg.DatabaseEnabled() {
		log.Warn("no database configured, using in-memory store")
		return repository.NewMemoryStore(), nil
	}

	pool, err := database.NewPool(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	migrator, err := database.NewMigrator(pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	applied, err := migrator.Up(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database ready", "migrations_applied", applied)

	return repository.NewPostgresStore(pool), nil
}
