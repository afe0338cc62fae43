package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	postgresRepo "github.com/iho/banking/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/banking/internal/adapter/repository/redis"
	"github.com/iho/banking/internal/infrastructure/config"
	"github.com/iho/banking/internal/infrastructure/metrics"
	"github.com/iho/banking/internal/infrastructure/postgres"
	"github.com/iho/banking/internal/infrastructure/redis"
	"github.com/iho/banking/internal/usecase"
)

// services are the use cases a command runs against.
type services struct {
	transfer *usecase.TransferUseCase
	ledger   *usecase.LedgerUseCase
	close    func()
}

// deps are the side-effecting entry points of the CLI.
type deps struct {
	loadConfig  func() (*config.Config, error)
	open        func(ctx context.Context, cfg *config.Config, log zerolog.Logger, reg prometheus.Registerer) (*services, error)
	migrateUp   func(databaseURL string) error
	migrateDown func(databaseURL string) error
}

func defaultDeps() deps {
	return deps{
		loadConfig:  config.Load,
		open:        openServices,
		migrateUp:   postgres.RunMigrations,
		migrateDown: postgres.RunMigrationsDown,
	}
}

// openServices connects to PostgreSQL (and Redis when the balance cache is
// enabled) and wires the use cases.
func openServices(ctx context.Context, cfg *config.Config, log zerolog.Logger, reg prometheus.Registerer) (*services, error) {
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseConnectTimeout,
		Logger:         log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	log.Debug().Msg("connected to postgres")

	txManager, err := postgresRepo.NewTxManagerWithIsolation(pool, cfg.DatabaseIsolation)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: DATABASE_ISOLATION: %v", errInvalidInput, err)
	}

	closers := []func(){pool.Close}
	opts := []usecase.Option{
		usecase.WithLogger(log),
		usecase.WithMetrics(metrics.New(reg)),
		usecase.WithTransactionTimeout(cfg.DatabaseTimeout),
	}

	if cfg.BalanceCacheEnabled {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Debug().Msg("connected to redis")

		closers = append(closers, func() { _ = redisClient.Close() })
		opts = append(opts, usecase.WithBalanceCache(redisRepo.NewBalanceCache(redisClient, cfg.BalanceCacheTTL)))
	}

	return &services{
		transfer: usecase.NewTransferUseCase(
			txManager,
			postgresRepo.NewAccountRepository(pool),
			postgresRepo.NewULIDGenerator(),
			opts...,
		),
		ledger: usecase.NewLedgerUseCase(postgresRepo.NewLedgerRepository(pool)),
		close: func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		},
	}, nil
}
