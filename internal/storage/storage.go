// Package storage opens the configured persistence backend
package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/secinto/hrms_backend/internal/config"
	"github.com/secinto/hrms_backend/internal/database"
	"github.com/secinto/hrms_backend/internal/repository"
	"github.com/secinto/hrms_backend/internal/repository/memory"
	"github.com/secinto/hrms_backend/internal/repository/postgres"
)

// Storage is an opened backend
type Storage struct {
	Driver string
	Repos  repository.Repositories

	// Ping reports backend reachability, nil for the memory driver
	Ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Close releases the backend connections
func (s *Storage) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open connects to the backend selected by cfg.DatabaseDriver and prepares its schema
// #INTEGRATION_POINT: Mongo gets its indexes, Postgres gets its migrations
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Storage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.DatabaseDriver {
	case config.DriverMongo:
		dbCfg := database.DefaultConfig()
		dbCfg.URI = cfg.DatabaseURI
		dbCfg.Database = cfg.DatabaseName

		client, err := database.NewClient(dbCfg)
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		if err := client.EnsureIndexes(ctx, logger); err != nil {
			// #IMPLEMENTATION_DECISION: Missing indexes degrade performance, not correctness
			logger.Warn("failed to create indexes", zap.Error(err))
		}
		return &Storage{
			Driver: cfg.DatabaseDriver,
			Repos:  repository.NewMongoRepositories(client),
			Ping:   client.HealthCheck,
			close:  client.Close,
		}, nil

	case config.DriverPostgres:
		pgCfg := database.DefaultPostgresConfig()
		pgCfg.DSN = cfg.PostgresDSN
		pgCfg.MaxOpenConns = cfg.PostgresMaxOpenConns
		pgCfg.MaxIdleConns = cfg.PostgresMaxIdleConns

		pg, err := database.NewPostgres(pgCfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return &Storage{
			Driver: cfg.DatabaseDriver,
			Repos:  postgres.NewRepositories(pg),
			Ping:   pg.HealthCheck,
			close:  func(context.Context) error { return pg.Close() },
		}, nil

	case config.DriverMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		return &Storage{Driver: cfg.DatabaseDriver, Repos: memory.NewRepositories()}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.DatabaseDriver)
	}
}
