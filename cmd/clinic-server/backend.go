package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/config"
	"github.com/clinic/clinic/internal/domain/clinic"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/migrations"
)

// backend is the snapshot store selected by STORE_DRIVER. repo is nil for
// the memory driver.
type backend struct {
	repo    clinic.SnapshotRepository
	probe   db.Probe
	closers []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func poolConfig(cfg *config.Config) db.PoolConfig {
	return db.PoolConfig{
		URL:             cfg.DatabaseURL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Hour,
	}
}

func memoryProbe() db.Probe {
	return db.Probe{
		Driver: config.DriverMemory,
		Ping:   func(context.Context) error { return nil },
	}
}

func openBackend(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*backend, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return &backend{probe: memoryProbe()}, nil

	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, poolConfig(cfg))
		if err != nil {
			return nil, err
		}
		n, err := db.NewMigrator(pool, migrations.FS).Up(ctx)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info().Int("applied", n).Msg("connected to postgres")
		return &backend{
			repo:    clinic.NewSnapshotRepoPG(pool, cfg.SnapshotRetain),
			probe:   db.PostgresProbe(pool),
			closers: []func(){pool.Close},
		}, nil

	case config.DriverMongo:
		client, database, err := db.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("database", cfg.MongoDatabase).Msg("connected to mongodb")
		disconnect := func() { client.Disconnect(context.Background()) }
		return &backend{
			repo:    clinic.NewSnapshotRepoMongo(database),
			probe:   db.MongoProbe(client),
			closers: []func(){disconnect},
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
