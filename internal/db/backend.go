package db

import (
	"context"
	"fmt"

	"taskboard/internal/config"
	"taskboard/internal/logger"
	"taskboard/internal/migrations"
	"taskboard/internal/repository"
)

// Pinger reports whether the storage engine is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Backend bundles the stores of the configured storage driver.
type Backend struct {
	Driver string
	Tasks  repository.TaskStore
	Users  repository.UserStore
	Pinger Pinger
	close  func()
}

func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Open connects to the storage selected by cfg.StorageDriver.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		pool, err := ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.AutoMigrate {
			err := migrations.Apply(ctx, pool, func(name string) {
				logger.Info("migration applied", "file", name)
			})
			if err != nil {
				pool.Close()
				return nil, err
			}
		}
		return &Backend{
			Driver: cfg.StorageDriver,
			Tasks:  repository.NewTaskRepository(pool),
			Users:  repository.NewUserRepository(pool),
			Pinger: pool,
			close:  pool.Close,
		}, nil

	case config.DriverSQLite:
		gdb, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		logger.Info("database connected", "driver", "sqlite", "path", cfg.SQLitePath)
		return &Backend{
			Driver: cfg.StorageDriver,
			Tasks:  repository.NewGormTaskRepository(gdb),
			Users:  repository.NewGormUserRepository(gdb),
			Pinger: PingFunc(sqlDB.PingContext),
			close:  func() { _ = sqlDB.Close() },
		}, nil

	case config.DriverMongo:
		client, err := ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		mdb := client.Database(cfg.MongoDatabase)
		if err := repository.EnsureMongoIndexes(ctx, mdb); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return &Backend{
			Driver: cfg.StorageDriver,
			Tasks:  repository.NewMongoTaskRepository(mdb),
			Users:  repository.NewMongoUserRepository(mdb),
			Pinger: PingFunc(func(ctx context.Context) error { return client.Ping(ctx, nil) }),
			close:  func() { _ = client.Disconnect(context.Background()) },
		}, nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
