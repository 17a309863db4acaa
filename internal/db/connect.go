package db

import (
	"context"
	"fmt"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/config"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/kv"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(dsn string) *pgxpool.Pool {
	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		logger.Fatal("failed to create database pool", "error", err)
	}

	if err := db.Ping(context.Background()); err != nil {
		logger.Fatal("failed to ping database", "error", err)
	}

	logger.Info("database connected")
	return db
}

// OpenStore builds the key-value store selected by STORAGE_BACKEND.
// The returned close function releases the underlying connections.
func OpenStore(ctx context.Context, cfg *config.Config) (kv.Store, func(), error) {
	switch cfg.StorageBackend {
	case config.StorageMemory:
		logger.Warn("using in-memory storage; state is lost on restart")
		return kv.Instrument(kv.NewMemory(), config.StorageMemory), func() {}, nil

	case config.StorageRedis:
		client, err := kv.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		logger.Info("redis connected", "addr", cfg.RedisAddr)
		store := kv.NewRedis(client, cfg.KeyNamespace)
		return kv.Instrument(store, config.StorageRedis), func() { _ = client.Close() }, nil

	case config.StoragePostgres:
		pool := Connect(cfg.DatabaseURL)
		store := kv.NewPostgres(pool)
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate kv_store: %w", err)
		}
		return kv.Instrument(store, config.StoragePostgres), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}
