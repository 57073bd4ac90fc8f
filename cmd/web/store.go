package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"luxebites/internal/config"
	"luxebites/internal/database"
)

// openStore connects the configured storage driver. The returned func releases it.
func openStore(ctx context.Context, cfg config.Storage, log *zap.SugaredLogger) (database.Store, func(), error) {
	noop := func() {}

	switch cfg.Driver {
	case "memory":
		log.Info("openStore - Using in-memory storage, carts are lost on restart")
		return database.NewMemoryStore(), noop, nil

	case "file":
		if dir := filepath.Dir(cfg.File); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, noop, fmt.Errorf("create data dir: %w", err)
			}
		}
		db, err := database.NewJSONDatabase(cfg.File)
		if err != nil {
			return nil, noop, err
		}
		log.Infof("openStore - Using JSON file storage at %s", cfg.File)
		return db, noop, nil

	case "redis":
		store, err := database.NewRedisStore(ctx, cfg.RedisURL, cfg.RedisPrefix, cfg.RedisTTL)
		if err != nil {
			return nil, noop, err
		}
		log.Infof("openStore - Using Redis storage, prefix %q, ttl %s", cfg.RedisPrefix, cfg.RedisTTL)
		return store, func() {
			if err := store.Close(); err != nil {
				log.Warnf("openStore - Error closing Redis: %v", err)
			}
		}, nil

	case "postgres":
		store, err := database.NewPostgresStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, noop, err
		}
		log.Info("openStore - Using PostgreSQL storage")
		return store, store.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
