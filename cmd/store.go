package cmd

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"taskboard-service/config"
	"taskboard-service/logging"
	"taskboard-service/repositories"
)

// openStore connects the configured backend and brings its schema up to date.
func openStore(ctx context.Context, cfg *config.Config) (*repositories.Store, error) {
	switch cfg.StorageDriver {
	case config.DriverMongo:
		client, err := repositories.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDBName)
		if err := repositories.MigrateMongo(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Connected to MongoDB database %s", cfg.MongoDBName)
		return repositories.NewMongoStore(db), nil
	default:
		db, err := repositories.OpenGorm(cfg.StorageDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store := repositories.NewGormStore(db)
		if err := repositories.MigrateGorm(db); err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Connected to %s database", cfg.StorageDriver)
		return store, nil
	}
}

// withCache wraps store with Redis when REDIS_ADDR is set. An unreachable
// Redis is logged and skipped.
func withCache(ctx context.Context, cfg *config.Config, store *repositories.Store) *repositories.Store {
	if cfg.RedisAddr == "" {
		return store
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		logging.Logger.Warnf("Event ID: CACHE_DISABLED, Description: Redis at %s unreachable: %v", cfg.RedisAddr, err)
		_ = client.Close()
		return store
	}
	logging.Logger.Infof("Event ID: CACHE_ENABLED, Description: Caching lists in Redis at %s for %s", cfg.RedisAddr, cfg.CacheTTL)
	return repositories.WithCache(store, client, cfg.CacheTTL)
}

func describeStore(cfg *config.Config) string {
	if cfg.StorageDriver == config.DriverMongo {
		return fmt.Sprintf("mongo (%s)", cfg.MongoDBName)
	}
	return cfg.StorageDriver
}
