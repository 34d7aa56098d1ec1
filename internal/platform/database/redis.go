package database

import (
	"context"
	"time"

	"github.com/go2motion/contest-backend/internal/platform/config"
	"github.com/go2motion/contest-backend/internal/platform/logging"
	"github.com/redis/go-redis/v9"
)

// RDB is the shared Redis client. It stays nil when Redis is not configured, and every
// Redis-backed feature checks RedisAvailable before using it.
var RDB *redis.Client

// Ctx is the background context for Redis calls made outside a request.
var Ctx = context.Background()

// InitRedis connects to Redis when an address is configured.
func InitRedis(cfg config.RedisConfig) {
	if cfg.Address == "" {
		logging.Log.Info("redis address not configured, running without cache")
		return
	}

	RDB = redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(Ctx, 3*time.Second)
	defer cancel()
	if err := RDB.Ping(ctx).Err(); err != nil {
		logging.Log.WithError(err).Fatal("cannot reach redis")
	}
	logging.Log.Infof("connected to redis at %s", cfg.Address)
}

// RedisAvailable reports whether Redis is configured and currently healthy.
func RedisAvailable() bool {
	return RDB != nil && IsRedisHealthy()
}

func CloseRedis() {
	if RDB == nil {
		return
	}
	if err := RDB.Close(); err != nil {
		logging.Log.WithError(err).Warn("closing redis")
	}
}
