// Package cache stores short-lived JSON snapshots in Redis. Every call is a no-op
// when Redis is not configured or unhealthy, so callers always fall back to the store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go2motion/contest-backend/internal/platform/database"
	"github.com/go2motion/contest-backend/internal/platform/logging"
	"github.com/redis/go-redis/v9"
)

// GetJSON loads key into dst. It reports false on a miss or when Redis is unavailable.
func GetJSON(ctx context.Context, key string, dst any) bool {
	if !database.RedisAvailable() {
		return false
	}
	raw, err := database.RDB.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logging.Log.WithError(err).Warnf("cache read %s", key)
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logging.Log.WithError(err).Warnf("cache decode %s", key)
		return false
	}
	return true
}

// SetJSON stores value under key for ttl.
func SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	if !database.RedisAvailable() {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		logging.Log.WithError(err).Warnf("cache encode %s", key)
		return
	}
	if err := database.RDB.Set(ctx, key, raw, ttl).Err(); err != nil {
		logging.Log.WithError(err).Warnf("cache write %s", key)
	}
}

// DeletePrefix removes every key starting with prefix using SCAN batches.
func DeletePrefix(ctx context.Context, prefix string) {
	if !database.RedisAvailable() {
		return
	}
	var cursor uint64
	for {
		keys, next, err := database.RDB.Scan(ctx, cursor, prefix+"*", 500).Result()
		if err != nil {
			logging.Log.WithError(err).Warnf("cache scan %s", prefix)
			return
		}
		if len(keys) > 0 {
			if err := database.RDB.Del(ctx, keys...).Err(); err != nil {
				logging.Log.WithError(err).Warnf("cache delete %s", prefix)
				return
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}

// DashboardPrefix namespaces the admin dashboard snapshots.
const DashboardPrefix = "admin:dashboard:"

// InvalidateDashboard drops every cached dashboard so the next read rebuilds it.
func InvalidateDashboard(ctx context.Context) {
	DeletePrefix(ctx, DashboardPrefix)
}
