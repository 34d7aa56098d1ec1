// Package health pings the database and Redis in the background and feeds the
// results to database.UpdateStatus, which gates the Redis-backed features.
package health

import (
	"context"
	"time"

	"github.com/go2motion/contest-backend/internal/platform/database"
	"github.com/go2motion/contest-backend/internal/platform/logging"
	"github.com/go2motion/contest-backend/pkg/lifecycle"
)

const (
	checkInterval = 5 * time.Second
	pingTimeout   = 2 * time.Second
)

func pingDB(ctx context.Context) error {
	if database.DB == nil {
		return errNotConnected
	}
	sqlDB, err := database.DB.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func pingRedis(ctx context.Context) error {
	if database.RDB == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return database.RDB.Ping(ctx).Err()
}

// PerformCheck pings both stores once and records the outcome.
func PerformCheck(ctx context.Context) Report {
	dbErr := pingDB(ctx)
	redisErr := pingRedis(ctx)
	if dbErr != nil {
		logging.Log.WithError(dbErr).Debug("health: database ping failed")
	}
	if redisErr != nil {
		logging.Log.WithError(redisErr).Debug("health: redis ping failed")
	}
	database.UpdateStatus(redisErr == nil, dbErr == nil)
	return current()
}

// Run repeats PerformCheck until the handle is shut down.
func Run(handle *lifecycle.Handle) {
	defer handle.Close()
	logging.Log.Info("health checker started")

	for {
		if err := handle.Sleep(checkInterval); err != nil {
			logging.Log.Info("health checker stopped")
			return
		}
		PerformCheck(handle.Ctx())
	}
}
