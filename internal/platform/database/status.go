package database

import (
	"sync"

	"github.com/go2motion/contest-backend/internal/platform/logging"
)

// statusManager tracks dependency health reported by the health checker.
type statusManager struct {
	mu             sync.RWMutex
	isRedisHealthy bool
	isDBHealthy    bool
}

var globalStatus = &statusManager{
	isRedisHealthy: true,
	isDBHealthy:    true,
}

func IsRedisHealthy() bool {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return globalStatus.isRedisHealthy
}

func IsDBHealthy() bool {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return globalStatus.isDBHealthy
}

// UpdateStatus records the latest check results and logs transitions only.
func UpdateStatus(redisHealthy, dbHealthy bool) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()

	if globalStatus.isRedisHealthy != redisHealthy {
		globalStatus.isRedisHealthy = redisHealthy
		if redisHealthy {
			logging.Log.Info("health: redis is available again")
		} else {
			logging.Log.Warn("health: redis became unavailable")
		}
	}
	if globalStatus.isDBHealthy != dbHealthy {
		globalStatus.isDBHealthy = dbHealthy
		if dbHealthy {
			logging.Log.Info("health: database is available again")
		} else {
			logging.Log.Error("health: database became unavailable")
		}
	}
}
