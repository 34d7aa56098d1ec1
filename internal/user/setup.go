package user

import (
	"fmt"
	"time"

	"github.com/go2motion/contest-backend/internal/platform/database"
	"github.com/go2motion/contest-backend/internal/platform/logging"
)

// migrateDB creates or updates the users table.
func migrateDB() error {
	if err := database.DB.AutoMigrate(&User{}); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}
	logging.Log.Debug("users table migrated")
	return nil
}

// ConfigureModule applies the login limiter settings.
func ConfigureModule(maxAttempts int, window time.Duration) {
	if maxAttempts > 0 {
		loginLimiter.Limit = int64(maxAttempts)
	}
	if window > 0 {
		loginLimiter.Span = window
	}
}

// PrimeDB is the module's startup entry point.
func PrimeDB() error {
	return migrateDB()
}
