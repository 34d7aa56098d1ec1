package award

import (
	"fmt"

	"github.com/go2motion/contest-backend/internal/platform/database"
	"github.com/go2motion/contest-backend/internal/platform/lock"
)

// ConfigureModule sets the lock that serializes calculations of the same year.
func ConfigureModule(l lock.Locker) {
	locker = l
}

func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Award{}); err != nil {
		return fmt.Errorf("failed to migrate awards table: %w", err)
	}
	return nil
}
