package vote

import (
	"fmt"

	"github.com/go2motion/contest-backend/internal/platform/database"
)

func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Vote{}); err != nil {
		return fmt.Errorf("failed to migrate votes table: %w", err)
	}
	return nil
}
