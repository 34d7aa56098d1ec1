package metadata

import (
	"fmt"

	"github.com/go2motion/contest-backend/internal/platform/database"
)

func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Entry{}); err != nil {
		return fmt.Errorf("failed to migrate metadata table: %w", err)
	}
	return nil
}
