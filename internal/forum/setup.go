package forum

import (
	"fmt"

	"github.com/go2motion/contest-backend/internal/platform/database"
)

func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Topic{}, &Reply{}); err != nil {
		return fmt.Errorf("failed to migrate forum tables: %w", err)
	}
	return nil
}
