package jury

import (
	"fmt"

	"github.com/go2motion/contest-backend/internal/platform/database"
)

func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Member{}, &Vote{}); err != nil {
		return fmt.Errorf("failed to migrate jury tables: %w", err)
	}
	return nil
}
