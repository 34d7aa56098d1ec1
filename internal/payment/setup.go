package payment

import (
	"fmt"

	"github.com/go2motion/contest-backend/internal/platform/database"
)

func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Payment{}); err != nil {
		return fmt.Errorf("failed to migrate payments table: %w", err)
	}
	return nil
}
