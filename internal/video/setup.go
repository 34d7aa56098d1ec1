package video

import (
	"fmt"

	"github.com/go2motion/contest-backend/internal/platform/database"
)

// ConfigureModule toggles whether submissions must reference a completed payment.
func ConfigureModule(paymentRequired bool) {
	requirePayment = paymentRequired
}

func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Video{}, &VideoCategory{}); err != nil {
		return fmt.Errorf("failed to migrate videos tables: %w", err)
	}
	return nil
}
