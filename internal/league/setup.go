package league

import (
	"fmt"

	"github.com/go2motion/contest-backend/internal/platform/database"
)

// ConfigureModule applies the contest bounds from config.
func ConfigureModule(maxRoundCfg, minYearCfg int) {
	if maxRoundCfg > 0 {
		maxRound = maxRoundCfg
	}
	if minYearCfg > 0 {
		minYear = minYearCfg
	}
}

func PrimeDB() error {
	if err := database.DB.AutoMigrate(&League{}); err != nil {
		return fmt.Errorf("failed to migrate leagues table: %w", err)
	}
	return nil
}
