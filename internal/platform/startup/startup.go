// Package startup migrates every module's tables before the server starts.
package startup

import (
	"fmt"

	"github.com/go2motion/contest-backend/internal/award"
	"github.com/go2motion/contest-backend/internal/forum"
	"github.com/go2motion/contest-backend/internal/jury"
	"github.com/go2motion/contest-backend/internal/league"
	"github.com/go2motion/contest-backend/internal/payment"
	"github.com/go2motion/contest-backend/internal/platform/logging"
	"github.com/go2motion/contest-backend/internal/platform/metadata"
	"github.com/go2motion/contest-backend/internal/user"
	"github.com/go2motion/contest-backend/internal/video"
	"github.com/go2motion/contest-backend/internal/vote"
)

type primer struct {
	name string
	run  func() error
}

// Referenced tables come before the tables that point at them.
var primers = []primer{
	{"metadata", metadata.PrimeDB},
	{"user", user.PrimeDB},
	{"league", league.PrimeDB},
	{"payment", payment.PrimeDB},
	{"video", video.PrimeDB},
	{"vote", vote.PrimeDB},
	{"jury", jury.PrimeDB},
	{"award", award.PrimeDB},
	{"forum", forum.PrimeDB},
}

// InitializeApplication runs every module's migration against database.DB.
func InitializeApplication() error {
	for _, p := range primers {
		if err := p.run(); err != nil {
			return fmt.Errorf("initializing %s: %w", p.name, err)
		}
	}
	logging.Log.WithField("modules", len(primers)).Info("database schema ready")
	return nil
}
