package shutdown

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go2motion/contest-backend/internal/platform/database"
	"github.com/go2motion/contest-backend/internal/platform/logging"
	"github.com/go2motion/contest-backend/pkg/lifecycle"
)

const (
	httpTimeout     = 15 * time.Second
	gracefulTimeout = 30 * time.Second
	forcefulTimeout = time.Second
)

// Coordinator runs the two-phase stop: background services first get a graceful
// signal, and the forceful one only if they overrun.
type Coordinator struct {
	GracefulManager *lifecycle.Manager
	ForcefulManager *lifecycle.Manager
}

func NewCoordinator(gracefulMgr, forcefulMgr *lifecycle.Manager) *Coordinator {
	return &Coordinator{
		GracefulManager: gracefulMgr,
		ForcefulManager: forcefulMgr,
	}
}

// ListenForSignalsAndShutdown blocks until SIGINT or SIGTERM, then stops the
// server and background services and closes the stores.
func (c *Coordinator) ListenForSignalsAndShutdown(server *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	logging.Log.WithField("signal", sig.String()).Info("shutting down")

	c.Shutdown(server)
}

// Shutdown performs the stop sequence without waiting for a signal.
func (c *Coordinator) Shutdown(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), httpTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Log.WithError(err).Error("http server shutdown")
	} else {
		logging.Log.Info("http server stopped")
	}

	c.GracefulManager.Shutdown()
	if remaining := c.GracefulManager.WaitWithTimeout(gracefulTimeout); len(remaining) > 0 {
		logging.Log.WithField("services", remaining).Warn("graceful stop timed out, forcing")
		c.ForcefulManager.Shutdown()
		c.ForcefulManager.WaitWithTimeout(forcefulTimeout)
	}

	database.CloseRedis()
	database.Close()
	logging.Log.Info("shutdown complete")
}
