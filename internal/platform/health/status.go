package health

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go2motion/contest-backend/internal/platform/database"
)

var errNotConnected = errors.New("not connected")

type State string

const (
	StateUp       State = "up"
	StateDown     State = "down"
	StateDisabled State = "disabled"
)

// Report is the body of GET /healthz.
type Report struct {
	Status   string `json:"status"`
	Database State  `json:"database"`
	Redis    State  `json:"redis"`
}

func current() Report {
	r := Report{Status: "ok", Database: StateUp, Redis: StateUp}
	if !database.IsDBHealthy() {
		r.Database = StateDown
		r.Status = "unavailable"
	}
	switch {
	case database.RDB == nil:
		r.Redis = StateDisabled
	case !database.IsRedisHealthy():
		// Redis is optional, so losing it only degrades the service.
		r.Redis = StateDown
		if r.Status == "ok" {
			r.Status = "degraded"
		}
	}
	return r
}

// Handler answers 503 only when the database is down.
func Handler(c *gin.Context) {
	r := current()
	code := http.StatusOK
	if r.Database == StateDown {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, r)
}
