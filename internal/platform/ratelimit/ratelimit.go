// Package ratelimit counts hits per key in a Redis sorted-set sliding window.
// Without Redis every window is disabled and lets traffic through.
package ratelimit

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go2motion/contest-backend/internal/platform/apperr"
	"github.com/go2motion/contest-backend/internal/platform/database"
	"github.com/go2motion/contest-backend/internal/platform/logging"
	"github.com/redis/go-redis/v9"
)

// Window allows Limit hits per key within Span. Keys are stored under Prefix.
type Window struct {
	Prefix string
	Limit  int64
	Span   time.Duration
}

// generateHitID builds a 16-byte member: 8 bytes of nanosecond timestamp
// followed by 8 random bytes, so hits in the same microsecond do not collide.
func generateHitID(t time.Time) (string, error) {
	b := make([]byte, 16)
	binary.BigEndian.PutUint64(b[0:8], uint64(t.UnixNano()))
	if _, err := rand.Read(b[8:16]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Hit records one hit for key and returns how many fall inside the window.
// It reports zero when Redis is unavailable or key is empty.
func (w Window) Hit(ctx context.Context, key string, now time.Time) (int64, error) {
	if key == "" || !database.RedisAvailable() {
		return 0, nil
	}

	full := w.Prefix + key
	minScore := float64(now.Add(-w.Span).UnixMicro())
	member, err := generateHitID(now)
	if err != nil {
		return 0, fmt.Errorf("generating hit id: %w", err)
	}

	pipe := database.RDB.TxPipeline()
	pipe.ZRemRangeByScore(ctx, full, "-inf", fmt.Sprintf("(%f", minScore))
	pipe.ZAdd(ctx, full, redis.Z{Score: float64(now.UnixMicro()), Member: member})
	pipe.Expire(ctx, full, w.Span+time.Minute)
	countCmd := pipe.ZCard(ctx, full)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("recording hit on %s: %w", full, err)
	}
	return countCmd.Val(), nil
}

// Allow records a hit and reports whether key is still under the limit.
// Redis failures let the hit through.
func (w Window) Allow(ctx context.Context, key string) bool {
	count, err := w.Hit(ctx, key, time.Now())
	if err != nil {
		logging.Log.WithError(err).Warnf("rate limiter %s unavailable", w.Prefix)
		return true
	}
	return count <= w.Limit
}

// Reset forgets every hit recorded for key.
func (w Window) Reset(ctx context.Context, key string) {
	if key == "" || !database.RedisAvailable() {
		return
	}
	if err := database.RDB.Del(ctx, w.Prefix+key).Err(); err != nil {
		logging.Log.WithError(err).Warnf("resetting rate limit %s", w.Prefix)
	}
}

var apiWindow = Window{Prefix: "api_requests:", Limit: 100, Span: 15 * time.Minute}

// ConfigureAPI sets the per-IP budget applied to every API request.
// Non-positive values keep the defaults.
func ConfigureAPI(requests int, span time.Duration) {
	if requests > 0 {
		apiWindow.Limit = int64(requests)
	}
	if span > 0 {
		apiWindow.Span = span
	}
}

// Middleware rejects a client IP with 429 once it exceeds the API budget.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !apiWindow.Allow(c.Request.Context(), c.ClientIP()) {
			apperr.Respond(c, apperr.RateLimited("too many requests, please try again later"))
			return
		}
		c.Next()
	}
}
