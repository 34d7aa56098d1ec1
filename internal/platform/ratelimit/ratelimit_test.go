package ratelimit

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go2motion/contest-backend/internal/platform/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow(t *testing.T) {
	ctx := context.Background()
	w := Window{Prefix: "test_hits:", Limit: 2, Span: time.Minute}

	t.Run("Happy path - disabled without redis", func(t *testing.T) {
		n, err := w.Hit(ctx, "1.2.3.4", time.Now())
		require.NoError(t, err)
		assert.Zero(t, n)
		for i := 0; i < 5; i++ {
			assert.True(t, w.Allow(ctx, "1.2.3.4"))
		}
	})

	srv := testutil.SetupRedis(t)

	t.Run("Happy path - hits slide out of the window", func(t *testing.T) {
		start := time.Now()
		for i, want := range []int64{1, 2, 3} {
			n, err := w.Hit(ctx, "1.2.3.4", start.Add(time.Duration(i)*time.Second))
			require.NoError(t, err)
			assert.Equal(t, want, n)
		}
		n, err := w.Hit(ctx, "1.2.3.4", start.Add(time.Minute+time.Second))
		require.NoError(t, err)
		assert.EqualValues(t, 3, n, "only the first hit expired")
		assert.True(t, srv.Exists("test_hits:1.2.3.4"))
	})

	t.Run("Happy path - keys are counted apart and reset", func(t *testing.T) {
		n, err := w.Hit(ctx, "5.6.7.8", time.Now())
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		w.Reset(ctx, "5.6.7.8")
		assert.False(t, srv.Exists("test_hits:5.6.7.8"))
		assert.True(t, srv.Exists("test_hits:1.2.3.4"))
	})

	t.Run("Unhappy path - over the limit", func(t *testing.T) {
		assert.True(t, w.Allow(ctx, "9.9.9.9"))
		assert.True(t, w.Allow(ctx, "9.9.9.9"))
		assert.False(t, w.Allow(ctx, "9.9.9.9"))
	})
}

func TestMiddleware(t *testing.T) {
	ConfigureAPI(3, time.Minute)
	t.Cleanup(func() { ConfigureAPI(100, 15*time.Minute) })

	router := testutil.NewRouter()
	api := router.Group("/api", Middleware())
	api.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	t.Run("Happy path - no limit without redis", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			res := testutil.PerformRequest(router, http.MethodGet, "/api/ping", nil, nil)
			assert.Equal(t, http.StatusNoContent, res.Code)
		}
	})

	t.Run("Unhappy path - budget exhausted answers 429", func(t *testing.T) {
		srv := testutil.SetupRedis(t)
		for i := 0; i < 3; i++ {
			res := testutil.PerformRequest(router, http.MethodGet, "/api/ping", nil, nil)
			require.Equal(t, http.StatusNoContent, res.Code)
		}
		res := testutil.PerformRequest(router, http.MethodGet, "/api/ping", nil, nil)
		assert.Equal(t, http.StatusTooManyRequests, res.Code)
		var body map[string]string
		testutil.DecodeJSON(t, res, &body)
		assert.Contains(t, body["error"], "too many requests")

		srv.FlushAll()
		res = testutil.PerformRequest(router, http.MethodGet, "/api/ping", nil, nil)
		assert.Equal(t, http.StatusNoContent, res.Code)
	})
}
