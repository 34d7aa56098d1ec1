package health

import (
	"context"
	"net/http"
	"testing"

	"github.com/go2motion/contest-backend/internal/platform/database"
	"github.com/go2motion/contest-backend/internal/platform/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformCheck(t *testing.T) {
	testutil.SetupDB(t)
	ctx := context.Background()
	t.Cleanup(func() { database.UpdateStatus(true, true) })

	t.Run("Happy path - no redis configured", func(t *testing.T) {
		r := PerformCheck(ctx)
		assert.Equal(t, "ok", r.Status)
		assert.Equal(t, StateUp, r.Database)
		assert.Equal(t, StateDisabled, r.Redis)
	})

	t.Run("Unhappy path - redis goes away and comes back", func(t *testing.T) {
		srv := testutil.SetupRedis(t)
		assert.Equal(t, StateUp, PerformCheck(ctx).Redis)

		srv.Close()
		r := PerformCheck(ctx)
		assert.Equal(t, "degraded", r.Status)
		assert.Equal(t, StateDown, r.Redis)
		assert.False(t, database.RedisAvailable())

		require.NoError(t, srv.Restart())
		assert.Equal(t, StateUp, PerformCheck(ctx).Redis)
		assert.True(t, database.RedisAvailable())
	})

	t.Run("Unhappy path - database down answers 503", func(t *testing.T) {
		sqlDB, err := database.DB.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())

		r := PerformCheck(ctx)
		assert.Equal(t, StateDown, r.Database)

		router := testutil.NewRouter()
		router.GET("/healthz", Handler)
		res := testutil.PerformRequest(router, http.MethodGet, "/healthz", nil, nil)
		assert.Equal(t, http.StatusServiceUnavailable, res.Code)
	})
}
