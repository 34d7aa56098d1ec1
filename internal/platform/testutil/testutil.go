// Package testutil holds helpers shared by package tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go2motion/contest-backend/internal/platform/config"
	"github.com/go2motion/contest-backend/internal/platform/database"
	"github.com/go2motion/contest-backend/internal/platform/logging"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// SetupDB points database.DB at a fresh SQLite file migrated with models.
// Immediate transactions and a busy timeout make concurrent writers queue up
// instead of failing, the way they would on the production store.
func SetupDB(t *testing.T, models ...any) {
	t.Helper()
	logging.Log = logrus.New()
	logging.Log.SetLevel(logrus.WarnLevel)

	dsn := fmt.Sprintf("%s?_busy_timeout=10000&_txlock=immediate", filepath.Join(t.TempDir(), "test.db"))
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: dsn}, false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models...))

	previous := database.DB
	database.DB = db
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		database.DB = previous
	})
}

// SetupRedis points database.RDB at an in-memory Redis server.
func SetupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	srv := miniredis.RunT(t)

	previous := database.RDB
	database.RDB = redis.NewClient(&redis.Options{Addr: srv.Addr()})
	database.UpdateStatus(true, true)
	t.Cleanup(func() {
		_ = database.RDB.Close()
		database.RDB = previous
	})
	return srv
}

// NewRouter returns a bare engine in test mode.
func NewRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// PerformRequest sends body as JSON through router and records the response.
func PerformRequest(router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	reqBody := &bytes.Buffer{}
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			panic("failed to marshal request body: " + err.Error())
		}
		reqBody = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

// Bearer builds an Authorization header map.
func Bearer(tok string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + tok}
}

// DecodeJSON unmarshals a recorded response body.
func DecodeJSON(t *testing.T, res *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), dst), res.Body.String())
}
