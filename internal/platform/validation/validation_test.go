package validation

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go2motion/contest-backend/internal/platform/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type colorRequest struct {
	Color string `json:"color" binding:"required,color"`
}

func TestRegisterStringRule(t *testing.T) {
	require.NoError(t, RegisterStringRule("color", func(s string) bool { return s == "RED" || s == "BLUE" }))

	router := testutil.NewRouter()
	router.POST("/", func(c *gin.Context) {
		var req colorRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	res := testutil.PerformRequest(router, http.MethodPost, "/", gin.H{"color": "RED"}, nil)
	assert.Equal(t, http.StatusOK, res.Code)

	res = testutil.PerformRequest(router, http.MethodPost, "/", gin.H{"color": "GREEN"}, nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = testutil.PerformRequest(router, http.MethodPost, "/", gin.H{}, nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}
