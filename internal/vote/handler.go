package vote

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go2motion/contest-backend/internal/platform/apperr"
	"github.com/go2motion/contest-backend/internal/user"
)

type voteRequest struct {
	Category string `json:"category" binding:"required,category"`
}

// CastVote handles POST /votes/:videoId.
func CastVote(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Invalid("invalid request: %v", err))
		return
	}

	v, err := Cast(c.Request.Context(), user.Current(c), c.Param("videoId"), req.Category)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "vote registered", "vote": v})
}

// RemoveVote handles DELETE /votes/:videoId. The category may come in the body
// or in the query string.
func RemoveVote(c *gin.Context) {
	cat := c.Query("category")
	if cat == "" {
		var req voteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.Invalid("category is required"))
			return
		}
		cat = req.Category
	}

	if err := Remove(c.Request.Context(), user.Current(c), c.Param("videoId"), cat); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "vote removed"})
}

// CheckVote handles GET /votes/:videoId/check.
func CheckVote(c *gin.Context) {
	res, err := Check(c.Request.Context(), user.Current(c), c.Param("videoId"), c.Query("category"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
