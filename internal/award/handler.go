package award

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go2motion/contest-backend/internal/category"
	"github.com/go2motion/contest-backend/internal/platform/apperr"
)

func yearParam(c *gin.Context) (int, error) {
	raw := c.Query("year")
	if raw == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Invalid("year must be an integer")
	}
	return year, nil
}

// GetAwards handles GET /awards and GET /admin/awards.
func GetAwards(c *gin.Context) {
	year, err := yearParam(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	awards, err := List(c.Request.Context(), year, category.Category(c.Query("category")))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"awards": awards})
}

// GetUserAwards handles GET /awards/user/:userId.
func GetUserAwards(c *gin.Context) {
	awards, err := ListByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"awards": awards})
}

type calculateRequest struct {
	Year int `json:"year"`
}

// AdminCalculate handles POST /admin/awards/calculate. The year comes from the
// body or the query string and defaults to the current one.
func AdminCalculate(c *gin.Context) {
	var req calculateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.Invalid("invalid request: %v", err))
			return
		}
	}
	if req.Year == 0 {
		year, err := yearParam(c)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		req.Year = year
	}
	if req.Year == 0 {
		req.Year = time.Now().Year()
	}

	awards, err := Calculate(c.Request.Context(), req.Year)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"awards": awards, "message": "awards calculated"})
}

// AdminUpdate handles PUT /admin/awards/:id.
func AdminUpdate(c *gin.Context) {
	var req PrizeUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Invalid("invalid request: %v", err))
		return
	}
	a, err := UpdatePrize(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"award": a})
}
