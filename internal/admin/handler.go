package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go2motion/contest-backend/internal/platform/apperr"
	"github.com/go2motion/contest-backend/internal/ranking"
)

func period(c *gin.Context) (Period, error) {
	from, err := ranking.DateQuery(c, "startDate")
	if err != nil {
		return Period{}, err
	}
	to, err := ranking.DateQuery(c, "endDate")
	if err != nil {
		return Period{}, err
	}
	return Period{From: from, To: to}, nil
}

// GetDashboard handles GET /admin/dashboard.
func GetDashboard(c *gin.Context) {
	p, err := period(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	d, err := BuildDashboard(c.Request.Context(), p)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// GetUserStats handles GET /admin/users/stats.
func GetUserStats(c *gin.Context) {
	stats, err := UserStats(c.Request.Context())
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": stats})
}

// GetVideoStats handles GET /admin/videos/stats.
func GetVideoStats(c *gin.Context) {
	p, err := period(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	round, _ := strconv.Atoi(c.Query("round"))
	year, _ := strconv.Atoi(c.Query("year"))

	videos, err := VideoStats(c.Request.Context(), p, round, year)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

// GetRevenue handles GET /admin/reports/revenue.
func GetRevenue(c *gin.Context) {
	p, err := period(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	report, err := Revenue(c.Request.Context(), p)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
