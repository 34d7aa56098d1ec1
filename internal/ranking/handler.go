package ranking

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go2motion/contest-backend/internal/category"
	"github.com/go2motion/contest-backend/internal/platform/apperr"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

func intQuery(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Invalid("%s must be an integer", name)
	}
	return n, nil
}

// DateQuery parses an optional RFC 3339 or YYYY-MM-DD query parameter.
func DateQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperr.Invalid("%s must be a date", name)
}

func parseFilter(c *gin.Context) (Filter, error) {
	f := Filter{Category: category.Category(c.Query("category"))}
	var err error
	if f.Round, err = intQuery(c, "round"); err != nil {
		return f, err
	}
	if f.Year, err = intQuery(c, "year"); err != nil {
		return f, err
	}
	if f.Limit, err = intQuery(c, "limit"); err != nil {
		return f, err
	}
	if f.From, err = DateQuery(c, "startDate"); err != nil {
		return f, err
	}
	f.To, err = DateQuery(c, "endDate")
	return f, err
}

// GetRanking handles GET /ranking.
func GetRanking(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	f.From, f.To = nil, nil
	if f.Limit < 1 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}

	entries, err := Videos(c.Request.Context(), f)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ranking": entries})
}

// GetUserRanking handles GET /ranking/user/:userId.
func GetUserRanking(c *gin.Context) {
	year, err := intQuery(c, "year")
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if year == 0 {
		year = time.Now().Year()
	}
	standing, err := ForUser(c.Request.Context(), c.Param("userId"), year)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, standing)
}

// AdminGetRankings handles GET /admin/rankings. It accepts date bounds and has
// no default cap.
func AdminGetRankings(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	entries, err := Videos(c.Request.Context(), f)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rankings": entries})
}
