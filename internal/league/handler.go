package league

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go2motion/contest-backend/internal/platform/apperr"
)

func optionalInt(c *gin.Context, name string) (*int, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperr.Invalid("%s must be an integer", name)
	}
	return &v, nil
}

// yearOrCurrent reads ?year, defaulting to the current year.
func yearOrCurrent(c *gin.Context) (int, error) {
	y, err := optionalInt(c, "year")
	if err != nil {
		return 0, err
	}
	if y == nil {
		return now().Year(), nil
	}
	return *y, nil
}

// GetLeagues handles GET /leagues.
func GetLeagues(c *gin.Context) {
	year, err := optionalInt(c, "year")
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	var active *bool
	if raw := c.Query("active"); raw != "" {
		v := raw == "true"
		active = &v
	}

	leagues, err := List(c.Request.Context(), year, active)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	t := now()
	views := make([]View, len(leagues))
	for i := range leagues {
		views[i] = leagues[i].View(t)
	}
	c.JSON(http.StatusOK, views)
}

// GetCurrentLeague handles GET /leagues/current.
func GetCurrentLeague(c *gin.Context) {
	l, err := Current(c.Request.Context())
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, l.View(now()))
}

// AdminListLeagues handles GET /admin/leagues.
func AdminListLeagues(c *gin.Context) {
	stats, err := ListWithStats(c.Request.Context())
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// AdminUpsertLeague handles POST /admin/leagues.
func AdminUpsertLeague(c *gin.Context) {
	var req UpsertInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Invalid("invalid request: %v", err))
		return
	}
	l, err := Upsert(c.Request.Context(), req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, l.View(now()))
}

type statusRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// AdminSetLeagueStatus handles PATCH /admin/leagues/:round/status.
func AdminSetLeagueStatus(c *gin.Context) {
	round, err := strconv.Atoi(c.Param("round"))
	if err != nil {
		apperr.Respond(c, apperr.Invalid("round must be an integer"))
		return
	}
	year, err := yearOrCurrent(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Invalid("invalid request: %v", err))
		return
	}

	l, err := SetStatus(c.Request.Context(), round, year, *req.IsActive)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, l.View(now()))
}

// AdminDeleteLeague handles DELETE /admin/leagues/:round.
func AdminDeleteLeague(c *gin.Context) {
	round, err := strconv.Atoi(c.Param("round"))
	if err != nil {
		apperr.Respond(c, apperr.Invalid("round must be an integer"))
		return
	}
	year, err := yearOrCurrent(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if err := Delete(c.Request.Context(), round, year); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "league deleted"})
}
