package jury

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go2motion/contest-backend/internal/category"
	"github.com/go2motion/contest-backend/internal/platform/apperr"
	"github.com/go2motion/contest-backend/internal/user"
)

const memberKey = "juryMember"

// RequireMember lets through only users linked to a jury seat.
func RequireMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := user.Current(c)
		if u == nil {
			apperr.Respond(c, apperr.Unauthenticated("authentication required"))
			return
		}
		m, err := MemberForUser(c.Request.Context(), u.ID)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				err = apperr.Forbidden("only jury members can do this")
			}
			apperr.Respond(c, err)
			return
		}
		c.Set(memberKey, m)
		c.Next()
	}
}

func currentMember(c *gin.Context) *Member {
	v, _ := c.Get(memberKey)
	m, _ := v.(*Member)
	return m
}

// CastVote handles POST /jury/vote.
func CastVote(c *gin.Context) {
	var req CastInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Invalid("invalid request: %v", err))
		return
	}
	jv, err := Cast(c.Request.Context(), currentMember(c), req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"juryVote": jv, "message": "jury vote registered"})
}

// GetRanking handles GET /jury/ranking.
func GetRanking(c *gin.Context) {
	ints := map[string]int{}
	for _, name := range []string{"round", "year", "limit"} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			apperr.Respond(c, apperr.Invalid("%s must be an integer", name))
			return
		}
		ints[name] = n
	}

	ranking, err := Ranking(c.Request.Context(), category.Category(c.Query("category")), ints["round"], ints["year"], ints["limit"])
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ranking": ranking})
}

// AdminListMembers handles GET /admin/jury.
func AdminListMembers(c *gin.Context) {
	members, err := ListMembers(c.Request.Context())
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jury": members})
}

// AdminAddMember handles POST /admin/jury.
func AdminAddMember(c *gin.Context) {
	var req MemberInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Invalid("invalid request: %v", err))
		return
	}
	m, err := AddMember(c.Request.Context(), req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"juryMember": m})
}
