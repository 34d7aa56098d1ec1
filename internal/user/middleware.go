package user

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go2motion/contest-backend/internal/platform/apperr"
	"github.com/go2motion/contest-backend/pkg/token"
)

// CurrentUserKey is the gin context key holding the authenticated *User.
const CurrentUserKey = "currentUser"

// AuthMiddleware requires a valid bearer token and loads its user into the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" {
			apperr.Respond(c, apperr.Unauthenticated("missing bearer token"))
			return
		}

		claims, err := token.Parse(raw)
		if err != nil {
			apperr.Respond(c, apperr.Unauthenticated("invalid or expired token"))
			return
		}

		u, err := GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				err = apperr.Unauthenticated("user no longer exists")
			}
			apperr.Respond(c, err)
			return
		}

		c.Set(CurrentUserKey, u)
		c.Next()
	}
}

// Current returns the authenticated user, or nil outside AuthMiddleware.
func Current(c *gin.Context) *User {
	v, ok := c.Get(CurrentUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*User)
	return u
}

// RequireParticipant rejects users that have not upgraded to a participant role.
func RequireParticipant() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := Current(c)
		if u == nil {
			apperr.Respond(c, apperr.Unauthenticated("authentication required"))
			return
		}
		if !u.Role.IsParticipant() {
			apperr.Respond(c, apperr.Forbidden("only participants can do this"))
			return
		}
		c.Next()
	}
}
