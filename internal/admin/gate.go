// Package admin gates administrator routes by an email allow-list and serves
// the reporting endpoints.
package admin

import (
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go2motion/contest-backend/internal/platform/apperr"
	"github.com/go2motion/contest-backend/internal/platform/config"
	"github.com/go2motion/contest-backend/internal/platform/logging"
	"github.com/go2motion/contest-backend/internal/user"
)

var (
	mu        sync.RWMutex
	allowList []string
)

// ConfigureModule installs the allow-list. Entries are normalized the same way
// as the ADMIN_EMAILS variable.
func ConfigureModule(emails []string) {
	list := config.ParseEmailList(emails)
	mu.Lock()
	allowList = list
	mu.Unlock()
	if len(list) == 0 {
		logging.Log.Warn("admin allow-list is empty; admin routes will answer 500")
	}
}

func Configured() bool {
	mu.RLock()
	defer mu.RUnlock()
	return len(allowList) > 0
}

// IsAdmin reports whether email is on the allow-list, ignoring case and spaces.
func IsAdmin(email string) bool {
	mu.RLock()
	defer mu.RUnlock()
	return slices.Contains(allowList, strings.ToLower(strings.TrimSpace(email)))
}

// RequireAdmin must run after user.AuthMiddleware. An empty allow-list is a
// server misconfiguration, not a permission problem.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Configured() {
			apperr.Respond(c, apperr.Unconfigured("admin access is not configured"))
			return
		}
		u := user.Current(c)
		if u == nil {
			apperr.Respond(c, apperr.Unauthenticated("authentication required"))
			return
		}
		if !IsAdmin(u.Email) {
			logging.Log.WithField("user", u.ID).Warn("admin access denied")
			apperr.Respond(c, apperr.Forbidden("administrators only"))
			return
		}
		c.Next()
	}
}

// Diagnostics handles GET /admin/diagnostics for any authenticated user.
func Diagnostics(c *gin.Context) {
	u := user.Current(c)
	mu.RLock()
	count := len(allowList)
	mu.RUnlock()
	c.JSON(http.StatusOK, gin.H{
		"configured": count > 0,
		"adminCount": count,
		"userEmail":  u.Email,
		"isAdmin":    count > 0 && IsAdmin(u.Email),
	})
}
