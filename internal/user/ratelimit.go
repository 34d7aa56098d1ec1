package user

import (
	"time"

	"github.com/go2motion/contest-backend/internal/platform/ratelimit"
)

// loginLimiter counts login attempts per client IP.
var loginLimiter = ratelimit.Window{Prefix: "login_attempts:", Limit: 10, Span: 15 * time.Minute}
