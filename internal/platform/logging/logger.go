package logging

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. It is usable before Bootstrap runs so that tests
// and early startup code never hit a nil logger.
var Log = logrus.New()

// Bootstrap configures Log from the level and format names found in the config.
func Bootstrap(level, format string) {
	Log = logrus.New()
	Log.Out = os.Stdout

	switch format {
	case "json":
		Log.Formatter = &logrus.JSONFormatter{TimestampFormat: time.RFC3339}
	default:
		Log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		Log.Warnf("unknown log level %q, falling back to info", level)
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)
}

// RequestLogger replaces gin's default logger with a structured one.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		entry := Log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"ip":      c.ClientIP(),
		})
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Debug("request served")
		}
	}
}
