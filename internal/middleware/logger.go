package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// quietPaths are infrastructure surfaces probed constantly (liveness
// checks, swagger assets); they are not worth a log line per hit.
var quietPaths = []string{"/health", "/swagger"}

// ZapLogger returns a middleware that logs HTTP requests using zap.
// Board API paths (/api/*) log at info level, other paths at debug.
func ZapLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		for _, p := range quietPaths {
			if strings.HasPrefix(path, p) {
				return
			}
		}

		fields := []interface{}{
			"method", c.Request.Method,
			"route", c.FullPath(),
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"clientIP", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		if strings.HasPrefix(path, "/api/") {
			log.Sugar().Infow("HTTP", fields...)
		} else {
			log.Sugar().Debugw("HTTP", fields...)
		}
	}
}
