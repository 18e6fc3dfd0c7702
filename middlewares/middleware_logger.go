package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/restaurant-orders/utils"
)

// LoggerMiddleware logs one structured line per request and tags the request
// with an X-Request-Id, reusing the caller's when present.
func LoggerMiddleware(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(utils.RequestIDKey, reqID)
		c.Header("X-Request-Id", reqID)

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := c.Writer.Status()

		entry := log.WithFields(logrus.Fields{
			"req_id":  reqID,
			"method":  c.Request.Method,
			"path":    path,
			"status":  status,
			"dur_ms":  time.Since(start).Milliseconds(),
			"remote":  c.ClientIP(),
			"resp_sz": c.Writer.Size(),
		})
		if len(c.Errors) > 0 {
			entry = entry.WithField("error", c.Errors.String())
		}

		switch {
		case status >= 500:
			entry.Error("http_request")
		case status >= 400:
			entry.Warn("http_request")
		default:
			entry.Info("http_request")
		}
	}
}
