package middleware

import (
	"time" // Request timing

	"github.com/gin-contrib/requestid" // Request id middleware
	"github.com/gin-gonic/gin"         // Gin web framework
	"github.com/sirupsen/logrus"       // Logging library
)

// RequestLogger logs one line per request with its request id. It must run
// after requestid.New().
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now() // Start timer
		c.Next()            // Process request
		status := c.Writer.Status()
		entry := logrus.WithFields(logrus.Fields{
			"request_id": requestid.Get(c),                 // Correlates with boundary log lines
			"method":     c.Request.Method,                 // HTTP method
			"path":       c.Request.URL.Path,               // Request path
			"status":     status,                           // Response status
			"latency_ms": time.Since(start).Milliseconds(), // Handling time
			"client_ip":  c.ClientIP(),                     // Caller address
		})
		if id, ok := UserID(c); ok {
			entry = entry.WithField("user_id", id) // Authenticated caller
		}
		switch {
		case status >= 500:
			entry.Error("Request failed")
		case status >= 400:
			entry.Warn("Request rejected")
		default:
			entry.Info("Request handled")
		}
	}
}
