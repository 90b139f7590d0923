package middleware

import (
	"time" // Latency

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/google/uuid"     // Request ids
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// RequestIDHeader is echoed back on every response
const RequestIDHeader = "X-Request-ID"

// RequestLogger tags each request with an id and logs one line when it completes
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set("requestID", reqID)
		c.Header(RequestIDHeader, reqID)
		start := time.Now()

		c.Next()

		entry := logrus.WithFields(logrus.Fields{
			"req_id":   reqID,                      // Request id
			"method":   c.Request.Method,           // HTTP method
			"path":     c.Request.URL.Path,         // Request path
			"status":   c.Writer.Status(),          // Response status
			"bytes":    c.Writer.Size(),            // Response size
			"duration": time.Since(start).String(), // Latency
			"user_id":  c.GetUint(UserIDKey),       // 0 when anonymous
		})
		switch {
		case c.Writer.Status() >= 500:
			entry.Error("request complete")
		case c.Writer.Status() >= 400:
			entry.Warn("request complete")
		default:
			entry.Info("request complete")
		}
	}
}
