package api

import (
	"context"                       // Context for Redis operations
	"encoding/json"                 // Cached bodies are stored as raw JSON
	"errors"                        // Error classification
	"moneybase/internal/cache"      // Query cache
	"moneybase/internal/ledger"     // Ledger error kinds
	"moneybase/internal/middleware" // Context keys
	"net/http"                      // HTTP status codes
	"strconv"                       // Query parameter parsing
	"time"                          // Time durations

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// statusFor maps ledger error kinds onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// detailFor is the client facing message; storage details stay in the logs
func detailFor(err error) string {
	if statusFor(err) >= http.StatusInternalServerError {
		return "Internal error"
	}
	return err.Error()
}

// userID returns the authenticated caller set by the JWT middleware
func userID(c *gin.Context) uint {
	return c.GetUint(middleware.UserIDKey)
}

// queryID parses a required positive integer query parameter
func queryID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Query(name), 10, 64)
	if err != nil || v == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": "fall", "detail": name + " must be a positive integer"})
		return 0, false
	}
	return uint(v), true
}

// bindError answers a request whose body or query failed validation
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"status": "fall", "detail": err.Error()})
}

// serveCached answers a read endpoint from the query cache, loading and
// storing it on a miss. Cache failures fall through to the store.
func serveCached(c *gin.Context, qc cache.Store, ttl time.Duration, load func(ctx context.Context) (any, error)) {
	ctx := c.Request.Context()
	logical := cache.LogicalKey(c.FullPath(), userID(c), c.Request.URL.Query())
	key, err := qc.Resolve(ctx, logical)
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": logical, "error": err.Error()}).Warn("Cache unavailable")
	} else if raw, hit, err := qc.Get(ctx, key); err == nil && hit {
		c.Header("X-Cache", "HIT")
		c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
		return
	}
	data, err := load(ctx)
	if err != nil {
		logFailure(c, "Read failed", err)
		c.JSON(statusFor(err), gin.H{"status": "fall", "detail": detailFor(err)})
		return
	}
	raw, err := json.Marshal(data)
	if err != nil {
		logFailure(c, "Encode failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "fall", "detail": "Internal error"})
		return
	}
	if key != "" {
		// Last writer wins between concurrent misses
		if err := qc.Put(ctx, key, raw, ttl); err != nil {
			logrus.WithFields(logrus.Fields{"key": logical, "error": err.Error()}).Warn("Cache write failed")
		}
	}
	c.Header("X-Cache", "MISS")
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// invalidate drops the whole query cache after a committed mutation. It must
// not be skipped when the client has already gone away.
func invalidate(c *gin.Context, qc cache.Store) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), 5*time.Second)
	defer cancel()
	if err := qc.InvalidateAll(ctx); err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": userID(c),    // User ID
			"path":    c.FullPath(), // Route
			"error":   err.Error(),  // Error message
		}).Error("Cache invalidation failed")
	}
}

// logFailure logs a failed request at a level matching its status
func logFailure(c *gin.Context, msg string, err error) {
	entry := logrus.WithFields(logrus.Fields{
		"user_id": userID(c),    // User ID
		"path":    c.FullPath(), // Route
		"error":   err.Error(),  // Error message
	})
	if statusFor(err) >= http.StatusInternalServerError {
		entry.Error(msg)
		return
	}
	entry.Warn(msg)
}
