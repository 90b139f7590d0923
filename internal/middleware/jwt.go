package middleware

import (
	"moneybase/internal/utils" // Token parsing
	"net/http"                 // HTTP status codes
	"strings"                  // Header parsing

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// Context keys shared with the handlers
const (
	UserIDKey = "userID" // uint, set by JWTAuthMiddleware
	UserKey   = "user"   // domain.User, set by CurrentUserMiddleware
)

// bearerToken extracts the credentials of an "Authorization: Bearer" header.
// The scheme name is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// unauthorized ends the request with the challenge clients expect
func unauthorized(c *gin.Context, reason string) {
	logrus.WithFields(logrus.Fields{
		"path":   c.Request.URL.Path, // Request path
		"reason": reason,             // Why the token was refused
	}).Debug("Rejected access token")
	c.Header("WWW-Authenticate", `Bearer realm="moneybase"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Unauthorized"})
}

// JWTAuthMiddleware accepts requests carrying a valid access token and
// records its user id under UserIDKey
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c, "missing bearer token")
			return
		}
		claims, err := utils.ParseJWT(token, secret)
		if err != nil {
			unauthorized(c, err.Error())
			return
		}
		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}
