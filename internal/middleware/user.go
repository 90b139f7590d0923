package middleware

import (
	"errors"                    // errors.Is on gorm.ErrRecordNotFound
	"moneybase/internal/domain" // Importing domain models
	"net/http"                  // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// CurrentUserMiddleware loads the token's user on each request and rejects
// unknown or inactive accounts
func CurrentUserMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint(UserIDKey) // Set by JWTAuthMiddleware
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Unauthorized"})
			return
		}
		var user domain.User
		err := db.WithContext(c.Request.Context()).First(&user, userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !user.IsActive) {
			// Deleted or deactivated since the token was issued
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Unauthorized"})
			return
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"error":   err.Error(), // Error message
			}).Error("Failed to load current user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
			return
		}
		c.Set(UserKey, user)
		c.Next()
	}
}

// SuperuserOnlyMiddleware must run after CurrentUserMiddleware
func SuperuserOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := c.MustGet(UserKey).(domain.User)
		if !ok || !user.IsSuperuser {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Superuser access required"})
			return
		}
		c.Next()
	}
}
