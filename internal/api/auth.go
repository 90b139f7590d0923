package api

import (
	"errors"                    // errors.Is on gorm.ErrRecordNotFound
	"moneybase/internal/cache"  // Query cache
	"moneybase/internal/domain" // Importing domain models
	"moneybase/internal/utils"  // Utility functions
	"net/http"                  // HTTP status codes
	"strings"                   // String manipulation
	"time"                      // Token lifetime

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=320"`   // Login email
	Username string `json:"username" binding:"required,max=30"`       // Display name
	Password string `json:"password" binding:"required,min=8,max=72"` // bcrypt reads at most 72 bytes
}

// LoginRequest is the body of POST /auth/jwt/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Login email
	Password string `json:"password" binding:"required"` // Plain password
}

// AuthResponse carries the bearer token
type AuthResponse struct {
	AccessToken string `json:"access_token"` // JWT token
	TokenType   string `json:"token_type"`   // Always "bearer"
}

// RegisterHandler creates an active, unverified, non-superuser account
func RegisterHandler(db *gorm.DB, qc cache.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email)) // Emails are unique case-insensitively
		ctx := c.Request.Context()
		var existing int64
		if err := db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
			return
		}
		if existing > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "REGISTER_USER_ALREADY_EXISTS"})
			return
		}
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to hash password"})
			return
		}
		user := domain.User{Email: email, Username: req.Username, PasswordHash: hash, IsActive: true}
		if err := db.WithContext(ctx).Create(&user).Error; err != nil {
			// Lost a race on the unique email index
			c.JSON(http.StatusBadRequest, gin.H{"detail": "REGISTER_USER_ALREADY_EXISTS"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":   user.ID,                         // User ID
			"type":      "register",                      // Event type
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("User registered")
		invalidate(c, qc) // Admin listings include users
		c.JSON(http.StatusCreated, gin.H{"status": "success", "user": user})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		var user domain.User // Fetch user from database
		err := db.WithContext(c.Request.Context()).Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
			return
		}
		// Unknown email, wrong password and inactive account look the same
		if err != nil || !utils.CheckPassword(user.PasswordHash, req.Password) || !user.IsActive {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "LOGIN_BAD_CREDENTIALS"})
			return
		}
		token, err := utils.GenerateJWT(user.ID, jwtSecret, ttl)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to generate token"})
			return
		}
		c.JSON(http.StatusOK, AuthResponse{AccessToken: token, TokenType: "bearer"})
	}
}
