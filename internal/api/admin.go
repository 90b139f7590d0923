package api

import (
	"context"                   // Loader context
	"moneybase/internal/cache"  // Query cache
	"moneybase/internal/domain" // Importing domain models
	"moneybase/internal/ledger" // Ledger service
	"net/http"                  // HTTP status codes
	"time"                      // Time durations

	"github.com/gin-gonic/gin" // Gin web framework
)

// Pagination reads page and page_size, defaulting to 1 and 20
type Pagination struct {
	Page     int `form:"page" binding:"omitempty,min=1"`              // 1-based page
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"` // Rows per page
}

func (p Pagination) normalize() Pagination {
	if p.Page == 0 {
		p.Page = 1 // Default page number
	}
	if p.PageSize == 0 {
		p.PageSize = 20 // Default page size
	}
	return p
}

func (p Pagination) offset() int { return (p.Page - 1) * p.PageSize }

// totalPages rounds up
func (p Pagination) totalPages(total int64) int {
	return (int(total) + p.PageSize - 1) / p.PageSize
}

// UserAdminResponse represents the user data returned to superusers
type UserAdminResponse struct {
	ID          uint   `json:"id"`           // User ID
	Email       string `json:"email"`        // Email
	Username    string `json:"username"`     // Username
	IsActive    bool   `json:"is_active"`    // Active flag
	IsSuperuser bool   `json:"is_superuser"` // Superuser flag
	IsVerified  bool   `json:"is_verified"`  // Verified flag
}

// ListUsersHandler returns every user, paginated
func ListUsersHandler(svc *ledger.Service, qc cache.Store, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p Pagination
		if err := c.ShouldBindQuery(&p); err != nil {
			bindError(c, err)
			return
		}
		p = p.normalize()
		serveCached(c, qc, ttl, func(ctx context.Context) (any, error) {
			users, total, err := svc.ListUsers(ctx, p.offset(), p.PageSize)
			if err != nil {
				return nil, err
			}
			resp := make([]UserAdminResponse, len(users)) // Map users to response format
			for i, u := range users {
				resp[i] = UserAdminResponse{
					ID: u.ID, Email: u.Email, Username: u.Username,
					IsActive: u.IsActive, IsSuperuser: u.IsSuperuser, IsVerified: u.IsVerified,
				}
			}
			return gin.H{
				"users":       resp,                // List of users
				"page":        p.Page,              // Current page
				"page_size":   p.PageSize,          // Page size
				"total":       total,               // Total number of users
				"total_pages": p.totalPages(total), // Total pages
			}, nil
		})
	}
}

// adminOperationQuery filters the superuser operation listing
type adminOperationQuery struct {
	Pagination
	UserID   uint                 `form:"user_id"`                                 // Owner filter
	WalletID uint                 `form:"wallet_id"`                               // Wallet filter
	Type     domain.OperationType `form:"type" binding:"omitempty,operation_type"` // profit or loss
	Category domain.Category      `form:"category" binding:"omitempty,category"`   // Category filter
}

// ListAllOperationsHandler returns operations across users, with optional filtering
func ListAllOperationsHandler(svc *ledger.Service, qc cache.Store, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q adminOperationQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			bindError(c, err)
			return
		}
		q.Pagination = q.Pagination.normalize()
		f := ledger.OperationFilter{
			UserID: q.UserID, WalletID: q.WalletID, Type: q.Type, Category: q.Category,
			Limit: q.PageSize, Offset: q.offset(),
		}
		serveCached(c, qc, ttl, func(ctx context.Context) (any, error) {
			total, err := svc.CountOperations(ctx, f)
			if err != nil {
				return nil, err
			}
			ops, err := svc.ListOperations(ctx, f)
			if err != nil {
				return nil, err
			}
			return gin.H{
				"operations":  ops,                 // List of operations
				"page":        q.Page,              // Current page
				"page_size":   q.PageSize,          // Page size
				"total":       total,               // Total matching operations
				"total_pages": q.totalPages(total), // Total pages
			}, nil
		})
	}
}

// pinger is satisfied by *cache.Redis
type pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports whether the store and the cache answer
func HealthHandler(svc *ledger.Service, cachePing pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		status := gin.H{"db": "ok", "cache": "ok"}
		code := http.StatusOK
		if err := svc.Ping(ctx); err != nil {
			status["db"], code = err.Error(), http.StatusServiceUnavailable
		}
		if cachePing != nil {
			if err := cachePing.Ping(ctx); err != nil {
				status["cache"], code = err.Error(), http.StatusServiceUnavailable
			}
		}
		c.JSON(code, status)
	}
}
