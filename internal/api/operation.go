package api

import (
	"context"                   // Loader context
	"errors"                    // Error classification
	"moneybase/internal/cache"  // Query cache
	"moneybase/internal/domain" // Importing domain models
	"moneybase/internal/ledger" // Ledger service
	"net/http"                  // HTTP status codes
	"time"                      // Time durations

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // For precise monetary calculations
	"github.com/sirupsen/logrus"    // Logging library
)

// OperationRequest represents an add_operation request
type OperationRequest struct {
	WalletID      uint                 `json:"wallet_id" binding:"required,gt=0"`                // Target wallet
	Category      domain.Category      `json:"category" binding:"required,category"`             // Closed category set
	TypeOperation domain.OperationType `json:"type_operation" binding:"required,operation_type"` // profit or loss
	Amount        *decimal.Decimal     `json:"amount" binding:"required"`                        // Non-negative, checked by the ledger
}

// AddOperationHandler records an operation and moves the wallet budget
func AddOperationHandler(svc *ledger.Service, qc cache.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req OperationRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		op, balance, err := svc.AddOperation(c.Request.Context(), userID(c), ledger.OperationInput{
			WalletID: req.WalletID,      // Target wallet
			Category: req.Category,      // Category tag
			Type:     req.TypeOperation, // profit or loss
			Amount:   *req.Amount,       // Amount
		})
		countMutation("add_operation", err)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id":   userID(c),           // User ID
				"wallet_id": req.WalletID,        // Wallet ID
				"amount":    req.Amount.String(), // Amount
				"type":      req.TypeOperation,   // Operation type
				"error":     err.Error(),         // Error message
			}).Warn("Add operation failed")
			switch {
			case errors.Is(err, ledger.ErrForbidden), errors.Is(err, ledger.ErrNotFound):
				c.JSON(statusFor(err), gin.H{"status": "fall", "detail": "Not your wallet."})
			default:
				c.JSON(statusFor(err), gin.H{"status": "fall", "detail": detailFor(err)})
			}
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":      userID(c),                       // User ID
			"wallet_id":    op.WalletID,                     // Wallet ID
			"operation_id": op.ID,                           // Operation ID
			"amount":       op.Amount.String(),              // Amount
			"type":         op.TypeOperation,                // Operation type
			"budget":       balance.String(),                // Budget after apply
			"timestamp":    time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Operation added")
		invalidate(c, qc)
		c.JSON(http.StatusOK, gin.H{"status": "success", "detail": op, "budget": balance})
	}
}

// DeleteOperationHandler deletes an operation and reverses its budget effect.
// The response lists the caller's remaining operations.
func DeleteOperationHandler(svc *ledger.Service, qc cache.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		operationID, ok := queryID(c, "operation_id")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		op, balance, err := svc.DeleteOperation(ctx, userID(c), operationID)
		countMutation("delete_operation", err)
		if err != nil {
			logFailure(c, "Delete operation failed", err)
			switch {
			case errors.Is(err, ledger.ErrForbidden):
				c.JSON(http.StatusForbidden, gin.H{"status": "fall", "detail": "Not your wallet."})
			case errors.Is(err, ledger.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"status": "fall", "detail": "Operation not found."})
			default:
				c.JSON(statusFor(err), gin.H{"status": "fall", "detail": detailFor(err)})
			}
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":      userID(c),                       // User ID
			"wallet_id":    op.WalletID,                     // Wallet ID
			"operation_id": op.ID,                           // Operation ID
			"amount":       op.Amount.String(),              // Amount
			"type":         op.TypeOperation,                // Operation type
			"budget":       balance.String(),                // Budget after reverse
			"timestamp":    time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Operation deleted")
		invalidate(c, qc)
		remaining, err := svc.ListOperations(ctx, ledger.OperationFilter{UserID: userID(c), Limit: ledger.MaxLimit})
		if err != nil {
			// The delete is committed; report it without the listing
			logFailure(c, "List after delete failed", err)
			remaining = []domain.Operation{}
		}
		c.JSON(http.StatusOK, gin.H{"status": "succes", "detail": remaining})
	}
}

// operationQuery is the shared query string of the listing endpoints
type operationQuery struct {
	Limit    int             `form:"limit" binding:"omitempty,min=1,max=100"` // Page size
	Category domain.Category `form:"category" binding:"omitempty,category"`   // Only for get_category_operations
}

// ListOperationsHandler serves the cached operation listings. fixed narrows
// every request, e.g. to profit operations only.
func ListOperationsHandler(svc *ledger.Service, qc cache.Store, ttl time.Duration, fixed ledger.OperationFilter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q operationQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			bindError(c, err)
			return
		}
		f := fixed
		f.UserID = userID(c)
		f.Limit = q.Limit
		if q.Category != "" {
			f.Category = q.Category
		}
		serveCached(c, qc, ttl, func(ctx context.Context) (any, error) {
			return svc.ListOperations(ctx, f)
		})
	}
}

// CategoryOperationsHandler requires the category parameter
func CategoryOperationsHandler(svc *ledger.Service, qc cache.Store, ttl time.Duration) gin.HandlerFunc {
	list := ListOperationsHandler(svc, qc, ttl, ledger.OperationFilter{})
	return func(c *gin.Context) {
		if c.Query("category") == "" {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"status": "fall", "detail": "category is required"})
			return
		}
		list(c)
	}
}

// ProfitAndLossHandler sums a wallet's operations by type
func ProfitAndLossHandler(svc *ledger.Service, qc cache.Store, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		walletID, ok := queryID(c, "wallet_id")
		if !ok {
			return
		}
		serveCached(c, qc, ttl, func(ctx context.Context) (any, error) {
			return svc.ProfitAndLoss(ctx, userID(c), walletID)
		})
	}
}
