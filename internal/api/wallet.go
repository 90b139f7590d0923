package api

import (
	"context"                   // Loader context
	"moneybase/internal/cache"  // Query cache
	"moneybase/internal/ledger" // Ledger service
	"net/http"                  // HTTP status codes
	"time"                      // Time durations

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // For precise monetary calculations
	"github.com/sirupsen/logrus"    // Logging library
)

// Noun names a wallet router variant. The legacy /account routes share the
// wallet handlers and differ only in parameter name and status wording.
type Noun struct {
	Name string // wallet or account
}

var (
	WalletNoun  = Noun{Name: "wallet"}
	AccountNoun = Noun{Name: "account"}
)

func (n Noun) idParam() string       { return n.Name + "_id" }
func (n Noun) notYours() string      { return "not your " + n.Name }
func (n Noun) notYoursH() gin.H      { return gin.H{"status": n.notYours()} }
func (n Noun) event(e string) string { return e + "_" + n.Name }

// WalletRequest represents a create or change request
type WalletRequest struct {
	Name   string           `json:"name" binding:"required,max=64"` // Wallet name
	Budget *decimal.Decimal `json:"budget" binding:"required"`      // Signed balance
}

func (r WalletRequest) input() ledger.WalletInput {
	return ledger.WalletInput{Name: r.Name, Budget: *r.Budget}
}

// CreateWalletHandler creates a wallet owned by the caller
func CreateWalletHandler(svc *ledger.Service, qc cache.Store, n Noun) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req WalletRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		wallet, err := svc.CreateWallet(c.Request.Context(), userID(c), req.input())
		countMutation(n.event("create"), err)
		if err != nil {
			logFailure(c, "Failed to create "+n.Name, err)
			c.JSON(statusFor(err), gin.H{"status": "fall", "detail": detailFor(err)})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":   userID(c),                       // User ID
			"wallet_id": wallet.ID,                       // Wallet ID
			"budget":    wallet.Budget.String(),          // Initial budget
			"type":      n.event("create"),               // Event type
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Wallet created")
		invalidate(c, qc)
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	}
}

// GetWalletsHandler lists the caller's wallets with their latest operations
func GetWalletsHandler(svc *ledger.Service, qc cache.Store, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		serveCached(c, qc, ttl, func(ctx context.Context) (any, error) {
			return svc.ListWallets(ctx, userID(c))
		})
	}
}

// ChangeWalletHandler overwrites name and budget of a wallet the caller owns
func ChangeWalletHandler(svc *ledger.Service, qc cache.Store, n Noun) gin.HandlerFunc {
	return func(c *gin.Context) {
		walletID, ok := queryID(c, n.idParam())
		if !ok {
			return
		}
		var req WalletRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		_, err := svc.ChangeWallet(c.Request.Context(), userID(c), walletID, req.input())
		countMutation(n.event("change"), err)
		if err != nil {
			logFailure(c, "Failed to change "+n.Name, err)
			if status := statusFor(err); status == http.StatusForbidden || status == http.StatusNotFound {
				c.JSON(status, n.notYoursH())
				return
			}
			c.JSON(statusFor(err), gin.H{"status": "fall", "detail": detailFor(err)})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":   userID(c),                       // User ID
			"wallet_id": walletID,                        // Wallet ID
			"budget":    req.Budget.String(),             // New budget
			"type":      n.event("change"),               // Event type
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Wallet changed")
		invalidate(c, qc)
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	}
}

// DeleteWalletHandler deletes a wallet and its operations
func DeleteWalletHandler(svc *ledger.Service, qc cache.Store, n Noun) gin.HandlerFunc {
	return func(c *gin.Context) {
		walletID, ok := queryID(c, n.idParam())
		if !ok {
			return
		}
		err := svc.DeleteWallet(c.Request.Context(), userID(c), walletID)
		countMutation(n.event("delete"), err)
		if err != nil {
			logFailure(c, "Failed to delete "+n.Name, err)
			if status := statusFor(err); status == http.StatusForbidden || status == http.StatusNotFound {
				c.JSON(status, n.notYoursH())
				return
			}
			c.JSON(statusFor(err), gin.H{"status": "fall", "detail": detailFor(err)})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":   userID(c),                       // User ID
			"wallet_id": walletID,                        // Wallet ID
			"type":      n.event("delete"),               // Event type
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Wallet deleted")
		invalidate(c, qc)
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	}
}
