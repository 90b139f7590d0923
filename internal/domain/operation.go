package domain

import (
	"time" // Timestamps

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// OperationType says which direction an operation moves a wallet budget
type OperationType string

const (
	Profit OperationType = "profit" // Adds to the budget
	Loss   OperationType = "loss"   // Subtracts from the budget
)

// Valid reports whether t is one of the known operation types
func (t OperationType) Valid() bool {
	return t == Profit || t == Loss
}

// Sign returns +1 for profit and -1 for loss
func (t OperationType) Sign() int64 {
	if t == Loss {
		return -1
	}
	return 1
}

// Delta is the signed effect of amount on a wallet budget
func (t OperationType) Delta(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(t.Sign()))
}

// Operation Model
type Operation struct {
	ID            uint            `gorm:"primaryKey" json:"id"`                                         // Primary key
	UserID        uint            `gorm:"index;not null" json:"user_id"`                                // Foreign key to User
	WalletID      uint            `gorm:"index;not null" json:"wallet_id"`                              // Foreign key to Wallet
	Category      Category        `gorm:"size:32;not null" json:"category"`                             // Informational tag
	TypeOperation OperationType   `gorm:"column:type_operation;size:16;not null" json:"type_operation"` // profit or loss
	Amount        decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`                    // Non-negative amount
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`                                      // Set by GORM on create
	UpdatedAt     time.Time       `json:"updated_at"`                                                   // Set by GORM on update
}
