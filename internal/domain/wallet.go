package domain

import (
	"time" // Timestamps

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// DefaultWalletName is used when a wallet is created without a name
const DefaultWalletName = "MyWallet"

// MoneyPlaces is the scale of every budget and amount column
const MoneyPlaces = 2

// Wallet Model
type Wallet struct {
	ID         uint            `gorm:"primaryKey" json:"id"`                           // Primary key
	UserID     uint            `gorm:"index;not null" json:"user_id"`                  // Foreign key to User
	Name       string          `gorm:"size:64;not null" json:"name"`                   // Wallet name
	Budget     decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"budget"`      // Current signed balance
	CreatedAt  time.Time       `json:"created_at"`                                     // Set by GORM on create
	UpdatedAt  time.Time       `json:"updated_at"`                                     // Set by GORM on update
	Operations []Operation     `gorm:"constraint:OnDelete:CASCADE;" json:"operations"` // Child operations, cascade on delete
}
