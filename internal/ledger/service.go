package ledger

import (
	"context"                   // Request scoped cancellation
	"moneybase/internal/domain" // Importing domain models
	"strings"                   // Name trimming

	"github.com/shopspring/decimal" // For precise monetary calculations
	"gorm.io/gorm"                  // GORM ORM library
)

// Service owns every mutation of wallets and operations. Each mutation runs
// in one db.Transaction, so it either commits whole or rolls back whole.
type Service struct {
	db *gorm.DB
}

// NewService wraps an opened GORM handle
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// WalletInput carries the editable wallet fields
type WalletInput struct {
	Name   string
	Budget decimal.Decimal
}

// OperationInput describes an operation to record
type OperationInput struct {
	WalletID uint
	Category domain.Category
	Type     domain.OperationType
	Amount   decimal.Decimal
}

// Validate rejects malformed operations before they reach the store
func (in OperationInput) Validate() error {
	if in.WalletID == 0 {
		return invalid("wallet_id is required")
	}
	if !in.Category.Valid() {
		return invalid("unknown category %q", in.Category)
	}
	if !in.Type.Valid() {
		return invalid("unknown operation type %q", in.Type)
	}
	if in.Amount.IsNegative() {
		return invalid("amount must be non-negative, got %s", in.Amount)
	}
	return checkCents("amount", in.Amount)
}

// Validate rejects wallet edits the store cannot represent
func (in WalletInput) Validate() error {
	if len(in.Name) > 64 {
		return invalid("name longer than 64 characters")
	}
	return checkCents("budget", in.Budget)
}

func (in WalletInput) name() string {
	if n := strings.TrimSpace(in.Name); n != "" {
		return n
	}
	return domain.DefaultWalletName
}

// CreateWallet stores a new wallet owned by userID
func (s *Service) CreateWallet(ctx context.Context, userID uint, in WalletInput) (domain.Wallet, error) {
	if err := in.Validate(); err != nil {
		return domain.Wallet{}, err
	}
	wallet := domain.Wallet{UserID: userID, Name: in.name(), Budget: in.Budget}
	if err := s.db.WithContext(ctx).Create(&wallet).Error; err != nil {
		return domain.Wallet{}, storage("create wallet", err)
	}
	return wallet, nil
}

// ChangeWallet overwrites the name and budget of a wallet the caller owns
func (s *Service) ChangeWallet(ctx context.Context, userID, walletID uint, in WalletInput) (domain.Wallet, error) {
	if err := in.Validate(); err != nil {
		return domain.Wallet{}, err
	}
	var out domain.Wallet
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wallet, verdict, err := AssertWalletOwner(tx, userID, walletID)
		if err != nil {
			return storage("lock wallet", err)
		}
		if err := verdict.Err(); err != nil {
			return err
		}
		// Map update so a zero budget is written too
		if err := tx.Model(&wallet).Updates(map[string]any{"name": in.name(), "budget": in.Budget}).Error; err != nil {
			return storage("update wallet", err)
		}
		out = wallet
		out.Name, out.Budget = in.name(), in.Budget
		return nil
	})
	return out, err
}

// DeleteWallet removes a wallet and all of its operations
func (s *Service) DeleteWallet(ctx context.Context, userID, walletID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, verdict, err := AssertWalletOwner(tx, userID, walletID)
		if err != nil {
			return storage("lock wallet", err)
		}
		if err := verdict.Err(); err != nil {
			return err
		}
		// Explicit child delete keeps dialects without FK enforcement consistent
		if err := tx.Where("wallet_id = ?", walletID).Delete(&domain.Operation{}).Error; err != nil {
			return storage("delete wallet operations", err)
		}
		if err := tx.Delete(&domain.Wallet{}, walletID).Error; err != nil {
			return storage("delete wallet", err)
		}
		return nil
	})
}

// AddOperation records an operation and applies it to the wallet budget
func (s *Service) AddOperation(ctx context.Context, userID uint, in OperationInput) (domain.Operation, decimal.Decimal, error) {
	if err := in.Validate(); err != nil {
		return domain.Operation{}, decimal.Zero, err
	}
	var (
		op      domain.Operation
		balance decimal.Decimal
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, verdict, err := AssertWalletOwner(tx, userID, in.WalletID)
		if err != nil {
			return storage("lock wallet", err)
		}
		if err := verdict.Err(); err != nil {
			return err
		}
		op = domain.Operation{
			UserID:        userID,      // Owner matches the wallet owner
			WalletID:      in.WalletID, // Target wallet
			Category:      in.Category, // Informational tag
			TypeOperation: in.Type,     // profit or loss
			Amount:        in.Amount,   // Non-negative amount
		}
		if err := tx.Create(&op).Error; err != nil {
			return storage("insert operation", err)
		}
		balance, err = ApplyOperation(tx, in.WalletID, in.Type, in.Amount)
		return err
	})
	if err != nil {
		return domain.Operation{}, decimal.Zero, err
	}
	return op, balance, nil
}

// DeleteOperation removes an operation and reverses its budget effect
func (s *Service) DeleteOperation(ctx context.Context, userID, operationID uint) (domain.Operation, decimal.Decimal, error) {
	var (
		op      domain.Operation
		balance decimal.Decimal
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, verdict, err := AssertOperationOwner(tx, userID, operationID)
		if err != nil {
			return storage("load operation", err)
		}
		if err := verdict.Err(); err != nil {
			return err
		}
		res := tx.Delete(&domain.Operation{}, operationID)
		if res.Error != nil {
			return storage("delete operation", res.Error)
		}
		if res.RowsAffected != 1 {
			return ErrNotFound // Lost a race with another delete of the same row
		}
		op = found
		balance, err = ReverseOperation(tx, found.WalletID, found.TypeOperation, found.Amount)
		return err
	})
	if err != nil {
		return domain.Operation{}, decimal.Zero, err
	}
	return op, balance, nil
}
