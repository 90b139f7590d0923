package ledger

import (
	"context"                   // Request scoped cancellation
	"errors"                    // errors.Is on gorm.ErrRecordNotFound
	"moneybase/internal/domain" // Importing domain models

	"github.com/shopspring/decimal" // For precise monetary calculations
	"gorm.io/gorm"                  // GORM ORM library
)

const (
	RecentPerWallet = 4   // Operations embedded in each wallet listing
	DefaultLimit    = 5   // Default page of operations
	MaxLimit        = 100 // Upper bound on any listing
)

// OperationFilter narrows an operation listing. Zero values mean "any".
type OperationFilter struct {
	UserID   uint                 // Owner, 0 for every user (admin only)
	WalletID uint                 // Single wallet
	Category domain.Category      // Single category
	Type     domain.OperationType // profit or loss
	Limit    int                  // Page size, clamped to MaxLimit
	Offset   int                  // Rows to skip
}

// ClampLimit applies the default and the upper bound to a requested limit
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func (f OperationFilter) apply(q *gorm.DB) *gorm.DB {
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.WalletID != 0 {
		q = q.Where("wallet_id = ?", f.WalletID)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Type != "" {
		q = q.Where("type_operation = ?", f.Type)
	}
	return q
}

// recency orders newest first, id breaks ties between equal timestamps
const recency = "created_at desc, id desc"

// ListWallets returns the caller's wallets with their most recent operations
func (s *Service) ListWallets(ctx context.Context, userID uint) ([]domain.Wallet, error) {
	db := s.db.WithContext(ctx)
	var wallets []domain.Wallet
	if err := db.Where("user_id = ?", userID).Order("id").Find(&wallets).Error; err != nil {
		return nil, storage("list wallets", err)
	}
	for i := range wallets {
		ops := []domain.Operation{} // Empty list rather than null in JSON
		if err := db.Where("wallet_id = ?", wallets[i].ID).Order(recency).Limit(RecentPerWallet).Find(&ops).Error; err != nil {
			return nil, storage("list wallet operations", err)
		}
		wallets[i].Operations = ops
	}
	return wallets, nil
}

// GetWallet returns one wallet the caller owns
func (s *Service) GetWallet(ctx context.Context, userID, walletID uint) (domain.Wallet, error) {
	var wallet domain.Wallet
	err := s.db.WithContext(ctx).First(&wallet, walletID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Wallet{}, ErrNotFound
	}
	if err != nil {
		return domain.Wallet{}, storage("get wallet", err)
	}
	if err := judge(true, wallet.UserID, userID).Err(); err != nil {
		return domain.Wallet{}, err
	}
	return wallet, nil
}

// GetOperation returns one operation the caller owns
func (s *Service) GetOperation(ctx context.Context, userID, operationID uint) (domain.Operation, error) {
	var op domain.Operation
	err := s.db.WithContext(ctx).First(&op, operationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Operation{}, ErrNotFound
	}
	if err != nil {
		return domain.Operation{}, storage("get operation", err)
	}
	if err := judge(true, op.UserID, userID).Err(); err != nil {
		return domain.Operation{}, err
	}
	return op, nil
}

// ListOperations returns operations matching f, newest first
func (s *Service) ListOperations(ctx context.Context, f OperationFilter) ([]domain.Operation, error) {
	ops := []domain.Operation{}
	q := f.apply(s.db.WithContext(ctx).Model(&domain.Operation{}))
	if err := q.Order(recency).Offset(f.Offset).Limit(ClampLimit(f.Limit)).Find(&ops).Error; err != nil {
		return nil, storage("list operations", err)
	}
	return ops, nil
}

// CountOperations counts operations matching f, ignoring paging
func (s *Service) CountOperations(ctx context.Context, f OperationFilter) (int64, error) {
	var total int64
	if err := f.apply(s.db.WithContext(ctx).Model(&domain.Operation{})).Count(&total).Error; err != nil {
		return 0, storage("count operations", err)
	}
	return total, nil
}

// ProfitAndLoss holds the per-type sums of a wallet's operations
type ProfitAndLoss struct {
	Profit decimal.Decimal `json:"profit"` // Sum of profit amounts
	Loss   decimal.Decimal `json:"loss"`   // Sum of loss amounts
}

// ProfitAndLoss sums the caller's operations on one wallet by type
func (s *Service) ProfitAndLoss(ctx context.Context, userID, walletID uint) (ProfitAndLoss, error) {
	if _, err := s.GetWallet(ctx, userID, walletID); err != nil {
		return ProfitAndLoss{}, err
	}
	var rows []struct {
		TypeOperation domain.OperationType
		Total         decimal.Decimal
	}
	err := s.db.WithContext(ctx).Model(&domain.Operation{}).
		Select("type_operation, ROUND(COALESCE(SUM(amount), 0), 2) AS total").
		Where("user_id = ? AND wallet_id = ?", userID, walletID).
		Group("type_operation").
		Scan(&rows).Error
	if err != nil {
		return ProfitAndLoss{}, storage("sum operations", err)
	}
	out := ProfitAndLoss{Profit: decimal.Zero, Loss: decimal.Zero}
	for _, r := range rows {
		switch r.TypeOperation {
		case domain.Profit:
			out.Profit = r.Total.Round(domain.MoneyPlaces)
		case domain.Loss:
			out.Loss = r.Total.Round(domain.MoneyPlaces)
		}
	}
	return out, nil
}

// ListUsers pages through every user, for superusers
func (s *Service) ListUsers(ctx context.Context, offset, limit int) ([]domain.User, int64, error) {
	db := s.db.WithContext(ctx)
	var total int64
	if err := db.Model(&domain.User{}).Count(&total).Error; err != nil {
		return nil, 0, storage("count users", err)
	}
	users := []domain.User{}
	if err := db.Order("id").Offset(offset).Limit(ClampLimit(limit)).Find(&users).Error; err != nil {
		return nil, 0, storage("list users", err)
	}
	return users, total, nil
}

// Ping checks the store connection
func (s *Service) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
