package ledger

import (
	"moneybase/internal/domain" // Importing domain models

	"github.com/shopspring/decimal" // For precise monetary calculations
	"gorm.io/gorm"                  // GORM ORM library
)

// ApplyOperation adds the signed effect of a new operation to its wallet.
// tx must be the transaction that inserts the operation row.
func ApplyOperation(tx *gorm.DB, walletID uint, typ domain.OperationType, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := checkDelta(typ, amount); err != nil {
		return decimal.Zero, err
	}
	return shiftBudget(tx, walletID, typ.Delta(amount))
}

// ReverseOperation removes the effect of a deleted operation from its wallet.
// tx must be the transaction that deletes the operation row.
func ReverseOperation(tx *gorm.DB, walletID uint, typ domain.OperationType, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := checkDelta(typ, amount); err != nil {
		return decimal.Zero, err
	}
	return shiftBudget(tx, walletID, typ.Delta(amount).Neg())
}

func checkDelta(typ domain.OperationType, amount decimal.Decimal) error {
	if !typ.Valid() {
		return invalid("unknown operation type %q", typ)
	}
	if amount.IsNegative() {
		return invalid("amount must be non-negative, got %s", amount)
	}
	return checkCents("amount", amount)
}

// checkCents rejects values finer than the decimal(20,2) columns can hold
func checkCents(field string, d decimal.Decimal) error {
	if !d.Equal(d.Truncate(domain.MoneyPlaces)) {
		return invalid("%s must have at most %d decimal places, got %s", field, domain.MoneyPlaces, d)
	}
	return nil
}

// shiftBudget is a relative update evaluated by the database, never a
// read-modify-write in Go. ROUND keeps the result on the cent grid on
// dialects that store decimal columns as floating point (SQLite).
func shiftBudget(tx *gorm.DB, walletID uint, delta decimal.Decimal) (decimal.Decimal, error) {
	res := tx.Model(&domain.Wallet{}).
		Where("id = ?", walletID).
		Update("budget", gorm.Expr("ROUND(budget + ?, 2)", delta))
	if res.Error != nil {
		return decimal.Zero, storage("update budget", res.Error)
	}
	if res.RowsAffected != 1 {
		return decimal.Zero, ErrNotFound // Wallet vanished, caller rolls back
	}
	var wallet domain.Wallet // Read back the committed-to-be balance
	if err := tx.Select("id", "budget").First(&wallet, walletID).Error; err != nil {
		return decimal.Zero, storage("read budget", err)
	}
	return wallet.Budget.Round(domain.MoneyPlaces), nil
}
