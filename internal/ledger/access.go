package ledger

import (
	"errors"                    // errors.Is on gorm.ErrRecordNotFound
	"moneybase/internal/domain" // Importing domain models

	"gorm.io/gorm"        // GORM ORM library
	"gorm.io/gorm/clause" // Row locking
)

// Verdict is the outcome of an ownership check
type Verdict int

const (
	Allowed   Verdict = iota // Caller owns the resource
	Forbidden                // Resource exists but belongs to someone else
	NotFound                 // Resource does not exist
)

func (v Verdict) String() string {
	switch v {
	case Allowed:
		return "allowed"
	case Forbidden:
		return "forbidden"
	default:
		return "not_found"
	}
}

// Err maps a verdict onto the ledger error kinds, nil when allowed
func (v Verdict) Err() error {
	switch v {
	case Allowed:
		return nil
	case Forbidden:
		return ErrForbidden
	default:
		return ErrNotFound
	}
}

// judge decides ownership for a looked-up row
func judge(found bool, ownerID, userID uint) Verdict {
	if !found {
		return NotFound
	}
	if ownerID != userID {
		return Forbidden
	}
	return Allowed
}

// lockWallet loads a wallet with SELECT ... FOR UPDATE so every mutation of
// the same wallet inside tx is serialized until commit.
func lockWallet(tx *gorm.DB, walletID uint) (domain.Wallet, bool, error) {
	var wallet domain.Wallet
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&wallet, walletID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Wallet{}, false, nil
	}
	if err != nil {
		return domain.Wallet{}, false, err
	}
	return wallet, true, nil
}

// AssertWalletOwner locks the wallet and checks it belongs to userID
func AssertWalletOwner(tx *gorm.DB, userID, walletID uint) (domain.Wallet, Verdict, error) {
	wallet, found, err := lockWallet(tx, walletID)
	if err != nil {
		return domain.Wallet{}, NotFound, err
	}
	return wallet, judge(found, wallet.UserID, userID), nil
}

// AssertOperationOwner loads the operation and checks it belongs to userID.
// The owning wallet is locked first so a concurrent delete of the same
// operation observes the row only once.
func AssertOperationOwner(tx *gorm.DB, userID, operationID uint) (domain.Operation, Verdict, error) {
	var op domain.Operation
	err := tx.First(&op, operationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Operation{}, NotFound, nil
	}
	if err != nil {
		return domain.Operation{}, NotFound, err
	}
	if v := judge(true, op.UserID, userID); v != Allowed {
		return op, v, nil
	}
	wallet, found, err := lockWallet(tx, op.WalletID)
	if err != nil {
		return domain.Operation{}, NotFound, err
	}
	// Transitive check through the wallet as well as the row owner
	return op, judge(found, wallet.UserID, userID), nil
}
