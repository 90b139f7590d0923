package ledger

import (
	"errors" // Sentinel errors
	"fmt"    // Error formatting
)

// Error kinds returned by the ledger. Callers classify with errors.Is.
var (
	ErrNotFound   = errors.New("not found")  // Wallet or operation does not exist
	ErrForbidden  = errors.New("forbidden")  // Caller does not own the resource
	ErrValidation = errors.New("validation") // Input rejected before reaching the store
)

// StorageError wraps a failure of the underlying store. The transaction that
// produced it has already been rolled back.
type StorageError struct {
	Op  string // What the ledger was doing
	Err error  // Driver or GORM error
}

func (e *StorageError) Error() string {
	return "storage: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

// invalid builds a validation error carrying a human readable detail
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// storage wraps err as a StorageError unless it is already one of the ledger kinds
func storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) || errors.Is(err, ErrValidation) || errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
