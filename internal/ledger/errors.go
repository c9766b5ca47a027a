package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	ErrEmptyName     = errors.New("name must not be empty")
	ErrInvalidType   = errors.New("type must be income or expense")
	ErrInvalidTarget = errors.New("monthly target must not be negative")
	ErrNotFound      = errors.New("transaction not found")
)

// StorageError reports a failed read or write against the ledger store.
// Nothing in memory changes when a mutation returns one, except that a
// failed refetch after a successful commit leaves the cache stale.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err is or wraps a *StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
