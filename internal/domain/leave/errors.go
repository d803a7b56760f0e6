package leave

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("leave request not found")
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrOverlap           = errors.New("overlapping leave request exists")
	ErrInvalidTransition = errors.New("status change not allowed from current state")
	ErrConcurrency       = errors.New("leave operation could not be serialized")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InsufficientBalanceError reports the exact shortfall. Bucket is the stored
// bucket name for bucket types and "paid" for accrual-pool requests.
type InsufficientBalanceError struct {
	Bucket    string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s leave balance: available %s days, requested %s days",
		e.Bucket, e.Available.String(), e.Requested.String())
}
