package installment

import (
	"errors"
	"fmt"
)

var (
	// ErrPaidExceedsCount — правка оставила бы оплаченных взносов больше, чем взносов всего.
	ErrPaidExceedsCount = errors.New("paid installments exceed installment count")
	// ErrNegativePaid — отрицательное количество оплаченных взносов.
	ErrNegativePaid = errors.New("paid installments must not be negative")
)

// ValidationError — отказ в правке, которая нарушила бы согласованность записи.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
