package payroll

import "errors"

var (
	ErrInvalidMonth       = errors.New("month must be YYYY-MM")
	ErrInvalidWorkingDays = errors.New("expected monthly working days must be positive")
	ErrNegativeDays       = errors.New("day counts must not be negative")
	ErrNegativeBonus      = errors.New("bonus must not be negative")
	ErrRecordExists       = errors.New("payroll record already exists for this employee and month")
	ErrRecordNotFound     = errors.New("payroll record not found")
	ErrCancelled          = errors.New("payroll operation cancelled")
)
