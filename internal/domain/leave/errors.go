package leave

import "errors"

var (
	ErrRequestNotFound     = errors.New("leave request not found")
	ErrInvalidState        = errors.New("leave request has already been decided")
	ErrInsufficientBalance = errors.New("insufficient leave balance")
	ErrInvalidDays         = errors.New("days requested must be positive")
	ErrReasonRequired      = errors.New("reason is required")
)
