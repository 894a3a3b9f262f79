package attendance

import "errors"

var (
	ErrAlreadyCheckedIn = errors.New("already checked in for this date")
	ErrInvalidDate      = errors.New("date must be YYYY-MM-DD")
)
