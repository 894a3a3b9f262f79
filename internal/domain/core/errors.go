package core

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedEmployee = errors.New("malformed employee record")
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrInvalidEmployee   = errors.New("invalid employee")
)

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidEmployee, reason)
}
