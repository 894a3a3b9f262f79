package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrEmployeeHasAccount = errors.New("employee already has a user account")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidUser        = errors.New("username and password are required")
	ErrInvalidToken       = errors.New("invalid token")
)
