package auth

import (
	"fmt"
	"strings"
)

// Authenticate matches the username exactly and the password in plain text.
func Authenticate(users []User, username, password string) (User, error) {
	for _, u := range users {
		if u.Username == username {
			if u.Password != password {
				return User{}, ErrInvalidCredentials
			}
			if role, ok := NormalizeRole(u.Role); ok {
				u.Role = role
			}
			return u, nil
		}
	}
	return User{}, ErrInvalidCredentials
}

// ValidateNew checks a prospective account against the existing ones. The
// caller is responsible for confirming that a linked employee exists.
func ValidateNew(users []User, candidate User) (User, error) {
	if strings.TrimSpace(candidate.Username) == "" || candidate.Password == "" {
		return User{}, ErrInvalidUser
	}
	if strings.ContainsAny(candidate.Username+candidate.Password, ",\r\n") {
		return User{}, fmt.Errorf("%w: credentials must not contain commas or line breaks", ErrInvalidUser)
	}
	role, ok := NormalizeRole(candidate.Role)
	if !ok {
		return User{}, fmt.Errorf("%w: %q", ErrInvalidRole, candidate.Role)
	}
	candidate.Role = role
	for _, u := range users {
		if u.Username == candidate.Username {
			return User{}, ErrDuplicateUsername
		}
		if candidate.HasEmployee() && u.EmployeeID == candidate.EmployeeID {
			return User{}, ErrEmployeeHasAccount
		}
	}
	return candidate, nil
}

// WithoutEmployee drops every account linked to employeeID.
func WithoutEmployee(users []User, employeeID int) []User {
	out := users[:0:0]
	for _, u := range users {
		if u.EmployeeID != employeeID || !u.HasEmployee() {
			out = append(out, u)
		}
	}
	return out
}
