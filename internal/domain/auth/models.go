package auth

import (
	"strings"

	"smarthr/internal/domain/core"
)

const (
	RoleAdmin    = "Admin"
	RoleHR       = "HR"
	RoleEmployee = "Employee"
)

// NoEmployee is the employee ID of an account not linked to any employee.
const NoEmployee = core.NoEmployeeID

const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin"
)

// User is a login account. Password holds the plain value in memory; the
// store applies the shift cipher on the way to and from disk.
type User struct {
	Username   string `json:"username"`
	Password   string `json:"-"`
	Role       string `json:"role"`
	EmployeeID int    `json:"employeeId"`
}

func (u User) HasEmployee() bool {
	return u.EmployeeID != NoEmployee
}

// NormalizeRole maps a role name to its canonical spelling, ignoring case.
func NormalizeRole(role string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "admin":
		return RoleAdmin, true
	case "hr":
		return RoleHR, true
	case "employee":
		return RoleEmployee, true
	}
	return "", false
}

func DefaultAdmin() User {
	return User{
		Username:   DefaultAdminUsername,
		Password:   DefaultAdminPassword,
		Role:       RoleAdmin,
		EmployeeID: NoEmployee,
	}
}

// UserContext is the authenticated principal carried through a request.
type UserContext struct {
	Username   string
	Role       string
	EmployeeID int
}
