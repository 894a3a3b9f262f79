package core

import "strings"

// NoEmployeeID marks a record that is not linked to any employee.
const NoEmployeeID = -1

const (
	DefaultLeaveBalance        = 20
	DefaultExpectedWorkingDays = 20
	DefaultInsuranceRate       = 0.05
	DefaultTaxRate             = 0.20
)

type Employee struct {
	ID                         int     `json:"id"`
	Name                       string  `json:"name"`
	Position                   string  `json:"position"`
	Department                 string  `json:"department"`
	Salary                     float64 `json:"salary"`
	LeaveBalance               int     `json:"leaveBalance"`
	ExpectedMonthlyWorkingDays int     `json:"expectedMonthlyWorkingDays"`
	InsuranceRate              float64 `json:"insuranceRate"`
	TaxRate                    float64 `json:"taxRate"`
	HasHealthInsurance         bool    `json:"hasHealthInsurance"`
	HasDentalInsurance         bool    `json:"hasDentalInsurance"`
	HasVisionInsurance         bool    `json:"hasVisionInsurance"`
	HasSuperannuation          bool    `json:"hasSuperannuation"`
}

// NewEmployee returns an employee with the default leave, working-day and
// rate settings and no benefits.
func NewEmployee(id int, name, position, department string, salary float64) Employee {
	return Employee{
		ID:                         id,
		Name:                       name,
		Position:                   position,
		Department:                 department,
		Salary:                     salary,
		LeaveBalance:               DefaultLeaveBalance,
		ExpectedMonthlyWorkingDays: DefaultExpectedWorkingDays,
		InsuranceRate:              DefaultInsuranceRate,
		TaxRate:                    DefaultTaxRate,
	}
}

// HasInsurance reports whether any insurance-type benefit is active.
func (e Employee) HasInsurance() bool {
	return e.HasHealthInsurance || e.HasDentalInsurance || e.HasVisionInsurance
}

// Owns reports whether a dependent record belongs to e. The employee ID is
// the only join key; rows without one belong to nobody.
func (e Employee) Owns(recordEmployeeID int) bool {
	return recordEmployeeID != NoEmployeeID && recordEmployeeID == e.ID
}

// OwnerByName returns the ID of the single employee named name, compared
// case-insensitively. It returns NoEmployeeID when no employee or more than
// one employee has that name.
func OwnerByName(employees []Employee, name string) int {
	name = strings.TrimSpace(name)
	owner := NoEmployeeID
	for _, e := range employees {
		if !strings.EqualFold(strings.TrimSpace(e.Name), name) {
			continue
		}
		if owner != NoEmployeeID {
			return NoEmployeeID
		}
		owner = e.ID
	}
	return owner
}

func (e Employee) Validate() error {
	switch {
	case strings.TrimSpace(e.Name) == "":
		return invalid("name is required")
	case e.Salary < 0:
		return invalid("salary must not be negative")
	case e.LeaveBalance < 0:
		return invalid("leave balance must not be negative")
	case e.ExpectedMonthlyWorkingDays <= 0:
		return invalid("expected monthly working days must be positive")
	case e.InsuranceRate < 0 || e.InsuranceRate > 1:
		return invalid("insurance rate must be between 0 and 1")
	case e.TaxRate < 0 || e.TaxRate > 1:
		return invalid("tax rate must be between 0 and 1")
	}
	return nil
}

// Find returns the employee with id and its index in list.
func Find(list []Employee, id int) (Employee, int, bool) {
	for i, emp := range list {
		if emp.ID == id {
			return emp, i, true
		}
	}
	return Employee{}, -1, false
}
