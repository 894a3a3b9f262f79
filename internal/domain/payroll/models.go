package payroll

import "smarthr/internal/domain/core"

type Record struct {
	EmployeeID         int     `json:"employeeId"`
	Month              string  `json:"month"`
	DaysWorked         int     `json:"daysWorked"`
	DaysOnLeave        int     `json:"daysOnLeave"`
	BaseSalary         float64 `json:"baseSalary"`
	Bonus              float64 `json:"bonus"`
	InsuranceDeduction float64 `json:"insuranceDeduction"`
	TaxDeduction       float64 `json:"taxDeduction"`
	NetPay             float64 `json:"netPay"`
	Superannuation     float64 `json:"superannuation"`
}

// Input is everything the engine needs for one employee and month.
type Input struct {
	Employee    core.Employee
	Month       string
	DaysWorked  int
	DaysOnLeave int
	Bonus       float64
}

// LeaveCounter supplies approved leave days per employee and month.
type LeaveCounter interface {
	ApprovedDays(emp core.Employee, month string) int
}

// Resolution is the operator's answer when a record already exists for the
// employee and month being computed.
type Resolution int

const (
	ResolutionCancel Resolution = iota
	ResolutionView
	ResolutionRegenerate
)

type Resolver func(existing Record) Resolution

// Confirmer approves replacing the existing records of a month before a bulk
// run.
type Confirmer func(month string, existing int) bool

type Outcome string

const (
	OutcomeCreated     Outcome = "created"
	OutcomeViewed      Outcome = "viewed"
	OutcomeRegenerated Outcome = "regenerated"
)

type Failure struct {
	EmployeeID int    `json:"employeeId"`
	Name       string `json:"name"`
	Reason     string `json:"reason"`
}

type BatchResult struct {
	Month     string    `json:"month"`
	Generated int       `json:"generated"`
	Replaced  int       `json:"replaced"`
	Failures  []Failure `json:"failures"`
}

func (b BatchResult) Failed() int {
	return len(b.Failures)
}
