package leave

import "time"

const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

type Request struct {
	ID            int       `json:"id"`
	EmployeeName  string    `json:"employeeName"`
	EmployeeID    int       `json:"employeeId"`
	DaysRequested int       `json:"daysRequested"`
	Reason        string    `json:"reason"`
	Status        string    `json:"status"`
	RequestDate   time.Time `json:"requestDate"`
}

func (r Request) Decided() bool {
	return r.Status != StatusPending
}

// Requests is a leave collection that can answer approved-day queries for
// the payroll engine.
type Requests []Request
