package leave

import (
	"fmt"
	"strings"
	"time"

	"smarthr/internal/domain/core"
)

// NewRequest builds a Pending request for emp dated at now.
func NewRequest(id int, emp core.Employee, days int, reason string, now time.Time) (Request, error) {
	if days <= 0 {
		return Request{}, ErrInvalidDays
	}
	if strings.TrimSpace(reason) == "" {
		return Request{}, ErrReasonRequired
	}
	return Request{
		ID:            id,
		EmployeeName:  emp.Name,
		EmployeeID:    emp.ID,
		DaysRequested: days,
		Reason:        strings.TrimSpace(reason),
		Status:        StatusPending,
		RequestDate:   now,
	}, nil
}

// Approve moves req to Approved and debits the balance of emp. A request
// that the balance cannot cover stays Pending.
func Approve(req Request, emp core.Employee) (Request, core.Employee, error) {
	if req.Decided() {
		return req, emp, fmt.Errorf("%w: request %d is %s", ErrInvalidState, req.ID, req.Status)
	}
	if emp.LeaveBalance < req.DaysRequested {
		return req, emp, fmt.Errorf("%w: %d requested, %d available", ErrInsufficientBalance, req.DaysRequested, emp.LeaveBalance)
	}
	req.Status = StatusApproved
	emp.LeaveBalance -= req.DaysRequested
	return req, emp, nil
}

func Reject(req Request) (Request, error) {
	if req.Decided() {
		return req, fmt.Errorf("%w: request %d is %s", ErrInvalidState, req.ID, req.Status)
	}
	req.Status = StatusRejected
	return req, nil
}
