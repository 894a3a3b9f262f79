package audit

import (
	"sort"
	"strings"
	"time"

	"smarthr/internal/domain/core"
)

const (
	ActionCreate        = "Create"
	ActionUpdate        = "Update"
	ActionLeaveApproved = "Leave Approved"
	ActionLeaveRejected = "Leave Rejected"
	ActionLeaveRequest  = "Leave Requested"
	ActionAccountCreate = "Account Created"
)

// Entry is one line of an employee's append-only history.
type Entry struct {
	EmployeeName string    `json:"employeeName"`
	EmployeeID   int       `json:"employeeId"`
	Action       string    `json:"action"`
	Details      string    `json:"details"`
	Date         time.Time `json:"date"`
}

type Filter struct {
	Action string
	From   time.Time
	To     time.Time
}

func Record(emp core.Employee, action, details string, at time.Time) Entry {
	return Entry{
		EmployeeName: emp.Name,
		EmployeeID:   emp.ID,
		Action:       action,
		Details:      details,
		Date:         at,
	}
}

// List returns the entries owned by emp that match filter, newest first.
func List(entries []Entry, emp core.Employee, filter Filter) []Entry {
	var out []Entry
	for _, e := range entries {
		if !emp.Owns(e.EmployeeID) {
			continue
		}
		if filter.Action != "" && !strings.EqualFold(filter.Action, e.Action) {
			continue
		}
		if !filter.From.IsZero() && e.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && e.Date.After(filter.To) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func WithoutEmployee(entries []Entry, emp core.Employee) []Entry {
	out := entries[:0:0]
	for _, e := range entries {
		if !emp.Owns(e.EmployeeID) {
			out = append(out, e)
		}
	}
	return out
}
