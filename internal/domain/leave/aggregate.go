package leave

import (
	"smarthr/internal/domain/core"
)

const monthLayout = "2006-01"

// ApprovedDays sums DaysRequested over the Approved requests of emp dated
// within month (YYYY-MM).
func (rs Requests) ApprovedDays(emp core.Employee, month string) int {
	total := 0
	for _, r := range rs {
		if r.Status != StatusApproved || !emp.Owns(r.EmployeeID) {
			continue
		}
		if r.RequestDate.Format(monthLayout) == month {
			total += r.DaysRequested
		}
	}
	return total
}

func (rs Requests) ForEmployee(emp core.Employee) Requests {
	var out Requests
	for _, r := range rs {
		if emp.Owns(r.EmployeeID) {
			out = append(out, r)
		}
	}
	return out
}

func (rs Requests) WithStatus(status string) Requests {
	var out Requests
	for _, r := range rs {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

func (rs Requests) Find(id int) (Request, int, bool) {
	for i, r := range rs {
		if r.ID == id {
			return r, i, true
		}
	}
	return Request{}, -1, false
}

func (rs Requests) WithoutEmployee(emp core.Employee) Requests {
	out := rs[:0:0]
	for _, r := range rs {
		if !emp.Owns(r.EmployeeID) {
			out = append(out, r)
		}
	}
	return out
}
