package attendance

import (
	"strings"

	"smarthr/internal/domain/core"
)

// ForEmployee returns the records owned by emp, optionally restricted to a
// YYYY-MM month. An empty month matches every record.
func ForEmployee(records []Record, emp core.Employee, month string) []Record {
	var out []Record
	for _, r := range records {
		if !emp.Owns(r.EmployeeID) {
			continue
		}
		if month != "" && !strings.HasPrefix(r.Date, month+"-") {
			continue
		}
		out = append(out, r)
	}
	return out
}

// DaysPresent counts distinct dates with a Present record.
func DaysPresent(records []Record) int {
	seen := make(map[string]struct{})
	for _, r := range records {
		if strings.EqualFold(r.Status, StatusPresent) {
			seen[r.Date] = struct{}{}
		}
	}
	return len(seen)
}

// HasCheckedIn reports whether emp already has a Present record on date.
func HasCheckedIn(records []Record, emp core.Employee, date string) bool {
	for _, r := range records {
		if r.Date == date && strings.EqualFold(r.Status, StatusPresent) && emp.Owns(r.EmployeeID) {
			return true
		}
	}
	return false
}

// WithoutEmployee drops every record owned by emp.
func WithoutEmployee(records []Record, emp core.Employee) []Record {
	out := records[:0:0]
	for _, r := range records {
		if !emp.Owns(r.EmployeeID) {
			out = append(out, r)
		}
	}
	return out
}
