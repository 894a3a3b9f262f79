package session

import (
	"fmt"
	"strings"

	"smarthr/internal/domain/core"
	"smarthr/internal/platform/flatfile"
)

func describeChanges(before, after core.Employee) string {
	var changes []string
	add := func(field, from, to string) {
		if from != to {
			changes = append(changes, fmt.Sprintf("%s %s -> %s", field, from, to))
		}
	}
	add("name", before.Name, after.Name)
	add("position", before.Position, after.Position)
	add("department", before.Department, after.Department)
	add("salary", flatfile.FormatFloat(before.Salary), flatfile.FormatFloat(after.Salary))
	add("leave balance", fmt.Sprint(before.LeaveBalance), fmt.Sprint(after.LeaveBalance))
	add("working days", fmt.Sprint(before.ExpectedMonthlyWorkingDays), fmt.Sprint(after.ExpectedMonthlyWorkingDays))
	add("insurance rate", flatfile.FormatFloat(before.InsuranceRate), flatfile.FormatFloat(after.InsuranceRate))
	add("tax rate", flatfile.FormatFloat(before.TaxRate), flatfile.FormatFloat(after.TaxRate))
	add("health", fmt.Sprint(before.HasHealthInsurance), fmt.Sprint(after.HasHealthInsurance))
	add("dental", fmt.Sprint(before.HasDentalInsurance), fmt.Sprint(after.HasDentalInsurance))
	add("vision", fmt.Sprint(before.HasVisionInsurance), fmt.Sprint(after.HasVisionInsurance))
	add("superannuation", fmt.Sprint(before.HasSuperannuation), fmt.Sprint(after.HasSuperannuation))
	if len(changes) == 0 {
		return "Updated employee info"
	}
	return "Updated " + strings.Join(changes, "; ")
}
