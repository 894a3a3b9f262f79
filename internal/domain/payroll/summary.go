package payroll

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Summary struct {
	Month               string          `json:"month"`
	Employees           int             `json:"employees"`
	TotalBase           decimal.Decimal `json:"totalBase"`
	TotalBonus          decimal.Decimal `json:"totalBonus"`
	TotalInsurance      decimal.Decimal `json:"totalInsurance"`
	TotalTax            decimal.Decimal `json:"totalTax"`
	TotalNet            decimal.Decimal `json:"totalNet"`
	TotalSuperannuation decimal.Decimal `json:"totalSuperannuation"`
}

// Summarize totals the records of one month, rounded to cents.
func Summarize(month string, records []Record) Summary {
	s := Summary{Month: month}
	for _, r := range records {
		if r.Month != month {
			continue
		}
		s.Employees++
		s.TotalBase = s.TotalBase.Add(decimal.NewFromFloat(r.BaseSalary))
		s.TotalBonus = s.TotalBonus.Add(decimal.NewFromFloat(r.Bonus))
		s.TotalInsurance = s.TotalInsurance.Add(decimal.NewFromFloat(r.InsuranceDeduction))
		s.TotalTax = s.TotalTax.Add(decimal.NewFromFloat(r.TaxDeduction))
		s.TotalNet = s.TotalNet.Add(decimal.NewFromFloat(r.NetPay))
		s.TotalSuperannuation = s.TotalSuperannuation.Add(decimal.NewFromFloat(r.Superannuation))
	}
	s.TotalBase = s.TotalBase.Round(2)
	s.TotalBonus = s.TotalBonus.Round(2)
	s.TotalInsurance = s.TotalInsurance.Round(2)
	s.TotalTax = s.TotalTax.Round(2)
	s.TotalNet = s.TotalNet.Round(2)
	s.TotalSuperannuation = s.TotalSuperannuation.Round(2)
	return s
}

// Money formats an amount with two decimals.
func Money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Format renders a record as the plain-text payslip shown on the console.
func Format(r Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Payroll for Employee %04d - %s\n", r.EmployeeID, r.Month)
	fmt.Fprintf(&b, "Days Worked: %d, Days on Leave: %d\n", r.DaysWorked, r.DaysOnLeave)
	fmt.Fprintf(&b, "Base Salary: $%s\n", Money(r.BaseSalary))
	fmt.Fprintf(&b, "Bonus: $%s\n", Money(r.Bonus))
	fmt.Fprintf(&b, "Insurance Deduction: $%s\n", Money(r.InsuranceDeduction))
	fmt.Fprintf(&b, "Tax Deduction: $%s\n", Money(r.TaxDeduction))
	fmt.Fprintf(&b, "Superannuation: $%s\n", Money(r.Superannuation))
	fmt.Fprintf(&b, "Net Pay: $%s", Money(r.NetPay))
	return b.String()
}
