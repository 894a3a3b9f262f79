package payroll

import "fmt"

// Compute derives a payroll record from the employee's compensation profile.
// Insurance is pre-tax; superannuation is employer-side and does not touch
// net pay. The explicit float64 conversions keep each amount rounded on its
// own so that stored values satisfy the net pay identity exactly.
func Compute(in Input) (Record, error) {
	emp := in.Employee
	if emp.ExpectedMonthlyWorkingDays <= 0 {
		return Record{}, fmt.Errorf("%w: employee %d has %d", ErrInvalidWorkingDays, emp.ID, emp.ExpectedMonthlyWorkingDays)
	}
	if in.DaysWorked < 0 || in.DaysOnLeave < 0 {
		return Record{}, fmt.Errorf("%w: worked %d, on leave %d", ErrNegativeDays, in.DaysWorked, in.DaysOnLeave)
	}
	if in.Bonus < 0 {
		return Record{}, ErrNegativeBonus
	}

	monthlySalary := emp.Salary / MonthsPerYear
	dailyRate := monthlySalary / float64(emp.ExpectedMonthlyWorkingDays)
	base := float64(dailyRate * float64(in.DaysWorked+in.DaysOnLeave))

	insurance := 0.0
	if emp.HasInsurance() {
		insurance = float64(base * emp.InsuranceRate)
	}
	tax := float64((base - insurance) * emp.TaxRate)
	super := 0.0
	if emp.HasSuperannuation {
		super = float64(base * SuperannuationRate)
	}

	return Record{
		EmployeeID:         emp.ID,
		Month:              in.Month,
		DaysWorked:         in.DaysWorked,
		DaysOnLeave:        in.DaysOnLeave,
		BaseSalary:         base,
		Bonus:              in.Bonus,
		InsuranceDeduction: insurance,
		TaxDeduction:       tax,
		NetPay:             base + in.Bonus - insurance - tax,
		Superannuation:     super,
	}, nil
}
