package payroll

const (
	SuperannuationRate = 0.115
	MonthsPerYear      = 12

	MonthLayout = "2006-01"
)
