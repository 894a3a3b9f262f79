package payroll

import (
	"fmt"
	"regexp"
	"time"
)

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidateMonth accepts only fixed-width YYYY-MM keys, which keeps string
// comparison equal to calendar order.
func ValidateMonth(month string) error {
	if !monthPattern.MatchString(month) {
		return fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}
	return nil
}

func MonthOf(t time.Time) string {
	return t.Format(MonthLayout)
}

func inRange(month, from, to string) bool {
	return month >= from && month <= to
}
