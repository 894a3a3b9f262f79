package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"smarthr/internal/platform/flatfile"
	"smarthr/internal/platform/sequence"
)

const (
	FileName       = "employees.txt"
	employeeFields = 13
)

// Store persists employees to employees.txt and owns the employee ID
// watermark.
type Store struct {
	Dir string
	IDs *sequence.Sequence
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir, IDs: sequence.New()}
}

func (s *Store) Path() string {
	return filepath.Join(s.Dir, FileName)
}

// NextID allocates a fresh employee ID above every ID loaded or issued.
func (s *Store) NextID() int {
	return s.IDs.Next()
}

// Load reads every employee. Lines with the wrong number of fields are
// skipped; a line whose numeric or boolean fields do not parse aborts the
// load with ErrMalformedEmployee.
func (s *Store) Load(ctx context.Context) ([]Employee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := flatfile.EnsureDir(s.Dir); err != nil {
		return nil, err
	}
	var employees []Employee
	err := flatfile.ReadLines(s.Path(), flatfile.Comma, func(lineNo int, fields []string) error {
		if len(fields) != employeeFields {
			return nil
		}
		emp, err := decode(fields)
		if err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrMalformedEmployee, lineNo, err)
		}
		s.IDs.Observe(emp.ID)
		employees = append(employees, emp)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load employees: %w", err)
	}
	return employees, nil
}

func (s *Store) Save(ctx context.Context, employees []Employee) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := flatfile.EnsureDir(s.Dir); err != nil {
		return err
	}
	rows := make([][]string, 0, len(employees))
	for _, emp := range employees {
		rows = append(rows, encode(emp))
	}
	if err := flatfile.WriteLines(s.Path(), flatfile.Comma, rows); err != nil {
		return fmt.Errorf("save employees: %w", err)
	}
	return nil
}

func encode(e Employee) []string {
	return []string{
		strconv.Itoa(e.ID),
		e.Name,
		e.Position,
		e.Department,
		flatfile.FormatFloat(e.Salary),
		strconv.Itoa(e.LeaveBalance),
		strconv.Itoa(e.ExpectedMonthlyWorkingDays),
		flatfile.FormatFloat(e.InsuranceRate),
		flatfile.FormatFloat(e.TaxRate),
		strconv.FormatBool(e.HasHealthInsurance),
		strconv.FormatBool(e.HasDentalInsurance),
		strconv.FormatBool(e.HasVisionInsurance),
		strconv.FormatBool(e.HasSuperannuation),
	}
}

func decode(f []string) (Employee, error) {
	var (
		e   Employee
		err error
	)
	if e.ID, err = flatfile.ParseInt(f[0]); err != nil {
		return e, fmt.Errorf("id: %w", err)
	}
	e.Name, e.Position, e.Department = f[1], f[2], f[3]
	if e.Salary, err = flatfile.ParseFloat(f[4]); err != nil {
		return e, fmt.Errorf("salary: %w", err)
	}
	if e.LeaveBalance, err = flatfile.ParseInt(f[5]); err != nil {
		return e, fmt.Errorf("leave balance: %w", err)
	}
	if e.ExpectedMonthlyWorkingDays, err = flatfile.ParseInt(f[6]); err != nil {
		return e, fmt.Errorf("expected working days: %w", err)
	}
	if e.InsuranceRate, err = flatfile.ParseFloat(f[7]); err != nil {
		return e, fmt.Errorf("insurance rate: %w", err)
	}
	if e.TaxRate, err = flatfile.ParseFloat(f[8]); err != nil {
		return e, fmt.Errorf("tax rate: %w", err)
	}
	flags := []*bool{&e.HasHealthInsurance, &e.HasDentalInsurance, &e.HasVisionInsurance, &e.HasSuperannuation}
	for i, flag := range flags {
		if *flag, err = flatfile.ParseBool(f[9+i]); err != nil {
			return e, fmt.Errorf("benefit flag %d: %w", i+1, err)
		}
	}
	return e, nil
}
