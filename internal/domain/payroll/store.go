package payroll

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"smarthr/internal/platform/flatfile"
)

const (
	FileName      = "payrolls.txt"
	payrollFields = 10
)

type Store struct {
	Dir string
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

func (s *Store) Path() string {
	return filepath.Join(s.Dir, FileName)
}

func (s *Store) Load(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := flatfile.EnsureDir(s.Dir); err != nil {
		return nil, err
	}
	var records []Record
	err := flatfile.ReadLines(s.Path(), flatfile.Comma, func(_ int, f []string) error {
		if len(f) != payrollFields {
			return nil
		}
		if rec, ok := decode(f); ok {
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load payroll records: %w", err)
	}
	return records, nil
}

// Append writes a single record to the end of the file.
func (s *Store) Append(ctx context.Context, record Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := flatfile.EnsureDir(s.Dir); err != nil {
		return err
	}
	if err := flatfile.AppendLine(s.Path(), flatfile.Comma, encode(record)); err != nil {
		return fmt.Errorf("append payroll record: %w", err)
	}
	return nil
}

// SaveAll rewrites the file with records.
func (s *Store) SaveAll(ctx context.Context, records []Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := flatfile.EnsureDir(s.Dir); err != nil {
		return err
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, encode(r))
	}
	if err := flatfile.WriteLines(s.Path(), flatfile.Comma, rows); err != nil {
		return fmt.Errorf("save payroll records: %w", err)
	}
	return nil
}

func encode(r Record) []string {
	return []string{
		strconv.Itoa(r.EmployeeID),
		r.Month,
		strconv.Itoa(r.DaysWorked),
		strconv.Itoa(r.DaysOnLeave),
		flatfile.FormatFloat(r.BaseSalary),
		flatfile.FormatFloat(r.Bonus),
		flatfile.FormatFloat(r.InsuranceDeduction),
		flatfile.FormatFloat(r.TaxDeduction),
		flatfile.FormatFloat(r.NetPay),
		flatfile.FormatFloat(r.Superannuation),
	}
}

func decode(f []string) (Record, bool) {
	var (
		r   Record
		err error
	)
	if r.EmployeeID, err = flatfile.ParseInt(f[0]); err != nil {
		return r, false
	}
	r.Month = f[1]
	if r.DaysWorked, err = flatfile.ParseInt(f[2]); err != nil {
		return r, false
	}
	if r.DaysOnLeave, err = flatfile.ParseInt(f[3]); err != nil {
		return r, false
	}
	amounts := []*float64{&r.BaseSalary, &r.Bonus, &r.InsuranceDeduction, &r.TaxDeduction, &r.NetPay, &r.Superannuation}
	for i, dst := range amounts {
		if *dst, err = flatfile.ParseFloat(f[4+i]); err != nil {
			return r, false
		}
	}
	return r, true
}
