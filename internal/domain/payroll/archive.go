package payroll

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const archiveSchema = `
CREATE TABLE IF NOT EXISTS payroll_records (
  employee_id INTEGER NOT NULL,
  month CHAR(7) NOT NULL,
  days_worked INTEGER NOT NULL,
  days_on_leave INTEGER NOT NULL,
  base_salary DOUBLE PRECISION NOT NULL,
  bonus DOUBLE PRECISION NOT NULL,
  insurance_deduction DOUBLE PRECISION NOT NULL,
  tax_deduction DOUBLE PRECISION NOT NULL,
  net_pay DOUBLE PRECISION NOT NULL,
  superannuation DOUBLE PRECISION NOT NULL,
  archived_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (employee_id, month)
)`

const archiveInsert = `
INSERT INTO payroll_records (employee_id, month, days_worked, days_on_leave, base_salary, bonus,
  insurance_deduction, tax_deduction, net_pay, superannuation)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`

// Archive mirrors payroll records into PostgreSQL for reporting. The flat
// files stay authoritative; nothing is read back from the archive.
type Archive struct {
	DB *pgxpool.Pool
}

func NewArchive(db *pgxpool.Pool) *Archive {
	return &Archive{DB: db}
}

func (a *Archive) EnsureSchema(ctx context.Context) error {
	_, err := a.DB.Exec(ctx, archiveSchema)
	return err
}

// MirrorMonth replaces the archived rows for month with records in one
// transaction and returns how many were written. Rows for employees no longer
// in records are dropped.
func (a *Archive) MirrorMonth(ctx context.Context, month string, records []Record) (int, error) {
	err := pgx.BeginFunc(ctx, a.DB, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM payroll_records WHERE month = $1`, month); err != nil {
			return fmt.Errorf("clear archived %s: %w", month, err)
		}
		if len(records) == 0 {
			return nil
		}
		batch := &pgx.Batch{}
		for _, r := range records {
			batch.Queue(archiveInsert, r.EmployeeID, r.Month, r.DaysWorked, r.DaysOnLeave, r.BaseSalary, r.Bonus,
				r.InsuranceDeduction, r.TaxDeduction, r.NetPay, r.Superannuation)
		}
		br := tx.SendBatch(ctx, batch)
		for _, r := range records {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("archive payroll record %d/%s: %w", r.EmployeeID, r.Month, err)
			}
		}
		return br.Close()
	})
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// RemoveEmployee drops every archived row of an employee.
func (a *Archive) RemoveEmployee(ctx context.Context, employeeID int) (int64, error) {
	tag, err := a.DB.Exec(ctx, `DELETE FROM payroll_records WHERE employee_id = $1`, employeeID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
