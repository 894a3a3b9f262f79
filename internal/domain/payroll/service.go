package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"smarthr/internal/domain/core"
	"smarthr/internal/platform/metrics"
)

// Service keeps the payroll collection in memory and synchronizes it with
// the store on every change.
type Service struct {
	Store   StoreAPI
	Metrics *metrics.Collector
	records []Record
}

func NewService(store StoreAPI, collector *metrics.Collector) *Service {
	return &Service{Store: store, Metrics: collector}
}

func (s *Service) Load(ctx context.Context) error {
	records, err := s.Store.Load(ctx)
	if err != nil {
		return err
	}
	s.records = records
	return nil
}

func (s *Service) Records() []Record {
	return append([]Record(nil), s.records...)
}

func (s *Service) Find(employeeID int, month string) (Record, bool) {
	for _, r := range s.records {
		if r.EmployeeID == employeeID && r.Month == month {
			return r, true
		}
	}
	return Record{}, false
}

// ComputeForEmployee computes one employee's month with explicit days worked
// and bonus. When a record already exists, resolve decides whether to show
// it, replace it or stop; a nil resolver never overwrites.
func (s *Service) ComputeForEmployee(ctx context.Context, emp core.Employee, month string, daysWorked int, bonus float64, leaves LeaveCounter, resolve Resolver) (Record, Outcome, error) {
	if err := ValidateMonth(month); err != nil {
		return Record{}, "", err
	}
	existing, exists := s.Find(emp.ID, month)
	if exists {
		if resolve == nil {
			return existing, "", ErrRecordExists
		}
		switch resolve(existing) {
		case ResolutionView:
			return existing, OutcomeViewed, nil
		case ResolutionRegenerate:
		default:
			return Record{}, "", ErrCancelled
		}
	}

	rec, err := Compute(Input{
		Employee:    emp,
		Month:       month,
		DaysWorked:  daysWorked,
		DaysOnLeave: approvedDays(leaves, emp, month),
		Bonus:       bonus,
	})
	if err != nil {
		return Record{}, "", err
	}

	outcome := OutcomeCreated
	if exists {
		// One rewrite swaps the record, so a failed save keeps the old one.
		replaced := append(s.without(func(r Record) bool { return r.EmployeeID == emp.ID && r.Month == month }), rec)
		if err := s.Store.SaveAll(ctx, replaced); err != nil {
			return Record{}, "", err
		}
		s.records = replaced
		outcome = OutcomeRegenerated
	} else {
		if err := s.Store.Append(ctx, rec); err != nil {
			return Record{}, "", err
		}
		s.records = append(s.records, rec)
	}
	s.Metrics.RecordPayroll(1, 0, exists)
	slog.Info("payroll computed", "employee_id", emp.ID, "month", month, "outcome", outcome)
	return rec, outcome, nil
}

// GenerateMonth computes every employee for month assuming full attendance
// net of approved leave and no bonus. Existing records for the month are
// only replaced after confirm approves. Per-employee failures are collected
// and never stop the batch.
func (s *Service) GenerateMonth(ctx context.Context, employees []core.Employee, month string, leaves LeaveCounter, confirm Confirmer) (BatchResult, error) {
	result := BatchResult{Month: month}
	if err := ValidateMonth(month); err != nil {
		return result, err
	}

	existing := len(s.ListByMonth(month))
	if existing > 0 {
		if confirm == nil || !confirm(month, existing) {
			return result, ErrCancelled
		}
		remaining := s.without(func(r Record) bool { return r.Month == month })
		if err := s.Store.SaveAll(ctx, remaining); err != nil {
			return result, err
		}
		s.records = remaining
		result.Replaced = existing
	}

	for _, emp := range employees {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		leaveDays := approvedDays(leaves, emp, month)
		rec, err := Compute(Input{
			Employee:    emp,
			Month:       month,
			DaysWorked:  emp.ExpectedMonthlyWorkingDays - leaveDays,
			DaysOnLeave: leaveDays,
		})
		if err == nil {
			err = s.Store.Append(ctx, rec)
		}
		if err != nil {
			result.Failures = append(result.Failures, Failure{EmployeeID: emp.ID, Name: emp.Name, Reason: err.Error()})
			slog.Warn("payroll generation failed", "employee_id", emp.ID, "month", month, "err", err)
			continue
		}
		s.records = append(s.records, rec)
		result.Generated++
	}

	s.Metrics.RecordPayroll(result.Generated, result.Failed(), result.Replaced > 0)
	slog.Info("payroll batch generated", "month", month, "generated", result.Generated, "failed", result.Failed(), "replaced", result.Replaced)
	return result, nil
}

func (s *Service) ListByEmployee(employeeID int) []Record {
	out := s.filter(func(r Record) bool { return r.EmployeeID == employeeID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

func (s *Service) ListByMonth(month string) []Record {
	return s.filter(func(r Record) bool { return r.Month == month })
}

// ListRange returns records whose month lies in [from, to], compared as
// strings.
func (s *Service) ListRange(from, to string) ([]Record, error) {
	if err := ValidateMonth(from); err != nil {
		return nil, err
	}
	if err := ValidateMonth(to); err != nil {
		return nil, err
	}
	if from > to {
		return nil, fmt.Errorf("%w: %s is after %s", ErrInvalidMonth, from, to)
	}
	out := s.filter(func(r Record) bool { return inRange(r.Month, from, to) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

// RemoveEmployee rewrites the file without any record of employeeID.
func (s *Service) RemoveEmployee(ctx context.Context, employeeID int) (int, error) {
	remaining := s.without(func(r Record) bool { return r.EmployeeID == employeeID })
	removed := len(s.records) - len(remaining)
	if err := s.Store.SaveAll(ctx, remaining); err != nil {
		return 0, err
	}
	s.records = remaining
	return removed, nil
}

func (s *Service) filter(keep func(Record) bool) []Record {
	var out []Record
	for _, r := range s.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s *Service) without(drop func(Record) bool) []Record {
	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		if !drop(r) {
			out = append(out, r)
		}
	}
	return out
}

func approvedDays(leaves LeaveCounter, emp core.Employee, month string) int {
	if leaves == nil {
		return 0
	}
	return leaves.ApprovedDays(emp, month)
}
