// Package session hosts every record collection for the lifetime of the
// process and exposes the operations the CLI and HTTP front-ends call.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"smarthr/internal/domain/attendance"
	"smarthr/internal/domain/audit"
	"smarthr/internal/domain/auth"
	"smarthr/internal/domain/core"
	"smarthr/internal/domain/leave"
	"smarthr/internal/domain/payroll"
	"smarthr/internal/platform/metrics"
)

var (
	ErrConfirmationRequired = errors.New("removal must be confirmed")
	ErrEmployeesUnavailable = errors.New("employee file failed to load; employee changes are disabled")
	ErrArchiveDisabled      = errors.New("payroll archive is not configured")
)

// Session serializes access to the in-memory collections. Only one process
// may work on a data directory at a time; files are not locked.
type Session struct {
	mu sync.Mutex

	dataDir  string
	now      func() time.Time
	metrics  *metrics.Collector
	payslips payroll.PayslipWriter
	archive  *payroll.Archive

	employeeStore   *core.Store
	userStore       *auth.Store
	attendanceStore *attendance.Store
	leaveStore      *leave.Store
	historyStore    *audit.Store
	payroll         *payroll.Service

	employees       []core.Employee
	users           []auth.User
	attendance      []attendance.Record
	leaves          leave.Requests
	history         []audit.Entry
	employeesLoaded bool
	employeeErr     error
	loadErr         error
}

type Option func(*Session)

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

func WithMetrics(collector *metrics.Collector) Option {
	return func(s *Session) {
		s.metrics = collector
	}
}

func WithPayslips(writer payroll.PayslipWriter) Option {
	return func(s *Session) {
		s.payslips = writer
	}
}

func WithArchive(archive *payroll.Archive) Option {
	return func(s *Session) {
		s.archive = archive
	}
}

func New(dataDir string, opts ...Option) *Session {
	s := &Session{
		dataDir:         dataDir,
		now:             time.Now,
		employeeStore:   core.NewStore(dataDir),
		userStore:       auth.NewStore(dataDir),
		attendanceStore: attendance.NewStore(dataDir),
		leaveStore:      leave.NewStore(dataDir),
		historyStore:    audit.NewStore(dataDir),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.payslips.Dir == "" {
		s.payslips.Dir = filepath.Join(dataDir, "payslips")
	}
	s.payroll = payroll.NewService(payroll.NewStore(dataDir), s.metrics)
	return s
}

func (s *Session) DataDir() string {
	return s.dataDir
}

// Load reads every collection. A failing file does not stop the others; the
// errors are joined. After an employee load failure employee writes are
// refused so the file is never overwritten with a partial list.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	employees, err := s.employeeStore.Load(ctx)
	if err != nil {
		s.employeeErr = fmt.Errorf("%w: %w", ErrEmployeesUnavailable, err)
		s.employeesLoaded = false
		errs = append(errs, s.employeeErr)
	} else {
		s.employees = employees
		s.employeesLoaded = true
		s.employeeErr = nil
	}
	if s.users, err = s.userStore.Load(ctx); err != nil {
		errs = append(errs, err)
	}
	if s.attendance, err = s.attendanceStore.Load(ctx); err != nil {
		errs = append(errs, err)
	}
	if s.leaves, err = s.leaveStore.Load(ctx); err != nil {
		errs = append(errs, err)
	}
	if s.history, err = s.historyStore.Load(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.payroll.Load(ctx); err != nil {
		errs = append(errs, err)
	}
	if s.employeesLoaded {
		s.bindUnownedRows()
	}
	slog.Info("data loaded",
		"dir", s.dataDir,
		"employees", len(s.employees),
		"users", len(s.users),
		"leave_requests", len(s.leaves),
		"payroll_records", len(s.payroll.Records()),
		"errors", len(errs),
	)
	s.loadErr = errors.Join(errs...)
	return s.loadErr
}

// bindUnownedRows gives rows stored without an employee ID the ID of the one
// employee carrying their name. Rows whose name is shared or unknown stay
// unbound and belong to nobody.
func (s *Session) bindUnownedRows() {
	for i, r := range s.attendance {
		if r.EmployeeID == core.NoEmployeeID {
			s.attendance[i].EmployeeID = core.OwnerByName(s.employees, r.EmployeeName)
		}
	}
	for i, r := range s.leaves {
		if r.EmployeeID == core.NoEmployeeID {
			s.leaves[i].EmployeeID = core.OwnerByName(s.employees, r.EmployeeName)
		}
	}
	for i, e := range s.history {
		if e.EmployeeID == core.NoEmployeeID {
			s.history[i].EmployeeID = core.OwnerByName(s.employees, e.EmployeeName)
		}
	}
}

// LoadError returns the errors of the last Load, or nil.
func (s *Session) LoadError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// EmployeesReady returns nil once the employee file has loaded cleanly.
func (s *Session) EmployeesReady() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.employeesLoaded {
		return nil
	}
	if s.employeeErr != nil {
		return s.employeeErr
	}
	return ErrEmployeesUnavailable
}

func (s *Session) Login(username, password string) (auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return auth.Authenticate(s.users, username, password)
}

func (s *Session) Employees() []core.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Employee(nil), s.employees...)
}

func (s *Session) Employee(id int) (core.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.employee(id)
}

func (s *Session) employee(id int) (core.Employee, error) {
	emp, _, ok := core.Find(s.employees, id)
	if !ok {
		return core.Employee{}, fmt.Errorf("%w: %d", core.ErrEmployeeNotFound, id)
	}
	return emp, nil
}

func (s *Session) AddEmployee(ctx context.Context, draft core.Employee) (core.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.employeesLoaded {
		return core.Employee{}, ErrEmployeesUnavailable
	}
	if err := draft.Validate(); err != nil {
		return core.Employee{}, err
	}
	draft.ID = s.employeeStore.NextID()
	employees := append(append([]core.Employee(nil), s.employees...), draft)
	if err := s.employeeStore.Save(ctx, employees); err != nil {
		return core.Employee{}, err
	}
	s.employees = employees
	details := fmt.Sprintf("Hired as %s in %s", draft.Position, draft.Department)
	if err := s.appendHistory(ctx, audit.Record(draft, audit.ActionCreate, details, s.now())); err != nil {
		return draft, err
	}
	return draft, nil
}

func (s *Session) EditEmployee(ctx context.Context, updated core.Employee) (core.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.employeesLoaded {
		return core.Employee{}, ErrEmployeesUnavailable
	}
	current, idx, ok := core.Find(s.employees, updated.ID)
	if !ok {
		return core.Employee{}, fmt.Errorf("%w: %d", core.ErrEmployeeNotFound, updated.ID)
	}
	if err := updated.Validate(); err != nil {
		return core.Employee{}, err
	}
	employees := append([]core.Employee(nil), s.employees...)
	employees[idx] = updated
	if err := s.employeeStore.Save(ctx, employees); err != nil {
		return core.Employee{}, err
	}
	s.employees = employees
	if err := s.appendHistory(ctx, audit.Record(updated, audit.ActionUpdate, describeChanges(current, updated), s.now())); err != nil {
		return updated, err
	}
	return updated, nil
}

// Removal counts what a cascade delete removed.
type Removal struct {
	Employee   core.Employee `json:"employee"`
	Users      int           `json:"users"`
	History    int           `json:"history"`
	Leaves     int           `json:"leaves"`
	Attendance int           `json:"attendance"`
	Payroll    int           `json:"payroll"`
	Archived   int           `json:"archived,omitempty"`
}

// RemoveEmployee deletes the employee and every record that belongs to it.
// Each collection is saved on its own; dependents go first so that a failed
// save leaves the employee in place for a retry.
func (s *Session) RemoveEmployee(ctx context.Context, id int, confirm bool) (Removal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.employeesLoaded {
		return Removal{}, ErrEmployeesUnavailable
	}
	emp, err := s.employee(id)
	if err != nil {
		return Removal{}, err
	}
	if !confirm {
		return Removal{Employee: emp}, ErrConfirmationRequired
	}
	out := Removal{Employee: emp}

	users := auth.WithoutEmployee(s.users, emp.ID)
	if err := s.userStore.Save(ctx, users); err != nil {
		return out, err
	}
	out.Users = len(s.users) - len(users)
	s.users = users

	history := audit.WithoutEmployee(s.history, emp)
	if err := s.historyStore.Save(ctx, history); err != nil {
		return out, err
	}
	out.History = len(s.history) - len(history)
	s.history = history

	leaves := s.leaves.WithoutEmployee(emp)
	if err := s.leaveStore.Save(ctx, leaves); err != nil {
		return out, err
	}
	out.Leaves = len(s.leaves) - len(leaves)
	s.leaves = leaves

	records := attendance.WithoutEmployee(s.attendance, emp)
	if err := s.attendanceStore.Save(ctx, records); err != nil {
		return out, err
	}
	out.Attendance = len(s.attendance) - len(records)
	s.attendance = records

	if out.Payroll, err = s.payroll.RemoveEmployee(ctx, emp.ID); err != nil {
		return out, err
	}
	if s.archive != nil {
		if n, err := s.archive.RemoveEmployee(ctx, emp.ID); err != nil {
			slog.Warn("archived payroll not removed", "employee_id", emp.ID, "err", err)
		} else {
			out.Archived = int(n)
		}
	}

	_, idx, _ := core.Find(s.employees, emp.ID)
	employees := append(append([]core.Employee(nil), s.employees[:idx]...), s.employees[idx+1:]...)
	if err := s.employeeStore.Save(ctx, employees); err != nil {
		return out, err
	}
	s.employees = employees
	slog.Info("employee removed", "employee_id", emp.ID, "users", out.Users, "history", out.History,
		"leaves", out.Leaves, "attendance", out.Attendance, "payroll", out.Payroll)
	return out, nil
}

func (s *Session) Users() []auth.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]auth.User(nil), s.users...)
}

func (s *Session) AddUser(ctx context.Context, candidate auth.User) (auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, err := auth.ValidateNew(s.users, candidate)
	if err != nil {
		return auth.User{}, err
	}
	var emp core.Employee
	if user.HasEmployee() {
		if emp, err = s.employee(user.EmployeeID); err != nil {
			return auth.User{}, err
		}
	}
	users := append(append([]auth.User(nil), s.users...), user)
	if err := s.userStore.Save(ctx, users); err != nil {
		return auth.User{}, err
	}
	s.users = users
	if user.HasEmployee() {
		details := fmt.Sprintf("Login %s created with role %s", user.Username, user.Role)
		if err := s.appendHistory(ctx, audit.Record(emp, audit.ActionAccountCreate, details, s.now())); err != nil {
			return user, err
		}
	}
	return user, nil
}

func (s *Session) CheckIn(ctx context.Context, employeeID int) (attendance.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	emp, err := s.employee(employeeID)
	if err != nil {
		return attendance.Record{}, err
	}
	now := s.now()
	date := now.Format("2006-01-02")
	if attendance.HasCheckedIn(s.attendance, emp, date) {
		return attendance.Record{}, fmt.Errorf("%w: %s", attendance.ErrAlreadyCheckedIn, date)
	}
	rec := attendance.Record{
		EmployeeName: emp.Name,
		Date:         date,
		Status:       attendance.StatusPresent,
		EmployeeID:   emp.ID,
		CheckIn:      now.Format(attendance.TimeLayout),
	}
	records := append(append([]attendance.Record(nil), s.attendance...), rec)
	if err := s.attendanceStore.Save(ctx, records); err != nil {
		return attendance.Record{}, err
	}
	s.attendance = records
	return rec, nil
}

// Attendance lists an employee's records, optionally limited to one month.
func (s *Session) Attendance(employeeID int, month string) ([]attendance.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if month != "" {
		if err := payroll.ValidateMonth(month); err != nil {
			return nil, err
		}
	}
	emp, err := s.employee(employeeID)
	if err != nil {
		return nil, err
	}
	return attendance.ForEmployee(s.attendance, emp, month), nil
}

func (s *Session) RequestLeave(ctx context.Context, employeeID, days int, reason string) (leave.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	emp, err := s.employee(employeeID)
	if err != nil {
		return leave.Request{}, err
	}
	req, err := leave.NewRequest(0, emp, days, reason, s.now())
	if err != nil {
		return leave.Request{}, err
	}
	req.ID = s.leaveStore.NextID()
	leaves := append(append(leave.Requests(nil), s.leaves...), req)
	if err := s.leaveStore.Save(ctx, leaves); err != nil {
		return leave.Request{}, err
	}
	s.leaves = leaves
	details := fmt.Sprintf("%d days requested: %s", req.DaysRequested, req.Reason)
	if err := s.appendHistory(ctx, audit.Record(emp, audit.ActionLeaveRequest, details, s.now())); err != nil {
		return req, err
	}
	return req, nil
}

// Leaves lists the requests of one employee, or every request when
// employeeID is core.NoEmployeeID. status filters when non-empty.
func (s *Session) Leaves(employeeID int, status string) (leave.Requests, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append(leave.Requests(nil), s.leaves...)
	if employeeID != core.NoEmployeeID {
		emp, err := s.employee(employeeID)
		if err != nil {
			return nil, err
		}
		out = out.ForEmployee(emp)
	}
	if status != "" {
		out = out.WithStatus(status)
	}
	return out, nil
}

// DecideLeave approves or rejects a pending request. Approval needs enough
// leave balance and debits it.
func (s *Session) DecideLeave(ctx context.Context, id int, approve bool) (leave.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, idx, ok := s.leaves.Find(id)
	if !ok {
		return leave.Request{}, fmt.Errorf("%w: %d", leave.ErrRequestNotFound, id)
	}
	emp, empIdx, found := s.requestOwner(req)

	if !approve {
		rejected, err := leave.Reject(req)
		if err != nil {
			return req, err
		}
		if err := s.saveLeave(ctx, idx, rejected); err != nil {
			return req, err
		}
		if found {
			details := fmt.Sprintf("%d days rejected", rejected.DaysRequested)
			if err := s.appendHistory(ctx, audit.Record(emp, audit.ActionLeaveRejected, details, s.now())); err != nil {
				return rejected, err
			}
		}
		return rejected, nil
	}

	if !found {
		return req, fmt.Errorf("%w: owner of leave request %d", core.ErrEmployeeNotFound, id)
	}
	if !s.employeesLoaded {
		return req, ErrEmployeesUnavailable
	}
	approved, debited, err := leave.Approve(req, emp)
	if err != nil {
		return req, err
	}
	employees := append([]core.Employee(nil), s.employees...)
	employees[empIdx] = debited
	if err := s.employeeStore.Save(ctx, employees); err != nil {
		return req, err
	}
	s.employees = employees
	if err := s.saveLeave(ctx, idx, approved); err != nil {
		return req, err
	}
	details := fmt.Sprintf("%d days approved. New balance: %d", approved.DaysRequested, debited.LeaveBalance)
	if err := s.appendHistory(ctx, audit.Record(debited, audit.ActionLeaveApproved, details, s.now())); err != nil {
		return approved, err
	}
	return approved, nil
}

func (s *Session) requestOwner(req leave.Request) (core.Employee, int, bool) {
	for i, emp := range s.employees {
		if emp.Owns(req.EmployeeID) {
			return emp, i, true
		}
	}
	return core.Employee{}, -1, false
}

func (s *Session) saveLeave(ctx context.Context, idx int, req leave.Request) error {
	leaves := append(leave.Requests(nil), s.leaves...)
	leaves[idx] = req
	if err := s.leaveStore.Save(ctx, leaves); err != nil {
		return err
	}
	s.leaves = leaves
	return nil
}

func (s *Session) History(employeeID int, filter audit.Filter) ([]audit.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	emp, err := s.employee(employeeID)
	if err != nil {
		return nil, err
	}
	return audit.List(s.history, emp, filter), nil
}

func (s *Session) appendHistory(ctx context.Context, entry audit.Entry) error {
	history := append(append([]audit.Entry(nil), s.history...), entry)
	if err := s.historyStore.Save(ctx, history); err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	s.history = history
	return nil
}

func (s *Session) ComputePayroll(ctx context.Context, employeeID int, month string, daysWorked int, bonus float64, resolve payroll.Resolver) (payroll.Record, payroll.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := payroll.ValidateMonth(month); err != nil {
		return payroll.Record{}, "", err
	}
	emp, err := s.employee(employeeID)
	if err != nil {
		return payroll.Record{}, "", err
	}
	return s.payroll.ComputeForEmployee(ctx, emp, month, daysWorked, bonus, s.leaves, resolve)
}

func (s *Session) GenerateMonthlyPayroll(ctx context.Context, month string, confirm payroll.Confirmer) (payroll.BatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := payroll.ValidateMonth(month); err != nil {
		return payroll.BatchResult{Month: month}, err
	}
	if !s.employeesLoaded {
		return payroll.BatchResult{Month: month}, ErrEmployeesUnavailable
	}
	return s.payroll.GenerateMonth(ctx, s.employees, month, s.leaves, confirm)
}

// PayrollQuery selects payroll records. Zero values select everything.
type PayrollQuery struct {
	EmployeeID int
	Month      string
	From       string
	To         string
}

func (s *Session) PayrollRecords(q PayrollQuery) ([]payroll.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var (
		records []payroll.Record
		err     error
	)
	switch {
	case q.Month != "":
		if err = payroll.ValidateMonth(q.Month); err != nil {
			return nil, err
		}
		records = s.payroll.ListByMonth(q.Month)
	case q.From != "" || q.To != "":
		from, to := q.From, q.To
		if from == "" {
			from = "0000-01"
		}
		if to == "" {
			to = "9999-12"
		}
		if records, err = s.payroll.ListRange(from, to); err != nil {
			return nil, err
		}
	default:
		records = s.payroll.Records()
	}
	if q.EmployeeID == core.NoEmployeeID || q.EmployeeID == 0 {
		return records, nil
	}
	var out []payroll.Record
	for _, r := range records {
		if r.EmployeeID == q.EmployeeID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Session) MonthSummary(month string) (payroll.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := payroll.ValidateMonth(month); err != nil {
		return payroll.Summary{}, err
	}
	return payroll.Summarize(month, s.payroll.ListByMonth(month)), nil
}

func (s *Session) payslipData(employeeID int, month string) (core.Employee, payroll.Record, error) {
	if err := payroll.ValidateMonth(month); err != nil {
		return core.Employee{}, payroll.Record{}, err
	}
	emp, err := s.employee(employeeID)
	if err != nil {
		return core.Employee{}, payroll.Record{}, err
	}
	rec, ok := s.payroll.Find(employeeID, month)
	if !ok {
		return core.Employee{}, payroll.Record{}, fmt.Errorf("%w: employee %d, %s", payroll.ErrRecordNotFound, employeeID, month)
	}
	return emp, rec, nil
}

// WritePayslip stores the PDF payslip for one record and returns its path.
func (s *Session) WritePayslip(employeeID int, month string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	emp, rec, err := s.payslipData(employeeID, month)
	if err != nil {
		return "", err
	}
	return s.payslips.Write(emp, rec)
}

// RenderPayslip streams the PDF payslip for one record to w.
func (s *Session) RenderPayslip(w io.Writer, employeeID int, month string) error {
	s.mu.Lock()
	emp, rec, err := s.payslipData(employeeID, month)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return payroll.RenderPayslip(w, emp, rec)
}

// ArchiveMonth mirrors one month of records into the archive database.
func (s *Session) ArchiveMonth(ctx context.Context, month string) (int, error) {
	if s.archive == nil {
		return 0, ErrArchiveDisabled
	}
	s.mu.Lock()
	if err := payroll.ValidateMonth(month); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	records := s.payroll.ListByMonth(month)
	s.mu.Unlock()
	if err := s.archive.EnsureSchema(ctx); err != nil {
		return 0, err
	}
	return s.archive.MirrorMonth(ctx, month, records)
}
