package session

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"smarthr/internal/domain/attendance"
	"smarthr/internal/domain/audit"
	"smarthr/internal/domain/auth"
	"smarthr/internal/domain/core"
	"smarthr/internal/domain/leave"
	"smarthr/internal/domain/payroll"
)

var fixedNow = time.Date(2024, 3, 4, 9, 5, 0, 0, time.UTC)

func newSession(t *testing.T, dir string) *Session {
	t.Helper()
	s := New(dir, WithClock(func() time.Time { return fixedNow }))
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return s
}

func mustAddEmployee(t *testing.T, s *Session, name string, salary float64) core.Employee {
	t.Helper()
	emp, err := s.AddEmployee(context.Background(), core.NewEmployee(0, name, "Engineer", "R&D", salary))
	if err != nil {
		t.Fatalf("add employee: %v", err)
	}
	return emp
}

func TestLoginWithBootstrappedAdmin(t *testing.T) {
	s := newSession(t, t.TempDir())
	user, err := s.Login("admin", "admin")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Role != auth.RoleAdmin || user.HasEmployee() {
		t.Fatalf("unexpected admin %+v", user)
	}
	if _, err := s.Login("admin", "nope"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestEmployeeIDsSurviveRestart(t *testing.T) {
	dir := t.TempDir()
	s := newSession(t, dir)
	a := mustAddEmployee(t, s, "Alice", 60000)
	b := mustAddEmployee(t, s, "Bob", 50000)
	if _, err := s.RemoveEmployee(context.Background(), b.ID, true); err != nil {
		t.Fatal(err)
	}

	restarted := newSession(t, dir)
	c := mustAddEmployee(t, restarted, "Carol", 40000)
	if c.ID <= a.ID {
		t.Fatalf("expected new id above %d, got %d", a.ID, c.ID)
	}
}

func TestAddUserIntegrity(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, t.TempDir())
	alice := mustAddEmployee(t, s, "Alice", 60000)

	if _, err := s.AddUser(ctx, auth.User{Username: "alice", Password: "pw", Role: "employee", EmployeeID: alice.ID}); err != nil {
		t.Fatalf("add user: %v", err)
	}
	cases := []struct {
		name string
		user auth.User
		want error
	}{
		{"duplicate username", auth.User{Username: "alice", Password: "pw", Role: "HR", EmployeeID: auth.NoEmployee}, auth.ErrDuplicateUsername},
		{"unknown employee", auth.User{Username: "ghost", Password: "pw", Role: "Employee", EmployeeID: 99}, core.ErrEmployeeNotFound},
		{"second account", auth.User{Username: "alice2", Password: "pw", Role: "Employee", EmployeeID: alice.ID}, auth.ErrEmployeeHasAccount},
	}
	for _, tc := range cases {
		if _, err := s.AddUser(ctx, tc.user); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
	if n := len(s.Users()); n != 2 {
		t.Fatalf("expected admin and alice only, got %d users", n)
	}
}

func TestRemoveEmployeeCascades(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := newSession(t, dir)
	alice := mustAddEmployee(t, s, "Alice", 60000)
	bob := mustAddEmployee(t, s, "Bob", 48000)

	for _, emp := range []core.Employee{alice, bob} {
		if _, err := s.AddUser(ctx, auth.User{Username: emp.Name, Password: "pw", Role: auth.RoleEmployee, EmployeeID: emp.ID}); err != nil {
			t.Fatal(err)
		}
		if _, err := s.CheckIn(ctx, emp.ID); err != nil {
			t.Fatal(err)
		}
		if _, err := s.RequestLeave(ctx, emp.ID, 1, "appointment"); err != nil {
			t.Fatal(err)
		}
		if _, _, err := s.ComputePayroll(ctx, emp.ID, "2024-03", 20, 0, nil); err != nil {
			t.Fatal(err)
		}
	}
	legacy := "Alice|2024-02-01|Present\nBob|2024-02-01|Present\n"
	f, err := os.OpenFile(filepath.Join(dir, attendance.FileName), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(legacy); err != nil {
		t.Fatal(err)
	}
	f.Close()
	s = newSession(t, dir)

	if _, err := s.RemoveEmployee(ctx, alice.ID, false); !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("expected ErrConfirmationRequired, got %v", err)
	}
	if _, err := s.Employee(alice.ID); err != nil {
		t.Fatal("expected unconfirmed removal to keep the employee")
	}

	removal, err := s.RemoveEmployee(ctx, alice.ID, true)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if removal.Users != 1 || removal.Leaves != 1 || removal.Attendance != 2 || removal.Payroll != 1 || removal.History < 2 {
		t.Fatalf("unexpected removal counts %+v", removal)
	}

	reloaded := newSession(t, dir)
	if _, err := reloaded.Employee(alice.ID); !errors.Is(err, core.ErrEmployeeNotFound) {
		t.Fatalf("expected alice to be gone, got %v", err)
	}
	for _, u := range reloaded.Users() {
		if u.EmployeeID == alice.ID {
			t.Fatalf("user %s still references alice", u.Username)
		}
	}
	if n := len(reloaded.Users()); n != 2 {
		t.Fatalf("expected admin and bob accounts, got %d", n)
	}
	all, _ := reloaded.Leaves(core.NoEmployeeID, "")
	if len(all) != 1 || all[0].EmployeeID != bob.ID {
		t.Fatalf("unexpected leaves %+v", all)
	}
	if recs, _ := reloaded.Attendance(bob.ID, ""); len(recs) != 2 {
		t.Fatalf("expected bob's attendance untouched, got %+v", recs)
	}
	records, _ := reloaded.PayrollRecords(PayrollQuery{})
	if len(records) != 1 || records[0].EmployeeID != bob.ID {
		t.Fatalf("unexpected payroll records %+v", records)
	}
	if hist, _ := reloaded.History(bob.ID, audit.Filter{}); len(hist) < 2 {
		t.Fatalf("expected bob's history untouched, got %+v", hist)
	}
}

func appendLines(t *testing.T, path, lines string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.WriteString(lines); err != nil {
		t.Fatal(err)
	}
}

func TestRowsWithoutEmployeeIDBindOnlyToUniqueNames(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := newSession(t, dir)
	alice := mustAddEmployee(t, s, "Alice", 60000)
	otherAlice := mustAddEmployee(t, s, "Alice", 60000)
	bob := mustAddEmployee(t, s, "Bob", 48000)

	appendLines(t, filepath.Join(dir, attendance.FileName), "Alice|2024-02-01|Present\nBob|2024-02-01|Present\n")
	appendLines(t, filepath.Join(dir, leave.FileName), "50|Alice|2|Trip|Approved|2024-03-05\n51|Bob|1|Dentist|Approved|2024-03-06\n")
	s = newSession(t, dir)

	if recs, _ := s.Attendance(alice.ID, ""); len(recs) != 0 {
		t.Fatalf("expected shared-name row to stay unbound, got %+v", recs)
	}
	if recs, _ := s.Attendance(bob.ID, ""); len(recs) != 1 {
		t.Fatalf("expected bob's row to bind by name, got %+v", recs)
	}
	rec, _, err := s.ComputePayroll(ctx, alice.ID, "2024-03", 18, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rec.DaysOnLeave != 0 {
		t.Fatalf("expected shared-name leave not to count, got %d days", rec.DaysOnLeave)
	}
	rec, _, err = s.ComputePayroll(ctx, bob.ID, "2024-03", 19, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rec.DaysOnLeave != 1 {
		t.Fatalf("expected bob's bound leave to count, got %d days", rec.DaysOnLeave)
	}

	removal, err := s.RemoveEmployee(ctx, alice.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if removal.Attendance != 0 || removal.Leaves != 0 {
		t.Fatalf("expected unbound rows to survive, got %+v", removal)
	}
	if _, err := s.Employee(otherAlice.ID); err != nil {
		t.Fatalf("expected the other Alice to remain, got %v", err)
	}
	removal, err = s.RemoveEmployee(ctx, bob.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if removal.Attendance != 1 || removal.Leaves != 1 {
		t.Fatalf("expected bob's bound rows removed, got %+v", removal)
	}

	reloaded := newSession(t, dir)
	all, _ := reloaded.Leaves(core.NoEmployeeID, "")
	if len(all) != 1 || all[0].ID != 50 {
		t.Fatalf("expected only the unbound Alice request to remain, got %+v", all)
	}
	if all[0].EmployeeID != otherAlice.ID {
		t.Fatalf("expected the request to bind to the only Alice left, got %d", all[0].EmployeeID)
	}
}

func TestMalformedEmployeeFileBlocksEmployeeWrites(t *testing.T) {
	dir := t.TempDir()
	content := []byte("1,Alice,Engineer,R&D,not-a-number,20,20,0.05,0.2,false,false,false,false\n")
	path := filepath.Join(dir, core.FileName)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	payrollContent := []byte("1,2024-03,18,2,5000,0,250,950,3800,575\n")
	payrollPath := filepath.Join(dir, payroll.FileName)
	if err := os.WriteFile(payrollPath, payrollContent, 0o644); err != nil {
		t.Fatal(err)
	}
	s := New(dir)
	err := s.Load(context.Background())
	if !errors.Is(err, core.ErrMalformedEmployee) {
		t.Fatalf("expected ErrMalformedEmployee, got %v", err)
	}
	if _, err := s.Login("admin", "admin"); err != nil {
		t.Fatalf("expected other collections to load, got %v", err)
	}
	if ready := s.EmployeesReady(); !errors.Is(ready, ErrEmployeesUnavailable) || !errors.Is(ready, core.ErrMalformedEmployee) {
		t.Fatalf("expected employee load failure to be reported, got %v", ready)
	}
	if !errors.Is(s.LoadError(), core.ErrMalformedEmployee) {
		t.Fatalf("expected load error to be kept, got %v", s.LoadError())
	}
	if _, err := s.AddEmployee(context.Background(), core.NewEmployee(0, "Bob", "Analyst", "Ops", 1)); !errors.Is(err, ErrEmployeesUnavailable) {
		t.Fatalf("expected ErrEmployeesUnavailable, got %v", err)
	}
	after, _ := os.ReadFile(path)
	if !bytes.Equal(content, after) {
		t.Fatal("expected employee file to be left untouched")
	}

	confirm := func(string, int) bool { return true }
	if _, err := s.GenerateMonthlyPayroll(context.Background(), "2024-03", confirm); !errors.Is(err, ErrEmployeesUnavailable) {
		t.Fatalf("expected ErrEmployeesUnavailable from batch generation, got %v", err)
	}
	payrollAfter, _ := os.ReadFile(payrollPath)
	if !bytes.Equal(payrollContent, payrollAfter) {
		t.Fatalf("expected payroll file to be left untouched, got %q", payrollAfter)
	}
}

func TestCheckInOncePerDay(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, t.TempDir())
	alice := mustAddEmployee(t, s, "Alice", 60000)
	rec, err := s.CheckIn(ctx, alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Date != "2024-03-04" || rec.CheckIn != "09:05" || rec.EmployeeID != alice.ID {
		t.Fatalf("unexpected check-in %+v", rec)
	}
	if _, err := s.CheckIn(ctx, alice.ID); !errors.Is(err, attendance.ErrAlreadyCheckedIn) {
		t.Fatalf("expected ErrAlreadyCheckedIn, got %v", err)
	}
	if _, err := s.Attendance(alice.ID, "2024/03"); !errors.Is(err, payroll.ErrInvalidMonth) {
		t.Fatalf("expected month validation, got %v", err)
	}
}

func TestLeaveApprovalFlow(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := newSession(t, dir)
	alice := mustAddEmployee(t, s, "Alice", 60000)

	big, err := s.RequestLeave(ctx, alice.ID, 25, "sabbatical")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.DecideLeave(ctx, big.ID, true); !errors.Is(err, leave.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	pending, _ := s.Leaves(alice.ID, leave.StatusPending)
	if len(pending) != 1 {
		t.Fatalf("expected request to stay pending, got %+v", pending)
	}

	small, err := s.RequestLeave(ctx, alice.ID, 2, "family, travel")
	if err != nil {
		t.Fatal(err)
	}
	if small.ID <= big.ID {
		t.Fatalf("expected increasing leave ids, got %d then %d", big.ID, small.ID)
	}
	approved, err := s.DecideLeave(ctx, small.ID, true)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != leave.StatusApproved {
		t.Fatalf("expected Approved, got %s", approved.Status)
	}
	if _, err := s.DecideLeave(ctx, small.ID, false); !errors.Is(err, leave.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if _, err := s.DecideLeave(ctx, 999, true); !errors.Is(err, leave.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
	if _, err := s.DecideLeave(ctx, big.ID, false); err != nil {
		t.Fatalf("reject: %v", err)
	}

	reloaded := newSession(t, dir)
	emp, _ := reloaded.Employee(alice.ID)
	if emp.LeaveBalance != 18 {
		t.Fatalf("expected balance 18, got %d", emp.LeaveBalance)
	}
	approvals, _ := reloaded.History(alice.ID, audit.Filter{Action: audit.ActionLeaveApproved})
	if len(approvals) != 1 || approvals[0].Details != "2 days approved. New balance: 18" {
		t.Fatalf("unexpected approval history %+v", approvals)
	}
	rejections, _ := reloaded.History(alice.ID, audit.Filter{Action: audit.ActionLeaveRejected})
	if len(rejections) != 1 {
		t.Fatalf("expected one rejection entry, got %+v", rejections)
	}

	rec, _, err := reloaded.ComputePayroll(ctx, alice.ID, "2024-03", 18, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rec.DaysOnLeave != 2 {
		t.Fatalf("expected approved leave to be counted, got %+v", rec)
	}
}

func TestGenerateMonthlyPayrollThroughSession(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, t.TempDir())
	alice := mustAddEmployee(t, s, "Alice", 60000)
	mustAddEmployee(t, s, "Bob", 48000)
	req, _ := s.RequestLeave(ctx, alice.ID, 3, "rest")
	if _, err := s.DecideLeave(ctx, req.ID, true); err != nil {
		t.Fatal(err)
	}

	result, err := s.GenerateMonthlyPayroll(ctx, "2024-03", nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Generated != 2 {
		t.Fatalf("expected 2 generated, got %+v", result)
	}
	recs, _ := s.PayrollRecords(PayrollQuery{EmployeeID: alice.ID, Month: "2024-03"})
	if len(recs) != 1 || recs[0].DaysWorked != 17 || recs[0].DaysOnLeave != 3 {
		t.Fatalf("unexpected record %+v", recs)
	}
	if _, err := s.GenerateMonthlyPayroll(ctx, "2024-03", nil); !errors.Is(err, payroll.ErrCancelled) {
		t.Fatalf("expected regeneration without confirmation to be cancelled, got %v", err)
	}
	summary, err := s.MonthSummary("2024-03")
	if err != nil || summary.Employees != 2 {
		t.Fatalf("unexpected summary %+v %v", summary, err)
	}
	if _, err := s.WritePayslip(alice.ID, "2024-03"); err != nil {
		t.Fatalf("write payslip: %v", err)
	}
	if _, err := s.WritePayslip(alice.ID, "2024-04"); !errors.Is(err, payroll.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if _, err := s.ArchiveMonth(ctx, "2024-03"); !errors.Is(err, ErrArchiveDisabled) {
		t.Fatalf("expected ErrArchiveDisabled, got %v", err)
	}
}

func TestEditEmployeeRecordsHistory(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, t.TempDir())
	alice := mustAddEmployee(t, s, "Alice", 60000)
	alice.Salary = 65000
	alice.HasHealthInsurance = true
	if _, err := s.EditEmployee(ctx, alice); err != nil {
		t.Fatal(err)
	}
	updates, _ := s.History(alice.ID, audit.Filter{Action: audit.ActionUpdate})
	if len(updates) != 1 || updates[0].Details != "Updated salary 60000 -> 65000; health false -> true" {
		t.Fatalf("unexpected update history %+v", updates)
	}
	alice.ExpectedMonthlyWorkingDays = 0
	if _, err := s.EditEmployee(ctx, alice); !errors.Is(err, core.ErrInvalidEmployee) {
		t.Fatalf("expected ErrInvalidEmployee, got %v", err)
	}
}
