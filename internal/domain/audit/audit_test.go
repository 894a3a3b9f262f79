package audit

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"smarthr/internal/domain/core"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStoreGoldenAndLegacy(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	alice := core.NewEmployee(1, "Alice", "Engineer", "R&D", 1)
	entries := []Entry{
		Record(alice, ActionCreate, "Hired as Engineer, R&D", day(2024, 1, 15)),
		Record(alice, ActionLeaveApproved, "3 days approved. New balance: 17", day(2024, 3, 4)),
	}
	if err := NewStore(dir).Save(ctx, entries); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatal(err)
	}
	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "employee_histories", data)

	data = append(data, []byte("Bob|Update|Salary changed|2023-12-01\nBob|Update|bad date|yesterday\n")...)
	if err := os.WriteFile(filepath.Join(dir, FileName), data, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := NewStore(dir).Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %+v", got)
	}
	if got[0] != entries[0] {
		t.Fatalf("expected %+v, got %+v", entries[0], got[0])
	}
	if got[2].EmployeeID != core.NoEmployeeID || got[2].EmployeeName != "Bob" {
		t.Fatalf("unexpected legacy entry %+v", got[2])
	}
}

func TestListFiltersAndOrders(t *testing.T) {
	alice := core.NewEmployee(1, "Alice", "Engineer", "R&D", 1)
	entries := []Entry{
		{EmployeeName: "Alice", EmployeeID: 1, Action: ActionCreate, Date: day(2024, 1, 1)},
		{EmployeeName: "Alice", EmployeeID: 1, Action: ActionUpdate, Date: day(2024, 2, 1)},
		{EmployeeName: "alice", EmployeeID: core.NoEmployeeID, Action: ActionUpdate, Date: day(2024, 3, 1)},
		{EmployeeName: "Alice", EmployeeID: 2, Action: ActionUpdate, Date: day(2024, 4, 1)},
	}
	got := List(entries, alice, Filter{})
	if len(got) != 2 || !got[0].Date.Equal(day(2024, 2, 1)) {
		t.Fatalf("expected 2 entries newest first, got %+v", got)
	}
	got = List(entries, alice, Filter{Action: "update", From: day(2024, 1, 15)})
	if len(got) != 1 || !got[0].Date.Equal(day(2024, 2, 1)) {
		t.Fatalf("unexpected filtered entries %+v", got)
	}
	if rest := WithoutEmployee(entries, alice); len(rest) != 2 || rest[1].EmployeeID != 2 {
		t.Fatalf("unexpected remaining entries %+v", rest)
	}
}
