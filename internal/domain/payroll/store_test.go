package payroll

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
)

func sampleRecords() []Record {
	return []Record{
		{EmployeeID: 1, Month: "2024-03", DaysWorked: 18, DaysOnLeave: 2, BaseSalary: 5000, InsuranceDeduction: 250, TaxDeduction: 950, NetPay: 3800, Superannuation: 575},
		{EmployeeID: 2, Month: "2024-03", DaysWorked: 21, BaseSalary: 4020.83, Bonus: 150.5, TaxDeduction: 1206.249, NetPay: 2965.081},
	}
}

func TestAppendAndSaveAllAgree(t *testing.T) {
	ctx := context.Background()
	appendDir, rewriteDir := t.TempDir(), t.TempDir()
	records := sampleRecords()

	appendStore := NewStore(appendDir)
	for _, r := range records {
		if err := appendStore.Append(ctx, r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := NewStore(rewriteDir).SaveAll(ctx, records); err != nil {
		t.Fatalf("save all: %v", err)
	}

	appended, err := os.ReadFile(filepath.Join(appendDir, FileName))
	if err != nil {
		t.Fatal(err)
	}
	rewritten, err := os.ReadFile(filepath.Join(rewriteDir, FileName))
	if err != nil {
		t.Fatal(err)
	}
	if string(appended) != string(rewritten) {
		t.Fatalf("append and rewrite disagree:\n%s\n---\n%s", appended, rewritten)
	}
	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "payrolls", rewritten)

	got, err := appendStore.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(got))
	}
	for i := range records {
		if got[i] != records[i] {
			t.Fatalf("record %d: expected %+v, got %+v", i, records[i], got[i])
		}
	}
}

func TestLoadSkipsMalformedRows(t *testing.T) {
	dir := t.TempDir()
	content := "1,2024-03,18,2,5000,0,250,950,3800,575\n" +
		"2,2024-03,x,0,1,0,0,0,1,0\n" +
		"3,2024-03,20,0,1,0,0,0,1\n"
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := NewStore(dir).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].EmployeeID != 1 {
		t.Fatalf("expected only the well-formed row, got %+v", got)
	}
}
