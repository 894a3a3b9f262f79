package payroll

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"smarthr/internal/platform/crypto"
)

func TestSummarize(t *testing.T) {
	records := []Record{
		{EmployeeID: 1, Month: "2024-03", BaseSalary: 0.1, NetPay: 0.1},
		{EmployeeID: 2, Month: "2024-03", BaseSalary: 0.2, Bonus: 10, NetPay: 10.2, Superannuation: 0.023},
		{EmployeeID: 3, Month: "2024-04", BaseSalary: 1000, NetPay: 1000},
	}
	s := Summarize("2024-03", records)
	if s.Employees != 2 {
		t.Fatalf("expected 2 employees, got %d", s.Employees)
	}
	if s.TotalBase.String() != "0.3" {
		t.Fatalf("expected exact decimal base 0.3, got %s", s.TotalBase)
	}
	if s.TotalNet.StringFixed(2) != "10.30" || s.TotalSuperannuation.StringFixed(2) != "0.02" {
		t.Fatalf("unexpected totals %+v", s)
	}
}

func TestFormat(t *testing.T) {
	rec := Record{EmployeeID: 7, Month: "2024-03", DaysWorked: 18, DaysOnLeave: 2, BaseSalary: 5000, InsuranceDeduction: 250, TaxDeduction: 950, NetPay: 3800, Superannuation: 575}
	want := "Payroll for Employee 0007 - 2024-03\n" +
		"Days Worked: 18, Days on Leave: 2\n" +
		"Base Salary: $5000.00\n" +
		"Bonus: $0.00\n" +
		"Insurance Deduction: $250.00\n" +
		"Tax Deduction: $950.00\n" +
		"Superannuation: $575.00\n" +
		"Net Pay: $3800.00"
	if got := Format(rec); got != want {
		t.Fatalf("unexpected payslip text:\n%s", got)
	}
}

func TestRenderPayslip(t *testing.T) {
	var buf bytes.Buffer
	rec, err := Compute(Input{Employee: exampleEmployee(), Month: "2024-03", DaysWorked: 18, DaysOnLeave: 2})
	if err != nil {
		t.Fatal(err)
	}
	if err := RenderPayslip(&buf, exampleEmployee(), rec); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected PDF output, got %q", buf.Bytes()[:min(buf.Len(), 8)])
	}
}

func TestPayslipWriterEncryptsWhenConfigured(t *testing.T) {
	emp := exampleEmployee()
	rec, _ := Compute(Input{Employee: emp, Month: "2024-03", DaysWorked: 20})

	plain := PayslipWriter{Dir: t.TempDir()}
	path, err := plain.Write(emp, rec)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "payslip-0001-2024-03.pdf" {
		t.Fatalf("unexpected path %s", path)
	}

	svc, err := crypto.New("payslip-passphrase")
	if err != nil {
		t.Fatal(err)
	}
	sealed := PayslipWriter{Dir: t.TempDir(), Crypto: svc}
	path, err = sealed.Write(emp, rec)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(path, ".pdf.enc") {
		t.Fatalf("expected encrypted payslip, got %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	opened, err := svc.Open(data)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.HasPrefix(opened, []byte("%PDF")) {
		t.Fatal("expected decrypted payslip to be a PDF")
	}
}
