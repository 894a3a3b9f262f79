package payroll

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"smarthr/internal/domain/core"
	"smarthr/internal/platform/crypto"
)

// RenderPayslip writes a one-page PDF payslip for rec to w.
func RenderPayslip(w io.Writer, emp core.Employee, rec Record) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Payslip %04d %s", emp.ID, rec.Month), false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %04d %s", emp.ID, emp.Name))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Position: %s, %s", emp.Position, emp.Department))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s", rec.Month))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Days worked: %d   Days on leave: %d", rec.DaysWorked, rec.DaysOnLeave))
	pdf.Ln(10)

	lines := []struct {
		label  string
		amount float64
	}{
		{"Base salary", rec.BaseSalary},
		{"Bonus", rec.Bonus},
		{"Insurance deduction", rec.InsuranceDeduction},
		{"Tax deduction", rec.TaxDeduction},
	}
	for _, line := range lines {
		pdf.CellFormat(80, 8, line.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, Money(line.amount), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(80, 8, "Net pay", "T", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, Money(rec.NetPay), "T", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.Ln(4)
	pdf.Cell(0, 8, fmt.Sprintf("Employer superannuation contribution: %s", Money(rec.Superannuation)))

	return pdf.Output(w)
}

// PayslipWriter stores rendered payslips under Dir, sealed with Crypto when
// a data key is configured.
type PayslipWriter struct {
	Dir    string
	Crypto *crypto.Service
}

func (p PayslipWriter) Write(emp core.Employee, rec Record) (string, error) {
	if err := os.MkdirAll(p.Dir, 0o750); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := RenderPayslip(&buf, emp, rec); err != nil {
		return "", fmt.Errorf("render payslip: %w", err)
	}

	filePath := filepath.Join(p.Dir, fmt.Sprintf("payslip-%04d-%s.pdf", emp.ID, rec.Month))
	data := buf.Bytes()
	if p.Crypto != nil && p.Crypto.Configured() {
		sealed, err := p.Crypto.Seal(data)
		if err != nil {
			return "", err
		}
		filePath += ".enc"
		data = sealed
	}
	if err := os.WriteFile(filePath, data, 0o600); err != nil {
		return "", err
	}
	return filePath, nil
}
