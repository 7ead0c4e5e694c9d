package payroll

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// GeneratePayslipPDF renders the stored result as a PDF under the payslip
// directory and records its path. The file is encrypted when a data key is
// configured.
func (s *Service) GeneratePayslipPDF(ctx context.Context, runID, employeeID string) (string, error) {
	run, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return "", err
	}
	result, err := s.store.GetResult(ctx, runID, employeeID)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := renderPayslip(&buf, run, result); err != nil {
		return "", fmt.Errorf("render payslip: %w", err)
	}

	dir := filepath.Join(s.payslipDir, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(dir, employeeID+".pdf")
	data := buf.Bytes()
	if s.crypto.Configured() {
		data, err = s.crypto.Encrypt(data)
		if err != nil {
			return "", err
		}
		filePath += ".enc"
	}
	if err := writeFileAtomic(filePath, data); err != nil {
		return "", err
	}

	if err := s.store.UpdatePayslipPath(ctx, runID, employeeID, filePath); err != nil {
		return "", err
	}
	return filePath, nil
}

// writeFileAtomic writes data next to path and renames it into place, so
// concurrent readers see either the old file or the complete new one.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// PayslipPDF returns the decrypted payslip, generating it on first access.
func (s *Service) PayslipPDF(ctx context.Context, runID, employeeID string) ([]byte, error) {
	result, err := s.store.GetResult(ctx, runID, employeeID)
	if err != nil {
		return nil, err
	}
	path := result.PayslipPath
	if path == "" {
		path, err = s.GeneratePayslipPDF(ctx, runID, employeeID)
		if err != nil {
			return nil, err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".enc") {
		return s.crypto.Decrypt(data)
	}
	return data, nil
}

func renderPayslip(buf *bytes.Buffer, run Run, result Result) error {
	calc := result.Calculation

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, tr(fmt.Sprintf("Employee: %s", result.FullName)))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s", run.Period))
	pdf.Ln(10)

	section := func(title string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, title)
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
	}
	line := func(label string, amount float64) {
		pdf.CellFormat(110, 7, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, tr(FormatRupiah(amount)), "", 1, "R", false, 0, "")
	}

	section("Earnings")
	line("Base salary", calc.BaseSalary)
	for _, a := range calc.Allowances {
		label := a.Name
		if !a.Taxable {
			label += " (non-taxable)"
		}
		line(label, a.Amount)
	}
	line("Gross salary", calc.GrossSalary)
	pdf.Ln(4)

	section("Deductions")
	for _, d := range calc.Deductions {
		line(d.Name, d.Amount)
	}
	line("Total deductions", calc.TotalDeductions)
	pdf.Ln(4)

	section("Employer contributions")
	line("BPJS Kesehatan", calc.BPJSEmployer.Kesehatan)
	line("BPJS TK JHT", calc.BPJSEmployer.JHT)
	line("BPJS TK JP", calc.BPJSEmployer.JP)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	line("Net salary", calc.NetSalary)

	return pdf.Output(buf)
}
