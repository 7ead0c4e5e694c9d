package payroll

import (
	"context"
	"io"

	"github.com/xuri/excelize/v2"
)

const registerSheet = "Register"

var registerHeader = []any{
	"Employee ID", "Name", "Base Salary", "Allowances", "Gross Salary",
	"BPJS Employee", "BPJS Employer", "Taxable Income", "PPh 21", "Total Deductions", "Net Salary",
}

// ExportRegisterXLSX writes the payroll register of a run as an Excel
// workbook with a totals row.
func (s *Service) ExportRegisterXLSX(ctx context.Context, runID string, w io.Writer) error {
	results, err := s.ListResults(ctx, runID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", registerSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(registerSheet, "A1", &registerHeader); err != nil {
		return err
	}

	var totals [9]float64
	for i, r := range results {
		c := r.Calculation
		values := [9]float64{
			c.BaseSalary, c.TotalAllowances, c.GrossSalary,
			c.BPJSEmployee.Total, c.BPJSEmployer.Total, c.TaxableIncome,
			c.PPh21Monthly, c.TotalDeductions, c.NetSalary,
		}
		row := []any{r.EmployeeID, r.FullName}
		for j, v := range values {
			row = append(row, v)
			totals[j] += v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(registerSheet, cell, &row); err != nil {
			return err
		}
	}

	totalRow := []any{"", "Total"}
	for _, v := range totals {
		totalRow = append(totalRow, v)
	}
	cell, err := excelize.CoordinatesToCellName(1, len(results)+2)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(registerSheet, cell, &totalRow); err != nil {
		return err
	}

	style, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	if err != nil {
		return err
	}
	if err := f.SetColStyle(registerSheet, "C:K", style); err != nil {
		return err
	}

	return f.Write(w)
}
