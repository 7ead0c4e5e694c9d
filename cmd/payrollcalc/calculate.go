package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"geoattend/internal/domain/payroll"
)

func calculateCmd() *cobra.Command {
	var inputPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate one payslip from a JSON input file",
		Long: `Read a calculation request (baseSalary, components, bpjsRates, ptkpStatus,
usePph21) and print the full breakdown. When bpjsRates or ptkpStatus is
omitted the configured defaults apply, falling back to the statutory rates
and TK/0.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := os.ReadFile(inputPath)
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			var in payroll.PreviewInput
			if err := json.Unmarshal(raw, &in); err != nil {
				return fmt.Errorf("failed to parse input: %w", err)
			}
			cfg, err := loadSettings(cfgFile)
			if err != nil {
				return err
			}
			if in.Rates == nil {
				in.Rates = &cfg.BPJS
			}

			// Rates are always supplied, so the service never reads a store.
			svc := payroll.NewService(nil, nil, payroll.Options{DefaultPTKPStatus: cfg.PTKPStatus})
			calc, err := svc.Preview(cmd.Context(), in)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(calc)
			}
			return printCalculation(cmd.OutOrStdout(), calc)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "path to the JSON input file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the calculation as JSON")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func printCalculation(out io.Writer, calc payroll.Calculation) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	rows := [][2]string{
		{"Base salary", payroll.FormatRupiah(calc.BaseSalary)},
	}
	for _, a := range calc.Allowances {
		rows = append(rows, [2]string{"  + " + a.Name, payroll.FormatRupiah(a.Amount)})
	}
	rows = append(rows,
		[2]string{"Gross salary", payroll.FormatRupiah(calc.GrossSalary)},
		[2]string{"Taxable income", payroll.FormatRupiah(calc.TaxableIncome)},
	)
	for _, d := range calc.Deductions {
		rows = append(rows, [2]string{"  - " + d.Name, payroll.FormatRupiah(d.Amount)})
	}
	rows = append(rows,
		[2]string{"Total deductions", payroll.FormatRupiah(calc.TotalDeductions)},
		[2]string{"BPJS employer", payroll.FormatRupiah(calc.BPJSEmployer.Total)},
		[2]string{"Net salary", payroll.FormatRupiah(calc.NetSalary)},
	)

	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%s\t%s\t\n", row[0], row[1]); err != nil {
			return err
		}
	}
	return w.Flush()
}
