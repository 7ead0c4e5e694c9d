package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"geoattend/internal/domain/payroll"
)

func taxCmd() *cobra.Command {
	var income float64
	var status string
	var annual bool

	cmd := &cobra.Command{
		Use:   "tax",
		Short: "Compute PPh 21 for a taxable income",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadSettings(cfgFile)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("status") {
				status = cfg.PTKPStatus
			}
			ptkp, err := payroll.ParsePTKPStatus(status)
			if err != nil {
				return err
			}
			if income < 0 {
				return payroll.ErrNegativeSalary
			}

			out := cmd.OutOrStdout()
			if annual {
				tax := payroll.CalculatePPh21Annual(income, ptkp)
				_, err = fmt.Fprintf(out, "PTKP %s (%s)\nAnnual PPh 21: %s\n",
					ptkp, payroll.FormatRupiah(payroll.PTKPFor(ptkp)), payroll.FormatRupiah(tax))
				return err
			}
			tax := payroll.CalculatePPh21Monthly(income, ptkp)
			_, err = fmt.Fprintf(out, "PTKP %s (%s)\nMonthly PPh 21: %s\n",
				ptkp, payroll.FormatRupiah(payroll.PTKPFor(ptkp)), payroll.FormatRupiah(tax))
			return err
		},
	}

	cmd.Flags().Float64Var(&income, "income", 0, "taxable income (monthly unless --annual)")
	cmd.Flags().StringVar(&status, "status", "", "PTKP status, e.g. TK/0 or K/2 (defaults to ptkp_status from config)")
	cmd.Flags().BoolVar(&annual, "annual", false, "treat --income as annual income")
	_ = cmd.MarkFlagRequired("income")
	return cmd
}
