package payroll

// ComponentAmount resolves the amount of c for one employee. A non-nil custom
// amount is returned as is; percentages apply to baseSalary only.
func ComponentAmount(c Component, baseSalary float64, custom *float64) float64 {
	if custom != nil {
		return *custom
	}
	if c.AmountType == AmountTypeFixed {
		return c.Amount
	}
	return baseSalary * (c.Amount / 100)
}

func CalculateEnhancedPayroll(baseSalary float64, components []ComponentInput, rates BPJSRates, ptkpStatus string, usePPh21 bool) Calculation {
	allowances := make([]AllowanceLine, 0, len(components))
	totalAllowances := 0.0
	taxableAllowances := 0.0
	for _, c := range components {
		if c.Type != ComponentTypeAllowance {
			continue
		}
		amount := ComponentAmount(c.Component, baseSalary, c.CustomAmount)
		allowances = append(allowances, AllowanceLine{Name: c.Name, Amount: amount, Taxable: c.Taxable})
		totalAllowances += amount
		if c.Taxable {
			taxableAllowances += amount
		}
	}

	grossSalary := baseSalary + totalAllowances
	bpjs := CalculateBPJS(grossSalary, rates)
	taxableIncome := baseSalary + taxableAllowances

	pph21Monthly := 0.0
	if usePPh21 {
		pph21Monthly = CalculatePPh21Monthly(taxableIncome, ptkpStatus)
	}

	deductions := make([]DeductionLine, 0, len(components)+4)
	for _, c := range components {
		if c.Type != ComponentTypeDeduction {
			continue
		}
		deductions = append(deductions, DeductionLine{
			Name:   c.Name,
			Amount: ComponentAmount(c.Component, baseSalary, c.CustomAmount),
		})
	}
	deductions = append(deductions,
		DeductionLine{Name: DeductionBPJSKesehatan, Amount: bpjs.Employee.Kesehatan},
		DeductionLine{Name: DeductionBPJSJHT, Amount: bpjs.Employee.JHT},
		DeductionLine{Name: DeductionBPJSJP, Amount: bpjs.Employee.JP},
	)
	if usePPh21 {
		deductions = append(deductions, DeductionLine{Name: DeductionPPh21, Amount: pph21Monthly})
	}

	totalDeductions := 0.0
	for _, d := range deductions {
		totalDeductions += d.Amount
	}

	return Calculation{
		BaseSalary:      baseSalary,
		Allowances:      allowances,
		TotalAllowances: totalAllowances,
		GrossSalary:     grossSalary,
		BPJSEmployee:    bpjs.Employee,
		BPJSEmployer:    bpjs.Employer,
		TaxableIncome:   taxableIncome,
		PPh21Monthly:    pph21Monthly,
		Deductions:      deductions,
		TotalDeductions: totalDeductions,
		NetSalary:       grossSalary - totalDeductions,
	}
}
