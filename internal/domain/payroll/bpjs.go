package payroll

// DefaultBPJSRates returns the statutory contribution rates used when no
// settings have been stored.
func DefaultBPJSRates() BPJSRates {
	return BPJSRates{
		KesehatanEmployee: 1,
		KesehatanEmployer: 4,
		JHTEmployee:       2,
		JHTEmployer:       3.7,
		JPEmployee:        1,
		JPEmployer:        2,
	}
}

// CalculateBPJS splits contributions on grossSalary between employee and
// employer. Amounts are not rounded.
func CalculateBPJS(grossSalary float64, rates BPJSRates) BPJSCalculation {
	employee := BPJSBreakdown{
		Kesehatan: grossSalary * (rates.KesehatanEmployee / 100),
		JHT:       grossSalary * (rates.JHTEmployee / 100),
		JP:        grossSalary * (rates.JPEmployee / 100),
	}
	employee.Total = employee.Kesehatan + employee.JHT + employee.JP

	employer := BPJSBreakdown{
		Kesehatan: grossSalary * (rates.KesehatanEmployer / 100),
		JHT:       grossSalary * (rates.JHTEmployer / 100),
		JP:        grossSalary * (rates.JPEmployer / 100),
	}
	employer.Total = employer.Kesehatan + employer.JHT + employer.JP

	return BPJSCalculation{Employee: employee, Employer: employer}
}

func (r BPJSRates) Validate() error {
	for _, rate := range []float64{
		r.KesehatanEmployee, r.KesehatanEmployer,
		r.JHTEmployee, r.JHTEmployer,
		r.JPEmployee, r.JPEmployer,
	} {
		if rate < 0 || rate > 100 {
			return ErrRateOutOfRange
		}
	}
	return nil
}
