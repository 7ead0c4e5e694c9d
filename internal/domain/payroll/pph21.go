package payroll

import (
	"fmt"
	"math"
	"strings"
)

// PTKP values for 2024, annual IDR.
var ptkpValues = map[string]float64{
	PTKPSingle0:  54_000_000,
	PTKPSingle1:  58_500_000,
	PTKPSingle2:  63_000_000,
	PTKPSingle3:  67_500_000,
	PTKPMarried0: 58_500_000,
	PTKPMarried1: 63_000_000,
	PTKPMarried2: 67_500_000,
	PTKPMarried3: 72_000_000,
}

// Annual PPh 21 brackets, ascending. The last limit is unbounded.
var taxBrackets = [...]TaxBracket{
	{Limit: 60_000_000, Rate: 5},
	{Limit: 250_000_000, Rate: 15},
	{Limit: 500_000_000, Rate: 25},
	{Limit: 5_000_000_000, Rate: 30},
	{Limit: math.Inf(1), Rate: 35},
}

func TaxBrackets() []TaxBracket {
	out := make([]TaxBracket, len(taxBrackets))
	copy(out, taxBrackets[:])
	return out
}

// PTKPFor returns the annual exemption for status, falling back to TK/0.
func PTKPFor(status string) float64 {
	if value, ok := ptkpValues[status]; ok {
		return value
	}
	return ptkpValues[DefaultPTKPStatus]
}

// ParsePTKPStatus normalizes raw ("k/1", " TK/0 ") and rejects unknown codes.
func ParsePTKPStatus(raw string) (string, error) {
	status := strings.ToUpper(strings.TrimSpace(raw))
	if _, ok := ptkpValues[status]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPTKPStatus, raw)
	}
	return status, nil
}

func CalculatePPh21Annual(annualGrossIncome float64, ptkpStatus string) float64 {
	taxableIncome := math.Max(0, annualGrossIncome-PTKPFor(ptkpStatus))

	tax := 0.0
	remaining := taxableIncome
	previousLimit := 0.0
	for _, bracket := range taxBrackets {
		slice := math.Min(remaining, bracket.Limit-previousLimit)
		tax += slice * (bracket.Rate / 100)
		remaining -= slice
		previousLimit = bracket.Limit
		if remaining <= 0 {
			break
		}
	}
	return tax
}

// CalculatePPh21Monthly annualizes the monthly income and pro-rates the
// annual tax back over twelve months.
func CalculatePPh21Monthly(monthlyGrossIncome float64, ptkpStatus string) float64 {
	return CalculatePPh21Annual(monthlyGrossIncome*12, ptkpStatus) / 12
}
