package payroll

import "math"

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-6*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func floatPtr(v float64) *float64 {
	return &v
}
