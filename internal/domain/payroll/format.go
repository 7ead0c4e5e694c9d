package payroll

import (
	"math"
	"strconv"
	"strings"
)

// FormatRupiah renders amount the way the id-ID locale formats IDR: no
// decimals, dot grouping and a non-breaking space after the symbol,
// e.g. "Rp\u00a09.680.000".
func FormatRupiah(amount float64) string {
	rounded := math.Round(amount)
	if rounded == 0 {
		rounded = 0 // drop negative zero
	}
	sign := ""
	if rounded < 0 {
		sign = "-"
		rounded = -rounded
	}
	return sign + "Rp\u00a0" + groupThousands(strconv.FormatFloat(rounded, 'f', 0, 64))
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var out strings.Builder
	for i, c := range digits {
		if i != 0 && (len(digits)-i)%3 == 0 {
			out.WriteByte('.')
		}
		out.WriteRune(c)
	}
	return out.String()
}
