package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Quantize rounds v to two decimal places with ties going away from zero,
// matching how every stored monetary value in the system is normalized.
func Quantize(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// Cents converts v to integer minor units (hundredths) after quantizing.
func Cents(v decimal.Decimal) int64 {
	return Quantize(v).Mul(decimal.NewFromInt(100)).IntPart()
}

// Float returns the quantized value as a float64 for wire formats that
// expect a plain decimal number.
func Float(v decimal.Decimal) float64 {
	f, _ := Quantize(v).Float64()
	return f
}

// FormatBRL renders v in Brazilian display format: "R$ 1.234,56".
func FormatBRL(v decimal.Decimal) string {
	s := Quantize(v).StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString("R$ ")
	if neg {
		b.WriteByte('-')
	}
	for i := 0; i < len(intPart); i++ {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteByte(intPart[i])
	}
	b.WriteByte(',')
	b.WriteString(fracPart)

	return b.String()
}
