package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestQuantizeHalfUp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0.00"},
		{"9.9", "9.90"},
		{"10.005", "10.01"},
		{"10.004", "10.00"},
		{"2.675", "2.68"},
		{"1290", "1290.00"},
		{"-1.005", "-1.01"},
	}

	for _, tt := range tests {
		got := Quantize(decimal.RequireFromString(tt.in))
		assert.Equal(t, tt.want, got.StringFixed(2), "quantize(%s)", tt.in)
	}
}

func TestQuantizeIdempotent(t *testing.T) {
	values := []string{"0", "0.005", "99.999", "259.90", "1234.5678", "-7.125"}

	for _, v := range values {
		d := decimal.RequireFromString(v)
		once := Quantize(d)
		twice := Quantize(once)
		assert.True(t, once.Equal(twice), "quantize(quantize(%s)) != quantize(%s)", v, v)
	}
}

func TestCents(t *testing.T) {
	assert.Equal(t, int64(9990), Cents(decimal.RequireFromString("99.90")))
	assert.Equal(t, int64(1), Cents(decimal.RequireFromString("0.01")))
	assert.Equal(t, int64(129000), Cents(decimal.RequireFromString("1290")))
	assert.Equal(t, int64(990), Cents(decimal.RequireFromString("9.9")))
}

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "R$ 0,00"},
		{"9.9", "R$ 9,90"},
		{"299.9", "R$ 299,90"},
		{"1234.56", "R$ 1.234,56"},
		{"1234567.8", "R$ 1.234.567,80"},
		{"-1234.5", "R$ -1.234,50"},
	}

	for _, tt := range tests {
		got := FormatBRL(decimal.RequireFromString(tt.in))
		assert.Equal(t, tt.want, got)
	}
}
