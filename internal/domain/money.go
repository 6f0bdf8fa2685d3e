package domain

import (
	"github.com/shopspring/decimal"
)

// Amounts are stored as int64 cents to avoid floating point drift in the
// ledger; decimal is used at the edges and for derived math.

var centsPerUnit = decimal.NewFromInt(100)

// CentsFromDecimal converts a currency amount to cents, truncating any
// sub-cent remainder.
func CentsFromDecimal(d decimal.Decimal) int64 {
	return d.Mul(centsPerUnit).IntPart()
}

// CentsToDecimal converts cents back to a currency amount.
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(centsPerUnit)
}

// CentsToFloat is for JSON responses, which carry plain numbers.
func CentsToFloat(cents int64) float64 {
	f, _ := CentsToDecimal(cents).Float64()
	return f
}

// ProfitCents computes principal*rate in cents, rounding down.
func ProfitCents(amountCents int64, rate float64) int64 {
	return decimal.NewFromInt(amountCents).Mul(decimal.NewFromFloat(rate)).IntPart()
}
