// Package types provides money and rate helpers plus billing period utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

const (
	// MoneyScale is the number of fractional digits kept for amounts.
	MoneyScale int32 = 2
	// RateScale is the number of fractional digits kept for derived per-unit rates.
	RateScale int32 = 6
)

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// RoundMoney rounds to 2 places, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// DivRate divides and rounds the quotient once, at rate scale.
func DivRate(num, den decimal.Decimal) decimal.Decimal {
	return num.DivRound(den, RateScale)
}

// Sum adds all values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// OrZero unwraps a nullable decimal, treating NULL as zero.
func OrZero(d decimal.NullDecimal) decimal.Decimal {
	if d.Valid {
		return d.Decimal
	}
	return decimal.Zero
}

// Nullable wraps a decimal as a non-null NullDecimal.
func Nullable(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(d)
}
