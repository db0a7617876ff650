// Package types provides value types shared by the domain packages.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
type Money = decimal.Decimal

// Percent is a percentage in the range 0..100, e.g. a commission rate.
type Percent = decimal.Decimal

var hundred = decimal.NewFromInt(100)

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// PercentOf returns amount * pct / 100.
func PercentOf(amount Money, pct Percent) Money {
	return amount.Mul(pct).Div(hundred)
}

// ValidPercent reports whether pct lies in 0..100.
func ValidPercent(pct Percent) bool {
	return !pct.IsNegative() && pct.LessThanOrEqual(hundred)
}

// LineTotal returns qty * unit price.
func LineTotal(qty Quantity, price Money) Money {
	return price.Mul(decimal.NewFromInt(int64(qty)))
}
