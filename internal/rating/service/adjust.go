package service

import (
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/ratecard/internal/rating/calc"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
	// fullMarginMultiplier replaces the division when the gross margin factor is zero.
	fullMarginMultiplier = decimal.RequireFromString("2.00")
)

// ApplyMarkup returns rate * (1 + markup/100) rounded to two fractional digits.
func ApplyMarkup(rate, markup decimal.Decimal) decimal.Decimal {
	factor := one.Add(divSignificant(markup, hundred))
	return rate.Mul(factor).Round(calc.Scale)
}

// ApplyGrossMargin returns rate / (1 - grossMargin/100) rounded to two fractional digits.
// A factor of exactly zero falls back to FullGrossMargin.
func ApplyGrossMargin(rate, grossMargin decimal.Decimal) decimal.Decimal {
	factor := grossMarginFactor(grossMargin)
	if factor.IsZero() {
		return FullGrossMargin(rate)
	}
	return divSignificant(rate, factor).Round(calc.Scale)
}

// FullGrossMargin is the value used for a 100% gross margin: the rate doubled.
func FullGrossMargin(rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(fullMarginMultiplier).Round(calc.Scale)
}

// IsFullGrossMargin reports whether grossMargin takes the FullGrossMargin branch.
func IsFullGrossMargin(grossMargin decimal.Decimal) bool {
	return grossMarginFactor(grossMargin).IsZero()
}

func grossMarginFactor(grossMargin decimal.Decimal) decimal.Decimal {
	return one.Sub(divSignificant(grossMargin, hundred))
}
