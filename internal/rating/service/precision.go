package service

import "github.com/shopspring/decimal"

const (
	// significantDigits is the working precision of the adjustment chain.
	significantDigits int32 = 8
	// guardPrecision is enough fractional digits to locate the leading digit of any quotient we produce.
	guardPrecision int32 = 32
)

// magnitude is the position of the leading digit: 3 for 152.2, 0 for 0.5, -1 for 0.05.
func magnitude(d decimal.Decimal) int32 {
	return int32(d.NumDigits()) + d.Exponent()
}

// divSignificant returns num / den rounded half away from zero to significantDigits significant digits.
// den must be non-zero.
func divSignificant(num, den decimal.Decimal) decimal.Decimal {
	if num.IsZero() {
		return decimal.Zero
	}
	q, _ := num.QuoRem(den, guardPrecision)
	if q.IsZero() {
		return num.DivRound(den, guardPrecision)
	}
	return num.DivRound(den, significantDigits-magnitude(q))
}
