package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.Truef(t, d(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}

func TestDivSignificant(t *testing.T) {
	cases := []struct {
		num, den, want string
	}{
		{"2", "3", "0.66666667"},
		{"200000", "3", "66666.667"},
		{"1", "30000", "0.000033333333"},
		{"20", "100", "0.2"},
		{"120", "0.6", "200"},
		{"0", "7", "0"},
		{"-2", "3", "-0.66666667"},
	}
	for _, tc := range cases {
		t.Run(tc.num+"/"+tc.den, func(t *testing.T) {
			assertDecimal(t, tc.want, divSignificant(d(tc.num), d(tc.den)))
		})
	}
}

func TestMagnitude(t *testing.T) {
	assert.Equal(t, int32(3), magnitude(d("152.2")))
	assert.Equal(t, int32(0), magnitude(d("0.5")))
	assert.Equal(t, int32(-1), magnitude(d("0.05")))
	assert.Equal(t, int32(4), magnitude(d("1500")))
}

func TestApplyMarkup(t *testing.T) {
	assertDecimal(t, "120.00", ApplyMarkup(d("100.00"), d("20")))
	assertDecimal(t, "91.33", ApplyMarkup(d("76.11"), d("20")))
	assertDecimal(t, "112.50", ApplyMarkup(d("100"), d("12.5")))
	assertDecimal(t, "0.00", ApplyMarkup(d("0"), d("35")))
	// half-up on the third fractional digit
	assertDecimal(t, "10.13", ApplyMarkup(d("10.125"), d("0")))
	assertDecimal(t, "-10.13", ApplyMarkup(d("-10.125"), d("0")))
}

func TestApplyMarkupZeroIsRounding(t *testing.T) {
	for _, rate := range []string{"72.22", "541.65", "130000", "0.004", "0.005"} {
		assertDecimal(t, d(rate).Round(2).String(), ApplyMarkup(d(rate), decimal.Zero))
	}
}

func TestApplyGrossMargin(t *testing.T) {
	assertDecimal(t, "200.00", ApplyGrossMargin(d("120.00"), d("40")))
	assertDecimal(t, "152.22", ApplyGrossMargin(d("91.33"), d("40")))
	assertDecimal(t, "150.00", ApplyGrossMargin(d("100"), d("33.333333333")))
	assertDecimal(t, "72.22", ApplyGrossMargin(d("72.22"), decimal.Zero))
	assertDecimal(t, "50.00", ApplyGrossMargin(d("100"), d("-100")))
}

func TestApplyGrossMarginFullMargin(t *testing.T) {
	assert.True(t, IsFullGrossMargin(d("100")))
	assert.True(t, IsFullGrossMargin(d("100.0000")))
	assert.False(t, IsFullGrossMargin(d("99.5")))

	assertDecimal(t, "182.66", ApplyGrossMargin(d("91.33"), d("100")))
	assertDecimal(t, "0.00", ApplyGrossMargin(decimal.Zero, d("100")))
	assertDecimal(t, "2.01", FullGrossMargin(d("1.0025")))
}

func TestAdjustmentChain(t *testing.T) {
	markup := ApplyMarkup(d("76.11"), d("20"))
	assertDecimal(t, "91.33", markup)
	assertDecimal(t, "152.22", ApplyGrossMargin(markup, d("40")))
}
