package calc

import (
	"testing"

	"github.com/shopspring/decimal"
	profiledomain "github.com/smallbiznis/ratecard/internal/profile/domain"
	ratingdomain "github.com/smallbiznis/ratecard/internal/rating/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func pct(value string) decimal.NullDecimal {
	return decimal.NewNullDecimal(d(value))
}

func engineer() *profiledomain.Profile {
	return &profiledomain.Profile{
		AnnualSalary:       d("100000"),
		OverheadMultiplier: d("1.25"),
		FixedAnnualAmount:  d("5000"),
		EffectiveWorkHours: d("1800"),
		HoursPerDay:        d("7.5"),
	}
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.Truef(t, d(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}

func TestReferenceProfile(t *testing.T) {
	profile := engineer()

	annual, err := AnnualCost(profile)
	require.NoError(t, err)
	assertDecimal(t, "130000.00", annual)

	hourly, err := HourlyRate(profile)
	require.NoError(t, err)
	assert.Equal(t, "72.22", hourly.StringFixed(2))
	assertDecimal(t, "72.22", hourly)

	day, err := DayRate(profile)
	require.NoError(t, err)
	assertDecimal(t, "541.65", day)
}

func TestAnnualCostIsNotRounded(t *testing.T) {
	profile := &profiledomain.Profile{
		AnnualSalary:       d("1000.333"),
		OverheadMultiplier: d("1.1"),
		FixedAnnualAmount:  d("0.0007"),
		EffectiveWorkHours: d("1"),
	}

	annual, err := AnnualCost(profile)
	require.NoError(t, err)
	assertDecimal(t, "1100.367", annual)
	assert.Equal(t, int32(-4), annual.Exponent())
}

func TestHourlyRateRoundsHalfUp(t *testing.T) {
	cases := []struct {
		name     string
		salary   string
		hours    string
		expected string
	}{
		{name: "exact half rounds up", salary: "1000.05", hours: "10", expected: "100.01"},
		{name: "below half rounds down", salary: "1000.04", hours: "10", expected: "100.00"},
		{name: "repeating quotient", salary: "130000", hours: "1800", expected: "72.22"},
		{name: "two thirds", salary: "200", hours: "3", expected: "66.67"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			profile := &profiledomain.Profile{
				AnnualSalary:       d(tc.salary),
				OverheadMultiplier: d("1"),
				FixedAnnualAmount:  decimal.Zero,
				EffectiveWorkHours: d(tc.hours),
				HoursPerDay:        d("8"),
			}
			hourly, err := HourlyRate(profile)
			require.NoError(t, err)
			assertDecimal(t, tc.expected, hourly)
		})
	}
}

func TestDayRateUsesRoundedHourlyRate(t *testing.T) {
	profile := &profiledomain.Profile{
		AnnualSalary:       d("200"),
		OverheadMultiplier: d("1"),
		EffectiveWorkHours: d("3"),
		HoursPerDay:        d("3"),
	}

	day, err := DayRate(profile)
	require.NoError(t, err)
	// 66.67 * 3, not 200 / 3 * 3
	assertDecimal(t, "200.01", day)
}

func TestUtilizationBounds(t *testing.T) {
	profile := engineer()

	hourly, err := HourlyRate(profile)
	require.NoError(t, err)
	day, err := DayRate(profile)
	require.NoError(t, err)
	annual, err := AnnualCost(profile)
	require.NoError(t, err)

	full, err := UtilizedHourlyRate(profile, pct("100"))
	require.NoError(t, err)
	assert.True(t, full.Equal(hourly))

	fullDay, err := UtilizedDayRate(profile, pct("100"))
	require.NoError(t, err)
	assert.True(t, fullDay.Equal(day))

	fullAnnual, err := UtilizedAnnualCost(profile, pct("100"))
	require.NoError(t, err)
	assert.True(t, fullAnnual.Equal(annual))

	none, err := UtilizedHourlyRate(profile, pct("0"))
	require.NoError(t, err)
	assert.Equal(t, "0.00", none.StringFixed(2))
	assert.True(t, none.IsZero())
}

func TestUtilizedRates(t *testing.T) {
	profile := engineer()

	hourly, err := UtilizedHourlyRate(profile, pct("50"))
	require.NoError(t, err)
	assertDecimal(t, "36.11", hourly)

	day, err := UtilizedDayRate(profile, pct("50"))
	require.NoError(t, err)
	assertDecimal(t, "270.825", day)

	annual, err := UtilizedAnnualCost(profile, pct("50"))
	require.NoError(t, err)
	assertDecimal(t, "65000", annual)

	hours, err := UtilizedHours(profile, pct("25"))
	require.NoError(t, err)
	assertDecimal(t, "450", hours)

	perDay, err := UtilizedHoursPerDay(profile, pct("40"))
	require.NoError(t, err)
	assertDecimal(t, "3", perDay)
}

func TestPercentageFactorIsRoundedFirst(t *testing.T) {
	assertDecimal(t, "0.13", PercentageFactor(d("12.5")))
	assertDecimal(t, "0.33", PercentageFactor(d("33.335")))
	assertDecimal(t, "1", PercentageFactor(d("100")))

	hours, err := UtilizedHours(engineer(), pct("12.5"))
	require.NoError(t, err)
	// 1800 * 0.13 rather than 1800 * 0.125
	assertDecimal(t, "234", hours)
}

func TestInvalidArguments(t *testing.T) {
	_, err := HourlyRate(nil)
	assert.ErrorIs(t, err, ratingdomain.ErrMissingProfile)
	assert.ErrorIs(t, err, ratingdomain.ErrInvalidArgument)

	_, err = DayRate(nil)
	assert.ErrorIs(t, err, ratingdomain.ErrMissingProfile)

	_, err = AnnualCost(nil)
	assert.ErrorIs(t, err, ratingdomain.ErrMissingProfile)

	_, err = UtilizedHourlyRate(nil, pct("50"))
	assert.ErrorIs(t, err, ratingdomain.ErrMissingProfile)

	_, err = UtilizedDayRate(engineer(), decimal.NullDecimal{})
	assert.ErrorIs(t, err, ratingdomain.ErrMissingUtilization)
	assert.ErrorIs(t, err, ratingdomain.ErrInvalidArgument)

	_, err = UtilizedHours(engineer(), decimal.NullDecimal{})
	assert.ErrorIs(t, err, ratingdomain.ErrMissingUtilization)

	zeroHours := engineer()
	zeroHours.EffectiveWorkHours = decimal.Zero
	_, err = HourlyRate(zeroHours)
	assert.ErrorIs(t, err, ratingdomain.ErrInvalidWorkHours)
	assert.ErrorIs(t, err, ratingdomain.ErrInvalidArgument)

	// annual cost does not divide by work hours
	_, err = AnnualCost(zeroHours)
	assert.NoError(t, err)
}
