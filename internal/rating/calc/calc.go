// Package calc derives annual cost, hourly and day rates from a single profile's
// cost structure, optionally weighted by a utilization percentage.
//
// Rates are rounded to two fractional digits, half away from zero. Annual cost
// is never rounded. Utilization percentages are converted to a factor rounded
// to two digits before they are applied.
package calc

import (
	"github.com/shopspring/decimal"
	profiledomain "github.com/smallbiznis/ratecard/internal/profile/domain"
	ratingdomain "github.com/smallbiznis/ratecard/internal/rating/domain"
)

// Scale is the number of fractional digits kept on rates.
const Scale int32 = 2

var hundred = decimal.NewFromInt(100)

// AnnualCost returns annualSalary * overheadMultiplier + fixedAnnualAmount.
func AnnualCost(profile *profiledomain.Profile) (decimal.Decimal, error) {
	if profile == nil {
		return decimal.Zero, ratingdomain.ErrMissingProfile
	}
	return annualCost(profile), nil
}

// HourlyRate returns AnnualCost / effectiveWorkHours.
func HourlyRate(profile *profiledomain.Profile) (decimal.Decimal, error) {
	if profile == nil {
		return decimal.Zero, ratingdomain.ErrMissingProfile
	}
	return hourlyRate(profile)
}

// DayRate returns HourlyRate * hoursPerDay without re-rounding.
func DayRate(profile *profiledomain.Profile) (decimal.Decimal, error) {
	if profile == nil {
		return decimal.Zero, ratingdomain.ErrMissingProfile
	}
	hourly, err := hourlyRate(profile)
	if err != nil {
		return decimal.Zero, err
	}
	return hourly.Mul(profile.HoursPerDay), nil
}

func UtilizedAnnualCost(profile *profiledomain.Profile, utilization decimal.NullDecimal) (decimal.Decimal, error) {
	factor, err := utilizationFactor(profile, utilization)
	if err != nil {
		return decimal.Zero, err
	}
	return annualCost(profile).Mul(factor), nil
}

func UtilizedHourlyRate(profile *profiledomain.Profile, utilization decimal.NullDecimal) (decimal.Decimal, error) {
	factor, err := utilizationFactor(profile, utilization)
	if err != nil {
		return decimal.Zero, err
	}
	hourly, err := hourlyRate(profile)
	if err != nil {
		return decimal.Zero, err
	}
	return hourly.Mul(factor), nil
}

func UtilizedDayRate(profile *profiledomain.Profile, utilization decimal.NullDecimal) (decimal.Decimal, error) {
	factor, err := utilizationFactor(profile, utilization)
	if err != nil {
		return decimal.Zero, err
	}
	hourly, err := hourlyRate(profile)
	if err != nil {
		return decimal.Zero, err
	}
	return hourly.Mul(profile.HoursPerDay).Mul(factor), nil
}

// UtilizedHours returns the share of effectiveWorkHours allocated by the percentage.
func UtilizedHours(profile *profiledomain.Profile, utilization decimal.NullDecimal) (decimal.Decimal, error) {
	factor, err := utilizationFactor(profile, utilization)
	if err != nil {
		return decimal.Zero, err
	}
	return profile.EffectiveWorkHours.Mul(factor), nil
}

// UtilizedHoursPerDay returns the share of hoursPerDay allocated by the percentage.
func UtilizedHoursPerDay(profile *profiledomain.Profile, utilization decimal.NullDecimal) (decimal.Decimal, error) {
	factor, err := utilizationFactor(profile, utilization)
	if err != nil {
		return decimal.Zero, err
	}
	return profile.HoursPerDay.Mul(factor), nil
}

// PercentageFactor converts a 0-100 percentage to a factor rounded to Scale digits.
func PercentageFactor(percentage decimal.Decimal) decimal.Decimal {
	return percentage.DivRound(hundred, Scale)
}

func annualCost(profile *profiledomain.Profile) decimal.Decimal {
	return profile.AnnualSalary.Mul(profile.OverheadMultiplier).Add(profile.FixedAnnualAmount)
}

func hourlyRate(profile *profiledomain.Profile) (decimal.Decimal, error) {
	if profile.EffectiveWorkHours.IsZero() {
		return decimal.Zero, ratingdomain.ErrInvalidWorkHours
	}
	return annualCost(profile).DivRound(profile.EffectiveWorkHours, Scale), nil
}

func utilizationFactor(profile *profiledomain.Profile, utilization decimal.NullDecimal) (decimal.Decimal, error) {
	if profile == nil {
		return decimal.Zero, ratingdomain.ErrMissingProfile
	}
	if !utilization.Valid {
		return decimal.Zero, ratingdomain.ErrMissingUtilization
	}
	return PercentageFactor(utilization.Decimal), nil
}
