// Package domain contains the types exchanged with the rate aggregation service.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// RateType selects the base quantity an aggregation computes.
type RateType string

const (
	RateTypeHourly RateType = "HOURLY"
	RateTypeDay    RateType = "DAY"
	RateTypeAnnual RateType = "ANNUAL"
)

// AdjustmentType selects how far through the markup then gross margin chain a value is carried.
type AdjustmentType string

const (
	AdjustmentRaw         AdjustmentType = "RAW"
	AdjustmentMarkup      AdjustmentType = "MARKUP"
	AdjustmentGrossMargin AdjustmentType = "GROSS_MARGIN"
)

func ParseRateType(value string) (RateType, error) {
	switch RateType(strings.ToUpper(strings.TrimSpace(value))) {
	case RateTypeHourly:
		return RateTypeHourly, nil
	case RateTypeDay:
		return RateTypeDay, nil
	case RateTypeAnnual:
		return RateTypeAnnual, nil
	default:
		return "", ErrInvalidRateType
	}
}

func ParseAdjustmentType(value string) (AdjustmentType, error) {
	switch AdjustmentType(strings.ToUpper(strings.TrimSpace(value))) {
	case AdjustmentRaw:
		return AdjustmentRaw, nil
	case AdjustmentMarkup:
		return AdjustmentMarkup, nil
	case AdjustmentGrossMargin:
		return AdjustmentGrossMargin, nil
	default:
		return "", ErrInvalidAdjustmentType
	}
}

// Rates is one rate type carried through each adjustment stage.
type Rates struct {
	Raw         decimal.Decimal `json:"raw"`
	Markup      decimal.Decimal `json:"markup"`
	GrossMargin decimal.Decimal `json:"gross_margin"`
}

// TeamMetrics aggregates utilization-weighted, unadjusted figures for a team.
type TeamMetrics struct {
	TeamID     snowflake.ID    `json:"team_id"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	DayRate    decimal.Decimal `json:"day_rate"`
	AnnualCost decimal.Decimal `json:"annual_cost"`
	TotalHours decimal.Decimal `json:"total_hours"`
}

// TeamBreakdown is a profile's contribution to a single team.
type TeamBreakdown struct {
	TeamID           snowflake.ID    `json:"team_id"`
	TeamName         string          `json:"team_name"`
	UtilizationRate  decimal.Decimal `json:"utilization_rate"`
	UtilizationHours decimal.Decimal `json:"utilization_hours"`
	HourlyRate       decimal.Decimal `json:"hourly_rate"`
	DayRate          decimal.Decimal `json:"day_rate"`
	AnnualCost       decimal.Decimal `json:"annual_cost"`
	UtilizedHours    decimal.Decimal `json:"utilized_hours"`
}

// ProfileRates spreads a profile's cost across the active teams it belongs to.
type ProfileRates struct {
	ProfileID        snowflake.ID    `json:"profile_id"`
	Teams            []TeamBreakdown `json:"teams"`
	TotalHourlyRate  decimal.Decimal `json:"total_hourly_rate"`
	TotalDayRate     decimal.Decimal `json:"total_day_rate"`
	TotalAnnualCost  decimal.Decimal `json:"total_annual_cost"`
	ContributedHours decimal.Decimal `json:"contributed_hours"`
}

// HistoryRates are the unweighted rates of a profile snapshot.
type HistoryRates struct {
	ProfileID  snowflake.ID    `json:"profile_id"`
	UpdatedAt  time.Time       `json:"updated_at"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	DayRate    decimal.Decimal `json:"day_rate"`
	AnnualCost decimal.Decimal `json:"annual_cost"`
}

// QuoteRequest carries an unsaved cost structure and an optional utilization percentage.
type QuoteRequest struct {
	AnnualSalary       decimal.Decimal     `json:"annual_salary"`
	FixedAnnualAmount  decimal.Decimal     `json:"fixed_annual_amount"`
	OverheadMultiplier decimal.NullDecimal `json:"overhead_multiplier"` // 1 when absent
	EffectiveWorkHours decimal.Decimal     `json:"effective_work_hours"`
	HoursPerDay        decimal.Decimal     `json:"hours_per_day"`
	Utilization        decimal.NullDecimal `json:"utilization"`
}

type QuoteResponse struct {
	AnnualCost decimal.Decimal `json:"annual_cost"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	DayRate    decimal.Decimal `json:"day_rate"`

	// Set only when the request carried a utilization percentage.
	UtilizedAnnualCost  *decimal.Decimal `json:"utilized_annual_cost,omitempty"`
	UtilizedHourlyRate  *decimal.Decimal `json:"utilized_hourly_rate,omitempty"`
	UtilizedDayRate     *decimal.Decimal `json:"utilized_day_rate,omitempty"`
	UtilizedHours       *decimal.Decimal `json:"utilized_hours,omitempty"`
	UtilizedHoursPerDay *decimal.Decimal `json:"utilized_hours_per_day,omitempty"`
}

type AdjustRequest struct {
	Rate        decimal.Decimal `json:"rate"`
	Markup      decimal.Decimal `json:"markup"`
	GrossMargin decimal.Decimal `json:"gross_margin"`
}
