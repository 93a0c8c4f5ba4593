// Package domain contains persistence models for billable profiles.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type ResourceType string

var (
	Production ResourceType = "PRODUCTION"
	Overhead   ResourceType = "OVERHEAD"
)

// Profile is a billable resource and its current cost structure.
type Profile struct {
	ID                 snowflake.ID    `json:"id" gorm:"primaryKey"`
	Name               string          `json:"name" gorm:"type:text;not null"`
	Overhead           bool            `json:"overhead" gorm:"not null;default:false"`
	AnnualSalary       decimal.Decimal `json:"annual_salary" gorm:"type:numeric(18,4);not null"`
	FixedAnnualAmount  decimal.Decimal `json:"fixed_annual_amount" gorm:"type:numeric(18,4);not null;default:0"`
	OverheadMultiplier decimal.Decimal `json:"overhead_multiplier" gorm:"type:numeric(10,4);not null;default:1"`
	EffectiveWorkHours decimal.Decimal `json:"effective_work_hours" gorm:"type:numeric(10,2);not null"`
	HoursPerDay        decimal.Decimal `json:"hours_per_day" gorm:"type:numeric(6,2);not null"`
	Archived           bool            `json:"archived" gorm:"not null;default:false;index"`
	CreatedAt          time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Profile) TableName() string { return "profiles" }

// ResourceType reports whether the profile is billed as production or overhead.
func (p Profile) ResourceType() ResourceType {
	if p.Overhead {
		return Overhead
	}
	return Production
}

// ProfileHistory is a snapshot of a profile's cost structure taken at UpdatedAt.
type ProfileHistory struct {
	ID                 snowflake.ID    `json:"id" gorm:"primaryKey"`
	ProfileID          snowflake.ID    `json:"profile_id" gorm:"not null;index"`
	Overhead           bool            `json:"overhead" gorm:"not null;default:false"`
	AnnualSalary       decimal.Decimal `json:"annual_salary" gorm:"type:numeric(18,4);not null"`
	FixedAnnualAmount  decimal.Decimal `json:"fixed_annual_amount" gorm:"type:numeric(18,4);not null;default:0"`
	OverheadMultiplier decimal.Decimal `json:"overhead_multiplier" gorm:"type:numeric(10,4);not null;default:1"`
	EffectiveWorkHours decimal.Decimal `json:"effective_work_hours" gorm:"type:numeric(10,2);not null"`
	HoursPerDay        decimal.Decimal `json:"hours_per_day" gorm:"type:numeric(6,2);not null"`
	UpdatedAt          time.Time       `json:"updated_at" gorm:"not null;index"`
}

// TableName sets the database table name.
func (ProfileHistory) TableName() string { return "profile_histories" }

// AsProfile projects the snapshot onto a Profile so it can be rated like a live one.
func (h ProfileHistory) AsProfile() Profile {
	return Profile{
		ID:                 h.ProfileID,
		Overhead:           h.Overhead,
		AnnualSalary:       h.AnnualSalary,
		FixedAnnualAmount:  h.FixedAnnualAmount,
		OverheadMultiplier: h.OverheadMultiplier,
		EffectiveWorkHours: h.EffectiveWorkHours,
		HoursPerDay:        h.HoursPerDay,
		UpdatedAt:          h.UpdatedAt,
	}
}
