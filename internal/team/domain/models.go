// Package domain contains persistence models for teams and team membership.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Team aggregates profiles and carries the business adjustments applied to their rates.
type Team struct {
	ID          snowflake.ID    `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"type:text;not null"`
	Markup      decimal.Decimal `json:"markup" gorm:"type:numeric(10,4);not null;default:0"`
	GrossMargin decimal.Decimal `json:"gross_margin" gorm:"type:numeric(10,4);not null;default:0"`
	Archived    bool            `json:"archived" gorm:"not null;default:false;index"`
	CreatedAt   time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Team) TableName() string { return "teams" }

// TeamProfile links a profile to a team with its utilization figures.
// UtilizationRate weights cost, UtilizationHours weights contributed hours; both are 0-100.
type TeamProfile struct {
	ID               snowflake.ID        `json:"id" gorm:"primaryKey"`
	TeamID           snowflake.ID        `json:"team_id" gorm:"not null;uniqueIndex:idx_team_profile"`
	ProfileID        snowflake.ID        `json:"profile_id" gorm:"not null;uniqueIndex:idx_team_profile;index"`
	UtilizationRate  decimal.NullDecimal `json:"utilization_rate" gorm:"type:numeric(5,2)"`
	UtilizationHours decimal.NullDecimal `json:"utilization_hours" gorm:"type:numeric(5,2)"`
	Position         int                 `json:"position" gorm:"not null;default:0"`
	CreatedAt        time.Time           `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (TeamProfile) TableName() string { return "team_profiles" }
