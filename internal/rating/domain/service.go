package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	profiledomain "github.com/smallbiznis/ratecard/internal/profile/domain"
	teamdomain "github.com/smallbiznis/ratecard/internal/team/domain"
)

type Service interface {
	// CalculateRates sums utilization-weighted rates over the team's current members,
	// then applies markup and, on top of it, gross margin.
	CalculateRates(ctx context.Context, teamID snowflake.ID, rateType RateType) (Rates, error)
	UtilizedHourlyRate(ctx context.Context, teamID snowflake.ID) (decimal.Decimal, error)
	UtilizedDayRate(ctx context.Context, teamID snowflake.ID) (decimal.Decimal, error)
	UtilizedAnnualCost(ctx context.Context, teamID snowflake.ID) (decimal.Decimal, error)
	// CalculateRate sums unweighted rates over every profile linked to the team.
	CalculateRate(ctx context.Context, teamID snowflake.ID, rateType RateType, adjustment AdjustmentType) (decimal.Decimal, error)
	CalculateMetrics(ctx context.Context, teamID snowflake.ID) (TeamMetrics, error)
	CalculateMetricsForProfiles(ctx context.Context, teamID snowflake.ID, profiles []profiledomain.Profile) (TeamMetrics, error)
	ProfileRates(ctx context.Context, profileID snowflake.ID) (ProfileRates, error)
	ProfileHistoryRates(ctx context.Context, profileID snowflake.ID) ([]HistoryRates, error)
	Quote(ctx context.Context, req QuoteRequest) (QuoteResponse, error)
	Adjust(ctx context.Context, req AdjustRequest) (Rates, error)
}

// ProfileDirectory resolves teams and profiles. Nil results mean not found.
type ProfileDirectory interface {
	Team(ctx context.Context, teamID snowflake.ID) (*teamdomain.Team, error)
	// TeamProfiles lists the team's current members.
	TeamProfiles(ctx context.Context, teamID snowflake.ID) ([]profiledomain.Profile, error)
	// ProfilesByTeam lists every profile associated with the team.
	ProfilesByTeam(ctx context.Context, teamID snowflake.ID) ([]profiledomain.Profile, error)
	Profile(ctx context.Context, profileID snowflake.ID) (*profiledomain.Profile, error)
	ProfileTeams(ctx context.Context, profileID snowflake.ID) ([]teamdomain.Team, error)
	ProfileHistory(ctx context.Context, profileID snowflake.ID) ([]profiledomain.ProfileHistory, error)
}

// UtilizationDirectory resolves per (profile, team) utilization percentages.
type UtilizationDirectory interface {
	RateUtilization(ctx context.Context, profileID, teamID snowflake.ID) (decimal.NullDecimal, error)
	HourUtilization(ctx context.Context, profileID, teamID snowflake.ID) (decimal.NullDecimal, error)
}

var (
	ErrInvalidArgument       = errors.New("invalid_argument")
	ErrMissingProfile        = fmt.Errorf("%w: missing profile", ErrInvalidArgument)
	ErrMissingUtilization    = fmt.Errorf("%w: missing utilization percentage", ErrInvalidArgument)
	ErrInvalidWorkHours      = fmt.Errorf("%w: effective work hours must be non-zero", ErrInvalidArgument)
	ErrInvalidRateType       = fmt.Errorf("%w: invalid rate type", ErrInvalidArgument)
	ErrInvalidAdjustmentType = fmt.Errorf("%w: invalid adjustment type", ErrInvalidArgument)
	ErrMissingTeam           = errors.New("team_not_found")
	ErrProfileNotFound       = errors.New("profile_not_found")
	ErrMissingCollaborator   = errors.New("missing_collaborator")
)
