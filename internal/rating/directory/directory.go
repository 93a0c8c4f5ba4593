// Package directory adapts the profile and team repositories to the lookups
// the aggregation service depends on.
package directory

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	profiledomain "github.com/smallbiznis/ratecard/internal/profile/domain"
	ratingdomain "github.com/smallbiznis/ratecard/internal/rating/domain"
	teamdomain "github.com/smallbiznis/ratecard/internal/team/domain"
)

type profileDirectory struct {
	profiles profiledomain.Repository
	teams    teamdomain.Repository
}

func NewProfileDirectory(profiles profiledomain.Repository, teams teamdomain.Repository) ratingdomain.ProfileDirectory {
	return &profileDirectory{profiles: profiles, teams: teams}
}

func (d *profileDirectory) Team(ctx context.Context, teamID snowflake.ID) (*teamdomain.Team, error) {
	if teamID == 0 {
		return nil, teamdomain.ErrInvalidID
	}
	return d.teams.FindByID(ctx, teamID)
}

func (d *profileDirectory) TeamProfiles(ctx context.Context, teamID snowflake.ID) ([]profiledomain.Profile, error) {
	return d.profiles.ListCurrentByTeam(ctx, teamID)
}

func (d *profileDirectory) ProfilesByTeam(ctx context.Context, teamID snowflake.ID) ([]profiledomain.Profile, error) {
	return d.profiles.ListAllByTeam(ctx, teamID)
}

func (d *profileDirectory) Profile(ctx context.Context, profileID snowflake.ID) (*profiledomain.Profile, error) {
	if profileID == 0 {
		return nil, profiledomain.ErrInvalidID
	}
	return d.profiles.FindByID(ctx, profileID)
}

func (d *profileDirectory) ProfileTeams(ctx context.Context, profileID snowflake.ID) ([]teamdomain.Team, error) {
	return d.teams.ListByProfile(ctx, profileID)
}

func (d *profileDirectory) ProfileHistory(ctx context.Context, profileID snowflake.ID) ([]profiledomain.ProfileHistory, error) {
	return d.profiles.ListHistory(ctx, profileID)
}

type utilizationDirectory struct {
	teams teamdomain.Repository
}

func NewUtilizationDirectory(teams teamdomain.Repository) ratingdomain.UtilizationDirectory {
	return &utilizationDirectory{teams: teams}
}

func (d *utilizationDirectory) RateUtilization(ctx context.Context, profileID, teamID snowflake.ID) (decimal.NullDecimal, error) {
	membership, err := d.membership(ctx, profileID, teamID)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return membership.UtilizationRate, nil
}

func (d *utilizationDirectory) HourUtilization(ctx context.Context, profileID, teamID snowflake.ID) (decimal.NullDecimal, error) {
	membership, err := d.membership(ctx, profileID, teamID)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return membership.UtilizationHours, nil
}

func (d *utilizationDirectory) membership(ctx context.Context, profileID, teamID snowflake.ID) (*teamdomain.TeamProfile, error) {
	membership, err := d.teams.FindMembership(ctx, profileID, teamID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, fmt.Errorf("profile %s in team %s: %w", profileID, teamID, teamdomain.ErrMembershipNotFound)
	}
	return membership, nil
}
