package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Insert(ctx context.Context, team *Team) error
	InsertMembership(ctx context.Context, membership *TeamProfile) error
	FindByID(ctx context.Context, id snowflake.ID) (*Team, error)
	ListByProfile(ctx context.Context, profileID snowflake.ID) ([]Team, error)
	FindMembership(ctx context.Context, profileID, teamID snowflake.ID) (*TeamProfile, error)
}

var (
	ErrInvalidID          = errors.New("invalid_team_id")
	ErrNotFound           = errors.New("team_not_found")
	ErrMembershipNotFound = errors.New("team_membership_not_found")
	ErrMembershipExists   = errors.New("team_membership_exists")
)
