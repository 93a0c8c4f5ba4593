package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Insert(ctx context.Context, profile *Profile) error
	InsertHistory(ctx context.Context, history *ProfileHistory) error
	FindByID(ctx context.Context, id snowflake.ID) (*Profile, error)
	// ListCurrentByTeam returns non-archived members of a team in membership order.
	ListCurrentByTeam(ctx context.Context, teamID snowflake.ID) ([]Profile, error)
	// ListAllByTeam returns every profile linked to a team, archived or not.
	ListAllByTeam(ctx context.Context, teamID snowflake.ID) ([]Profile, error)
	ListHistory(ctx context.Context, profileID snowflake.ID) ([]ProfileHistory, error)
}

var (
	ErrInvalidID = errors.New("invalid_profile_id")
	ErrNotFound  = errors.New("profile_not_found")
)
