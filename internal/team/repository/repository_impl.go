package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	teamdomain "github.com/smallbiznis/ratecard/internal/team/domain"
	"github.com/smallbiznis/ratecard/pkg/db"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) teamdomain.Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, team *teamdomain.Team) error {
	return r.db.WithContext(ctx).Create(team).Error
}

func (r *repository) InsertMembership(ctx context.Context, membership *teamdomain.TeamProfile) error {
	err := r.db.WithContext(ctx).Create(membership).Error
	if db.IsDuplicateKeyErr(err) {
		return teamdomain.ErrMembershipExists
	}
	return err
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*teamdomain.Team, error) {
	var team teamdomain.Team
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&team).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &team, nil
}

func (r *repository) ListByProfile(ctx context.Context, profileID snowflake.ID) ([]teamdomain.Team, error) {
	var items []teamdomain.Team
	err := r.db.WithContext(ctx).Raw(
		`SELECT t.id, t.name, t.markup, t.gross_margin, t.archived, t.created_at, t.updated_at
		 FROM teams t
		 JOIN team_profiles tp ON tp.team_id = t.id
		 WHERE tp.profile_id = ?
		 ORDER BY t.id ASC`,
		profileID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindMembership(ctx context.Context, profileID, teamID snowflake.ID) (*teamdomain.TeamProfile, error) {
	var membership teamdomain.TeamProfile
	err := r.db.WithContext(ctx).
		Where("profile_id = ? AND team_id = ?", profileID, teamID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &membership, nil
}
