package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	profiledomain "github.com/smallbiznis/ratecard/internal/profile/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) profiledomain.Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, profile *profiledomain.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *repository) InsertHistory(ctx context.Context, history *profiledomain.ProfileHistory) error {
	return r.db.WithContext(ctx).Create(history).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*profiledomain.Profile, error) {
	var profile profiledomain.Profile
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, name, overhead, annual_salary, fixed_annual_amount, overhead_multiplier,
		        effective_work_hours, hours_per_day, archived, created_at, updated_at
		 FROM profiles
		 WHERE id = ?`,
		id,
	).Scan(&profile).Error
	if err != nil {
		return nil, err
	}
	if profile.ID == 0 {
		return nil, nil
	}
	return &profile, nil
}

func (r *repository) ListCurrentByTeam(ctx context.Context, teamID snowflake.ID) ([]profiledomain.Profile, error) {
	var items []profiledomain.Profile
	err := r.db.WithContext(ctx).Raw(
		`SELECT p.id, p.name, p.overhead, p.annual_salary, p.fixed_annual_amount, p.overhead_multiplier,
		        p.effective_work_hours, p.hours_per_day, p.archived, p.created_at, p.updated_at
		 FROM profiles p
		 JOIN team_profiles tp ON tp.profile_id = p.id
		 WHERE tp.team_id = ? AND p.archived = ?
		 ORDER BY tp.position ASC, tp.id ASC`,
		teamID,
		false,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListAllByTeam(ctx context.Context, teamID snowflake.ID) ([]profiledomain.Profile, error) {
	var items []profiledomain.Profile
	err := r.db.WithContext(ctx).Raw(
		`SELECT p.id, p.name, p.overhead, p.annual_salary, p.fixed_annual_amount, p.overhead_multiplier,
		        p.effective_work_hours, p.hours_per_day, p.archived, p.created_at, p.updated_at
		 FROM profiles p
		 JOIN team_profiles tp ON tp.profile_id = p.id
		 WHERE tp.team_id = ?
		 ORDER BY p.id ASC`,
		teamID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListHistory(ctx context.Context, profileID snowflake.ID) ([]profiledomain.ProfileHistory, error) {
	var items []profiledomain.ProfileHistory
	err := r.db.WithContext(ctx).
		Model(&profiledomain.ProfileHistory{}).
		Where("profile_id = ?", profileID).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
