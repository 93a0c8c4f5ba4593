package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	profiledomain "github.com/smallbiznis/ratecard/internal/profile/domain"
	profilerepository "github.com/smallbiznis/ratecard/internal/profile/repository"
	teamdomain "github.com/smallbiznis/ratecard/internal/team/domain"
	teamrepository "github.com/smallbiznis/ratecard/internal/team/repository"
	"gorm.io/gorm"
)

const (
	DemoTeamName = "Demo Delivery"

	demoNodeID = 1
)

type demoMember struct {
	profile          profiledomain.Profile
	utilizationRate  decimal.Decimal
	utilizationHours decimal.Decimal
}

func demoMembers() []demoMember {
	return []demoMember{
		{
			profile: profiledomain.Profile{
				Name:               "Senior Engineer",
				AnnualSalary:       decimal.NewFromInt(100000),
				OverheadMultiplier: decimal.RequireFromString("1.25"),
				FixedAnnualAmount:  decimal.NewFromInt(5000),
				EffectiveWorkHours: decimal.NewFromInt(1800),
				HoursPerDay:        decimal.RequireFromString("7.5"),
			},
			utilizationRate:  decimal.NewFromInt(50),
			utilizationHours: decimal.NewFromInt(50),
		},
		{
			profile: profiledomain.Profile{
				Name:               "Designer",
				AnnualSalary:       decimal.NewFromInt(72000),
				OverheadMultiplier: decimal.NewFromInt(1),
				FixedAnnualAmount:  decimal.Zero,
				EffectiveWorkHours: decimal.NewFromInt(1800),
				HoursPerDay:        decimal.NewFromInt(8),
			},
			utilizationRate:  decimal.NewFromInt(100),
			utilizationHours: decimal.NewFromInt(100),
		},
	}
}

// EnsureDemoTeam seeds a team with two profiles whose hourly rate is 76.11 raw,
// 91.33 after a 20% markup and 152.22 after a further 40% gross margin.
// It reports whether anything was created.
func EnsureDemoTeam(ctx context.Context, db *gorm.DB) (bool, error) {
	if db == nil {
		return false, errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(demoNodeID)
	if err != nil {
		return false, err
	}

	created := false
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing teamdomain.Team
		err := tx.WithContext(ctx).Where("name = ?", DemoTeamName).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		teams := teamrepository.NewRepository(tx)
		profiles := profilerepository.NewRepository(tx)
		now := time.Now().UTC()

		team := teamdomain.Team{
			ID:          node.Generate(),
			Name:        DemoTeamName,
			Markup:      decimal.NewFromInt(20),
			GrossMargin: decimal.NewFromInt(40),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := teams.Insert(ctx, &team); err != nil {
			return err
		}

		for i, member := range demoMembers() {
			profile := member.profile
			profile.ID = node.Generate()
			profile.CreatedAt = now
			profile.UpdatedAt = now
			if err := profiles.Insert(ctx, &profile); err != nil {
				return err
			}
			if err := profiles.InsertHistory(ctx, snapshot(node.Generate(), profile)); err != nil {
				return err
			}
			if err := teams.InsertMembership(ctx, &teamdomain.TeamProfile{
				ID:               node.Generate(),
				TeamID:           team.ID,
				ProfileID:        profile.ID,
				UtilizationRate:  decimal.NewNullDecimal(member.utilizationRate),
				UtilizationHours: decimal.NewNullDecimal(member.utilizationHours),
				Position:         i,
				CreatedAt:        now,
			}); err != nil {
				return err
			}
		}

		created = true
		return nil
	})
	return created, err
}

func snapshot(id snowflake.ID, p profiledomain.Profile) *profiledomain.ProfileHistory {
	return &profiledomain.ProfileHistory{
		ID:                 id,
		ProfileID:          p.ID,
		Overhead:           p.Overhead,
		AnnualSalary:       p.AnnualSalary,
		FixedAnnualAmount:  p.FixedAnnualAmount,
		OverheadMultiplier: p.OverheadMultiplier,
		EffectiveWorkHours: p.EffectiveWorkHours,
		HoursPerDay:        p.HoursPerDay,
		UpdatedAt:          p.UpdatedAt,
	}
}
