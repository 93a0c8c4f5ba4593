package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	teamdomain "github.com/smallbiznis/ratecard/internal/team/domain"
	"github.com/smallbiznis/ratecard/internal/team/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&teamdomain.Team{}, &teamdomain.TeamProfile{}))
	return db
}

func TestTeamRepository(t *testing.T) {
	db := openDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, &teamdomain.Team{
		ID:          1,
		Name:        "platform",
		Markup:      decimal.NewFromInt(20),
		GrossMargin: decimal.NewFromInt(40),
	}))
	require.NoError(t, repo.Insert(ctx, &teamdomain.Team{ID: 2, Name: "data"}))

	got, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "platform", got.Name)
	assert.True(t, got.Markup.Equal(decimal.NewFromInt(20)))
	assert.True(t, got.GrossMargin.Equal(decimal.NewFromInt(40)))

	missing, err := repo.FindByID(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemberships(t *testing.T) {
	db := openDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, &teamdomain.Team{ID: 1, Name: "platform"}))
	require.NoError(t, repo.Insert(ctx, &teamdomain.Team{ID: 2, Name: "data"}))
	require.NoError(t, repo.InsertMembership(ctx, &teamdomain.TeamProfile{
		ID:               10,
		TeamID:           2,
		ProfileID:        50,
		UtilizationRate:  decimal.NewNullDecimal(decimal.NewFromInt(50)),
		UtilizationHours: decimal.NewNullDecimal(decimal.NewFromInt(25)),
	}))
	require.NoError(t, repo.InsertMembership(ctx, &teamdomain.TeamProfile{
		ID:        11,
		TeamID:    1,
		ProfileID: 50,
	}))

	teams, err := repo.ListByProfile(ctx, 50)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "platform", teams[0].Name)
	assert.Equal(t, "data", teams[1].Name)

	membership, err := repo.FindMembership(ctx, 50, 2)
	require.NoError(t, err)
	require.NotNil(t, membership)
	require.True(t, membership.UtilizationRate.Valid)
	assert.True(t, membership.UtilizationRate.Decimal.Equal(decimal.NewFromInt(50)))
	assert.True(t, membership.UtilizationHours.Decimal.Equal(decimal.NewFromInt(25)))

	unset, err := repo.FindMembership(ctx, 50, 1)
	require.NoError(t, err)
	require.NotNil(t, unset)
	assert.False(t, unset.UtilizationRate.Valid)
	assert.False(t, unset.UtilizationHours.Valid)

	absent, err := repo.FindMembership(ctx, 51, 1)
	require.NoError(t, err)
	assert.Nil(t, absent)
}

func TestInsertMembershipDuplicate(t *testing.T) {
	db := openDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.InsertMembership(ctx, &teamdomain.TeamProfile{ID: 1, TeamID: 7, ProfileID: 9}))
	err := repo.InsertMembership(ctx, &teamdomain.TeamProfile{ID: 2, TeamID: 7, ProfileID: 9})
	assert.ErrorIs(t, err, teamdomain.ErrMembershipExists)
}
