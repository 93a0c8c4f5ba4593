package seed

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	profiledomain "github.com/smallbiznis/ratecard/internal/profile/domain"
	profilerepository "github.com/smallbiznis/ratecard/internal/profile/repository"
	teamdomain "github.com/smallbiznis/ratecard/internal/team/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&profiledomain.Profile{},
		&profiledomain.ProfileHistory{},
		&teamdomain.Team{},
		&teamdomain.TeamProfile{},
	))
	return db
}

func TestEnsureDemoTeam(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	created, err := EnsureDemoTeam(ctx, db)
	require.NoError(t, err)
	assert.True(t, created)

	var team teamdomain.Team
	require.NoError(t, db.Where("name = ?", DemoTeamName).First(&team).Error)
	assert.True(t, team.Markup.Equal(decimal.NewFromInt(20)))
	assert.True(t, team.GrossMargin.Equal(decimal.NewFromInt(40)))

	members, err := profilerepository.NewRepository(db).ListCurrentByTeam(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "Senior Engineer", members[0].Name)
	assert.Equal(t, "Designer", members[1].Name)

	var histories int64
	require.NoError(t, db.Model(&profiledomain.ProfileHistory{}).Count(&histories).Error)
	assert.Equal(t, int64(2), histories)
}

func TestEnsureDemoTeamIsIdempotent(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	_, err := EnsureDemoTeam(ctx, db)
	require.NoError(t, err)
	created, err := EnsureDemoTeam(ctx, db)
	require.NoError(t, err)
	assert.False(t, created)

	var teams int64
	require.NoError(t, db.Model(&teamdomain.Team{}).Count(&teams).Error)
	assert.Equal(t, int64(1), teams)
}

func TestEnsureDemoTeamRequiresHandle(t *testing.T) {
	_, err := EnsureDemoTeam(context.Background(), nil)
	assert.Error(t, err)
}
