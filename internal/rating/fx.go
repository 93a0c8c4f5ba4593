package rating

import (
	"github.com/smallbiznis/ratecard/internal/cache"
	profilerepo "github.com/smallbiznis/ratecard/internal/profile/repository"
	"github.com/smallbiznis/ratecard/internal/rating/directory"
	ratingdomain "github.com/smallbiznis/ratecard/internal/rating/domain"
	"github.com/smallbiznis/ratecard/internal/rating/service"
	teamdomain "github.com/smallbiznis/ratecard/internal/team/domain"
	teamrepo "github.com/smallbiznis/ratecard/internal/team/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("rating.service",
	fx.Provide(profilerepo.NewRepository),
	fx.Provide(teamrepo.NewRepository),
	fx.Provide(directory.NewProfileDirectory),
	fx.Provide(provideUtilizationDirectory),
	fx.Provide(service.NewService),
)

type utilizationParams struct {
	fx.In

	Teams teamdomain.Repository
	Store cache.UtilizationStore `optional:"true"`
}

// provideUtilizationDirectory fronts membership lookups with the configured cache store, if any.
func provideUtilizationDirectory(p utilizationParams) ratingdomain.UtilizationDirectory {
	return cache.NewUtilizationDirectory(directory.NewUtilizationDirectory(p.Teams), p.Store)
}
