package main

import (
	"github.com/smallbiznis/ratecard/internal/cache"
	"github.com/smallbiznis/ratecard/internal/clock"
	"github.com/smallbiznis/ratecard/internal/config"
	"github.com/smallbiznis/ratecard/internal/migration"
	"github.com/smallbiznis/ratecard/internal/observability"
	"github.com/smallbiznis/ratecard/internal/rating"
	"github.com/smallbiznis/ratecard/internal/server"
	"github.com/smallbiznis/ratecard/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		db.Module,
		clock.Module,
		cache.Module,
		migration.Module,

		// Functional Domains
		rating.Module,

		server.Module,
	)
	app.Run()
}
