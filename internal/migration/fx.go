package migration

import (
	"context"

	"github.com/smallbiznis/ratecard/internal/config"
	"github.com/smallbiznis/ratecard/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if err := Migrate(conn); err != nil {
			return err
		}
		if !cfg.BootstrapSeedDemo {
			return nil
		}
		created, err := seed.EnsureDemoTeam(context.Background(), conn)
		if err != nil {
			return err
		}
		if created {
			log.Info("demo team seeded")
		}
		return nil
	}),
)
