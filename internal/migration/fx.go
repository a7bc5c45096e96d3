package migration

import (
	"context"
	"strings"

	"github.com/enfinitus/onboarding/internal/config"
	"github.com/enfinitus/onboarding/internal/seed"
	"github.com/enfinitus/onboarding/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, fallback *db.Fallback, cfg config.Config, log *zap.Logger) error {
		if err := Migrate(conn, cfg); err != nil {
			return err
		}
		if err := seed.EnsureReferenceData(context.Background(), conn); err != nil {
			return err
		}

		if !fallback.Enabled() {
			return nil
		}
		log.Named("migration").Info("preparing fallback store")
		if err := AutoMigrate(fallback.DB); err != nil {
			return err
		}
		return seed.EnsureReferenceData(context.Background(), fallback.DB)
	}),
)

// Migrate brings the primary store's schema up to date.
func Migrate(conn *gorm.DB, cfg config.Config) error {
	if cfg.UseMemoryStore() || !strings.EqualFold(strings.TrimSpace(cfg.DBType), "postgres") {
		return AutoMigrate(conn)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return RunMigrations(sqlDB)
}
