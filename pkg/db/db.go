package db

import (
	"context"
	"time"

	"github.com/enfinitus/onboarding/internal/config"
	"github.com/enfinitus/onboarding/internal/observability/logger"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	gormprom "gorm.io/plugin/prometheus"
)

var Module = fx.Module("db",
	fx.Provide(New),
	fx.Provide(NewFallback),
)

// New opens the primary store. STORE_MODE=memory replaces it with an
// in-process SQLite database.
func New(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	log = log.Named("db")

	var (
		conn *gorm.DB
		err  error
	)
	if cfg.UseMemoryStore() {
		log.Warn("using in-process memory store, data is not persisted")
		conn, err = OpenMemory(cfg.AppName)
	} else {
		conn, err = openPrimary(cfg, log)
	}
	if err != nil {
		return nil, err
	}

	if err := conn.Use(otelgorm.NewPlugin(otelgorm.WithDBName(cfg.DBName))); err != nil {
		return nil, err
	}
	if !cfg.UseMemoryStore() {
		if err := conn.Use(gormprom.New(gormprom.Config{
			DBName:          cfg.DBName,
			RefreshInterval: 15,
		})); err != nil {
			return nil, err
		}
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return sqlDB.Close()
		},
	})

	return conn, nil
}

func openPrimary(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := Dialect(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.NewGormLogger(log, gormlogger.Warn, 200*time.Millisecond),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConn)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConn)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetime) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTime) * time.Second)

	return conn, nil
}

// NewFallback opens the degraded-mode store when DEGRADED_FALLBACK is set.
func NewFallback(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*Fallback, error) {
	if !cfg.DegradedFallback {
		return &Fallback{}, nil
	}

	conn, err := OpenMemory(cfg.AppName + "-fallback")
	if err != nil {
		return nil, err
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return sqlDB.Close()
		},
	})

	log.Named("db").Warn("degraded fallback store enabled")
	return &Fallback{DB: conn}, nil
}
