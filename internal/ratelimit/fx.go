package ratelimit

import (
	"context"

	"github.com/enfinitus/onboarding/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("rate.limit",
	fx.Provide(NewImportLimiter),
)

// NewImportLimiter returns nil when IMPORT_RATE_LIMIT is unset; imports are
// then unthrottled.
func NewImportLimiter(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) Limiter {
	limitCfg := cfg.ImportRateLimit
	if limitCfg.Rate <= 0 || limitCfg.Burst <= 0 {
		return nil
	}

	if cfg.RedisAddr == "" {
		log.Info("import rate limit using in-process buckets",
			zap.Float64("rate", limitCfg.Rate),
			zap.Int("burst", limitCfg.Burst),
		)
		return NewLocal(limitCfg.Rate, limitCfg.Burst)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return NewTokenBucket(client, limitCfg.Rate, limitCfg.Burst)
}
