package tariff

import (
	"github.com/enfinitus/onboarding/internal/config"
	"github.com/enfinitus/onboarding/internal/tariff/client"
	"github.com/enfinitus/onboarding/internal/tariff/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("tariff.feed",
	fx.Provide(NewFeed),
)

// NewFeed selects the HTTP feed when TARIFF_FEED_URL is set and the static
// price list otherwise. Both are wrapped in the per-zip quote cache.
func NewFeed(cfg config.Config, log *zap.Logger) domain.Feed {
	var feed domain.Feed
	if cfg.TariffFeedURL != "" {
		feed = client.NewHTTPFeed(cfg.TariffFeedURL, cfg.TariffFeedTimeout, log)
	} else {
		log.Named("tariff").Info("TARIFF_FEED_URL not set, using static price list")
		feed = client.NewStaticFeed(nil)
	}
	return client.NewCachingFeed(feed, cfg.TariffCacheTTL)
}
