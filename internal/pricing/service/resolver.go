package service

import (
	"context"
	"fmt"

	"github.com/enfinitus/onboarding/internal/funnel"
	margindomain "github.com/enfinitus/onboarding/internal/margin/domain"
	"github.com/enfinitus/onboarding/internal/observability/metrics"
	"github.com/enfinitus/onboarding/internal/observability/tracing"
	"github.com/enfinitus/onboarding/internal/pricing/domain"
	tariffdomain "github.com/enfinitus/onboarding/internal/tariff/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ResolverParams struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Feed       tariffdomain.Feed
	MarginRepo margindomain.Repository
	Metrics    *metrics.Metrics `optional:"true"`
}

type Resolver struct {
	db         *gorm.DB
	log        *zap.Logger
	feed       tariffdomain.Feed
	marginRepo margindomain.Repository
	metrics    *metrics.Metrics
}

func NewResolver(p ResolverParams) domain.Resolver {
	m := p.Metrics
	if m == nil {
		m = metrics.NewNop()
	}
	return &Resolver{
		db:         p.DB,
		log:        p.Log.Named("pricing.resolver"),
		feed:       p.Feed,
		marginRepo: p.MarginRepo,
		metrics:    m,
	}
}

func (r *Resolver) WithDB(db *gorm.DB) domain.Resolver {
	clone := *r
	clone.db = db
	return &clone
}

// Resolve computes upstream + margin for the postal code. A missing margin is
// treated as zero. Feed errors are returned as is and wrap
// tariffdomain.ErrFeedUnavailable when the upstream could not be reached.
func (r *Resolver) Resolve(ctx context.Context, funnelID string, tariffType tariffdomain.TariffType, zipCode string) (domain.Quote, error) {
	ctx, span := tracing.StartSpan(ctx, "pricing.resolve",
		attribute.String("funnel_id", funnelID),
		attribute.String("tariff_type", string(tariffType)),
	)
	defer span.End()

	funnelID = funnel.Normalize(funnelID)
	if funnelID == "" {
		return domain.Quote{}, domain.ErrInvalidFunnel
	}

	regional, err := r.feed.Quote(ctx, zipCode)
	if err != nil {
		span.RecordError(tracing.SafeError(err))
		return domain.Quote{}, fmt.Errorf("fetch upstream quote: %w", err)
	}

	upstream, err := regional.Tariff(tariffType)
	if err != nil {
		return domain.Quote{}, err
	}

	margin, err := r.marginRepo.Find(ctx, r.db, funnelID, tariffType)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("load margin: %w", err)
	}

	quote := domain.Quote{
		FunnelID:     funnelID,
		TariffType:   tariffType,
		ZipCode:      regional.ZipCode,
		Region:       regional.Region,
		GridOperator: regional.GridOperator,
		Upstream:     upstream,
	}
	if margin != nil {
		quote.Margin = margin.Price()
		quote.MarginFound = true
	} else {
		r.log.Warn("no margin configured, using zero margin",
			zap.String("funnel_id", funnelID),
			zap.String("tariff_type", string(tariffType)),
		)
		r.metrics.RecordPriceFallback(ctx, metrics.FallbackMarginMissing)
	}
	quote.Final = upstream.Add(quote.Margin)

	return quote, nil
}
