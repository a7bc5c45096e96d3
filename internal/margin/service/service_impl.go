package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/enfinitus/onboarding/internal/clock"
	"github.com/enfinitus/onboarding/internal/funnel"
	"github.com/enfinitus/onboarding/internal/margin/domain"
	tariffdomain "github.com/enfinitus/onboarding/internal/tariff/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("margin.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Upsert sets the margin for a funnel and tariff type. Existing snapshots keep
// the margin they captured.
func (s *Service) Upsert(ctx context.Context, req domain.UpsertMarginRequest) (domain.Margin, error) {
	funnelID := funnel.Normalize(req.FunnelID)
	if funnelID == "" {
		return domain.Margin{}, domain.ErrInvalidFunnel
	}
	tariffType, ok := tariffdomain.ParseTariffType(req.TariffType)
	if !ok {
		return domain.Margin{}, domain.ErrInvalidTariffType
	}

	margin := domain.Margin{
		ID:                 s.genID.Generate(),
		FunnelID:           funnelID,
		TariffType:         tariffType,
		MarginWorkingPrice: req.MarginWorkingPrice,
		MarginBasePrice:    req.MarginBasePrice,
		UpdatedAt:          s.clock.Now(),
	}
	if err := s.repo.Upsert(ctx, s.db, &margin); err != nil {
		return domain.Margin{}, err
	}

	stored, err := s.repo.Find(ctx, s.db, funnelID, tariffType)
	if err != nil {
		return domain.Margin{}, err
	}
	if stored == nil {
		return margin, nil
	}

	s.log.Info("margin updated",
		zap.String("funnel_id", funnelID),
		zap.String("tariff_type", string(tariffType)),
		zap.String("margin_working_price", stored.MarginWorkingPrice.String()),
		zap.String("margin_base_price", stored.MarginBasePrice.String()),
	)
	return *stored, nil
}

func (s *Service) List(ctx context.Context, funnelID string) ([]domain.Margin, error) {
	return s.repo.List(ctx, s.db, funnel.Normalize(funnelID))
}
