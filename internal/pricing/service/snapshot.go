package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/enfinitus/onboarding/internal/clock"
	"github.com/enfinitus/onboarding/internal/pricing/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SnapshotParams struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.SnapshotRepository
}

type SnapshotStore struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.SnapshotRepository
}

func NewSnapshotStore(p SnapshotParams) domain.SnapshotStore {
	return &SnapshotStore{
		db:    p.DB,
		log:   p.Log.Named("pricing.snapshot"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Capture persists the quote through db, which may be a transaction or the
// fallback store.
func (s *SnapshotStore) Capture(ctx context.Context, db *gorm.DB, quote domain.Quote) (domain.Snapshot, error) {
	if db == nil {
		db = s.db
	}

	snapshot := domain.Snapshot{
		ID:                   s.genID.Generate(),
		FunnelID:             quote.FunnelID,
		TariffType:           quote.TariffType,
		ZipCode:              quote.ZipCode,
		UpstreamWorkingPrice: quote.Upstream.WorkingPrice,
		UpstreamBasePrice:    quote.Upstream.BasePrice,
		MarginWorkingPrice:   quote.Margin.WorkingPrice,
		MarginBasePrice:      quote.Margin.BasePrice,
		FinalWorkingPrice:    quote.Final.WorkingPrice,
		FinalBasePrice:       quote.Final.BasePrice,
		Region:               quote.Region,
		GridOperator:         quote.GridOperator,
		CapturedAt:           s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, db, &snapshot); err != nil {
		return domain.Snapshot{}, err
	}

	s.log.Debug("price snapshot captured",
		zap.String("snapshot_id", snapshot.ID.String()),
		zap.String("funnel_id", snapshot.FunnelID),
		zap.String("tariff_type", string(snapshot.TariffType)),
	)
	return snapshot, nil
}

func (s *SnapshotStore) FindByID(ctx context.Context, id snowflake.ID) (domain.Snapshot, error) {
	snapshot, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if snapshot == nil {
		return domain.Snapshot{}, domain.ErrSnapshotNotFound
	}
	return *snapshot, nil
}
