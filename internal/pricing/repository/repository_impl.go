package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/enfinitus/onboarding/internal/pricing/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.SnapshotRepository {
	return &repo{}
}

const snapshotColumns = `id, funnel_id, tariff_type, zip_code,
	upstream_working_price, upstream_base_price,
	margin_working_price, margin_base_price,
	final_working_price, final_base_price,
	region, grid_operator, captured_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, s *domain.Snapshot) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO price_snapshots (`+snapshotColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID,
		s.FunnelID,
		s.TariffType,
		s.ZipCode,
		s.UpstreamWorkingPrice,
		s.UpstreamBasePrice,
		s.MarginWorkingPrice,
		s.MarginBasePrice,
		s.FinalWorkingPrice,
		s.FinalBasePrice,
		s.Region,
		s.GridOperator,
		s.CapturedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Snapshot, error) {
	var snapshot domain.Snapshot
	err := db.WithContext(ctx).Raw(
		`SELECT `+snapshotColumns+` FROM price_snapshots WHERE id = ?`,
		id,
	).Scan(&snapshot).Error
	if err != nil {
		return nil, err
	}
	if snapshot.ID == 0 {
		return nil, nil
	}
	return &snapshot, nil
}
