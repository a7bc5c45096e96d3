package repository

import (
	"context"
	"errors"

	"github.com/enfinitus/onboarding/internal/margin/domain"
	tariffdomain "github.com/enfinitus/onboarding/internal/tariff/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, funnelID string, tariffType tariffdomain.TariffType) (*domain.Margin, error) {
	var margin domain.Margin
	err := db.WithContext(ctx).
		Where("funnel_id = ? AND tariff_type = ?", funnelID, tariffType).
		Take(&margin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &margin, nil
}

// Upsert keeps the existing row id on conflict.
func (r *repo) Upsert(ctx context.Context, db *gorm.DB, margin *domain.Margin) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "funnel_id"}, {Name: "tariff_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"margin_working_price", "margin_base_price", "updated_at"}),
	}).Create(margin).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, funnelID string) ([]domain.Margin, error) {
	stmt := db.WithContext(ctx).Model(&domain.Margin{})
	if funnelID != "" {
		stmt = stmt.Where("funnel_id = ?", funnelID)
	}

	var items []domain.Margin
	if err := stmt.Order("funnel_id asc").Order("tariff_type asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
