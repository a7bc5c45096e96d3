package repository

import (
	"context"
	"errors"

	"github.com/enfinitus/onboarding/internal/voucher/domain"
	"github.com/enfinitus/onboarding/pkg/db/option"
	"github.com/enfinitus/onboarding/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, voucher *domain.Voucher) error {
	return db.WithContext(ctx).Create(voucher).Error
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Voucher, error) {
	var voucher domain.Voucher
	err := db.WithContext(ctx).
		Where("voucher_code = ?", code).
		Take(&voucher).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &voucher, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListVoucherRequest, page pagination.Pagination) ([]domain.Voucher, error) {
	stmt := db.WithContext(ctx).Model(&domain.Voucher{})
	if filter.FunnelID != "" {
		stmt = stmt.Where("funnel_id = ?", filter.FunnelID)
	}
	stmt = option.WithSortBy(option.QuerySortBy{}).Apply(stmt)
	stmt = option.ApplyPagination(page).Apply(stmt)

	var items []domain.Voucher
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
