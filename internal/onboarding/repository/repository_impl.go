package repository

import (
	"context"
	"errors"
	"time"

	"github.com/enfinitus/onboarding/internal/onboarding/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, saga *domain.Saga) error {
	return db.WithContext(ctx).Create(saga).Error
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, contractID string) (*domain.Saga, error) {
	var saga domain.Saga
	err := db.WithContext(ctx).Where("contract_id = ?", contractID).Take(&saga).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &saga, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, contractID string, update domain.SagaUpdate) error {
	updates := map[string]any{
		"step":       update.Step,
		"updated_at": update.At,
	}
	if update.ContractDraftID != nil {
		updates["contract_draft_id"] = *update.ContractDraftID
	}
	if update.LastError != nil {
		updates["last_error"] = *update.LastError
	}
	return db.WithContext(ctx).
		Model(&domain.Saga{}).
		Where("contract_id = ?", contractID).
		Updates(updates).Error
}

func (r *repo) ListPending(ctx context.Context, db *gorm.DB, before time.Time, limit int) ([]domain.Saga, error) {
	var sagas []domain.Saga
	err := db.WithContext(ctx).
		Where("step IN ? AND updated_at < ?", []domain.SagaStep{domain.SagaStarted, domain.SagaDraftCreated}, before).
		Order("updated_at asc").
		Limit(limit).
		Find(&sagas).Error
	if err != nil {
		return nil, err
	}
	return sagas, nil
}
