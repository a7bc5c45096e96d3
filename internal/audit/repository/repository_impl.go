package repository

import (
	"context"

	"github.com/enfinitus/onboarding/internal/audit/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, event *domain.ContractEvent) error {
	if event == nil {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO contract_events (
			id, contract_id, event_type, actor, details, created_at
		) VALUES (?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.ContractID,
		event.EventType,
		event.Actor,
		event.Details,
		event.CreatedAt,
	).Error
}

// ListByContractID returns events in creation order; the snowflake id breaks
// ties between events written in the same instant.
func (r *repo) ListByContractID(ctx context.Context, db *gorm.DB, contractID string) ([]domain.ContractEvent, error) {
	var events []domain.ContractEvent
	err := db.WithContext(ctx).
		Model(&domain.ContractEvent{}).
		Where("contract_id = ?", contractID).
		Order("created_at asc, id asc").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
