package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, event *ContractEvent) error
	ListByContractID(ctx context.Context, db *gorm.DB, contractID string) ([]ContractEvent, error)
}
