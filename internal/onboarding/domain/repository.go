package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type SagaUpdate struct {
	Step            SagaStep
	ContractDraftID *snowflake.ID
	LastError       *string
	At              time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, saga *Saga) error
	Find(ctx context.Context, db *gorm.DB, contractID string) (*Saga, error)
	Update(ctx context.Context, db *gorm.DB, contractID string, update SagaUpdate) error
	// ListPending returns sagas in STARTED or DRAFT_CREATED untouched since before.
	ListPending(ctx context.Context, db *gorm.DB, before time.Time, limit int) ([]Saga, error)
}
