package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type AppendRequest struct {
	ContractID string
	EventType  EventType
	// Actor falls back to the operator carried by the context.
	Actor   string
	Details map[string]any
}

type Service interface {
	// Append writes the event through db, usually the caller's transaction.
	Append(ctx context.Context, db *gorm.DB, req AppendRequest) (ContractEvent, error)
	// Publish forwards committed events to subscribers. Failures are logged.
	Publish(ctx context.Context, events ...ContractEvent)
	// Record appends outside any transaction and publishes immediately.
	Record(ctx context.Context, req AppendRequest) (ContractEvent, error)
	List(ctx context.Context, contractID string) ([]ContractEvent, error)
}

var (
	ErrInvalidContractID = errors.New("invalid_contract_id")
	ErrInvalidEventType  = errors.New("invalid_event_type")
)
