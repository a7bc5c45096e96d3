package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type EventType string

const (
	EventDraftCreated     EventType = "DRAFT_CREATED"
	EventValidationPassed EventType = "VALIDATION_PASSED"
	EventValidationFailed EventType = "VALIDATION_FAILED"
	EventManualEdit       EventType = "MANUAL_EDIT"
	EventActivated        EventType = "ACTIVATED"
)

func (t EventType) Valid() bool {
	switch t {
	case EventDraftCreated, EventValidationPassed, EventValidationFailed, EventManualEdit, EventActivated:
		return true
	default:
		return false
	}
}

// ContractEvent is an append-only record of a contract state transition.
type ContractEvent struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	ContractID string            `gorm:"not null;index:ix_contract_events_contract_created,priority:1" json:"contract_id"`
	EventType  EventType         `gorm:"type:varchar(32);not null" json:"event_type"`
	Actor      *string           `json:"actor,omitempty"`
	Details    datatypes.JSONMap `gorm:"type:json" json:"details,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;index:ix_contract_events_contract_created,priority:2" json:"created_at"`
}

func (ContractEvent) TableName() string { return "contract_events" }
