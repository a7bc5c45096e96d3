package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	contractdomain "github.com/enfinitus/onboarding/internal/contract/domain"
)

// Outcome is the verification decision for a draft.
type Outcome = contractdomain.VerificationStatus

const (
	OutcomeApproved = contractdomain.VerificationApproved
	OutcomeRejected = contractdomain.VerificationRejected
)

type JobStatus string

const (
	JobQueued    JobStatus = "QUEUED"
	JobRunning   JobStatus = "RUNNING"
	JobSucceeded JobStatus = "SUCCEEDED"
	JobFailed    JobStatus = "FAILED"
	JobCanceled  JobStatus = "CANCELED"
)

func (s JobStatus) Terminal() bool {
	return s == JobSucceeded || s == JobFailed || s == JobCanceled
}

// Job is a persisted request to verify one contract draft.
type Job struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	ContractID      string       `gorm:"not null;index" json:"contract_id"`
	ContractDraftID snowflake.ID `gorm:"not null;index" json:"contract_draft_id"`
	Status          JobStatus    `gorm:"type:varchar(16);not null;index" json:"status"`
	Outcome         *string      `gorm:"type:varchar(16)" json:"outcome,omitempty"`
	Attempts        int          `gorm:"not null;default:0" json:"attempts"`
	LastError       *string      `json:"last_error,omitempty"`
	CreatedAt       time.Time    `gorm:"not null" json:"created_at"`
	StartedAt       *time.Time   `json:"started_at,omitempty"`
	FinishedAt      *time.Time   `json:"finished_at,omitempty"`
	UpdatedAt       time.Time    `gorm:"not null" json:"updated_at"`
}

func (Job) TableName() string { return "verification_jobs" }
