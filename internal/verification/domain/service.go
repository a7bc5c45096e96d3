package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Service interface {
	// Verify decides a PENDING draft. A draft that is already decided is left
	// unchanged and its current status returned.
	Verify(ctx context.Context, contractDraftID snowflake.ID) (Outcome, error)

	Enqueue(ctx context.Context, db *gorm.DB, contractID string, contractDraftID snowflake.ID) (Job, error)
	Cancel(ctx context.Context, jobID string) (Job, error)
	GetJob(ctx context.Context, jobID string) (Job, error)

	ClaimQueued(ctx context.Context, limit int) ([]Job, error)
	Execute(ctx context.Context, job Job) (Job, error)
	RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Notifier wakes the worker after a job has been enqueued.
type Notifier interface {
	Notify()
}

var (
	ErrInvalidJobID     = errors.New("invalid_verification_job_id")
	ErrJobNotFound      = errors.New("verification_job_not_found")
	ErrJobNotCancelable = errors.New("verification_job_not_cancelable")
)
