package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertJob(ctx context.Context, db *gorm.DB, job *Job) error
	FindJob(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Job, error)
	ListQueuedIDs(ctx context.Context, db *gorm.DB, limit int) ([]snowflake.ID, error)
	// ClaimJob moves a QUEUED job to RUNNING and reports the rows changed.
	ClaimJob(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (int64, error)
	FinishJob(ctx context.Context, db *gorm.DB, id snowflake.ID, status JobStatus, outcome *string, lastErr *string, at time.Time) error
	CancelJob(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (int64, error)
	RequeueStale(ctx context.Context, db *gorm.DB, startedBefore, at time.Time) (int64, error)
}
