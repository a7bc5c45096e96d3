package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/enfinitus/onboarding/internal/verification/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertJob(ctx context.Context, db *gorm.DB, job *domain.Job) error {
	return db.WithContext(ctx).Create(job).Error
}

func (r *repo) FindJob(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Job, error) {
	var job domain.Job
	err := db.WithContext(ctx).Where("id = ?", id).Take(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

func (r *repo) ListQueuedIDs(ctx context.Context, db *gorm.DB, limit int) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).
		Model(&domain.Job{}).
		Where("status = ?", domain.JobQueued).
		Order("id asc").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repo) ClaimJob(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Job{}).
		Where("id = ? AND status = ?", id, domain.JobQueued).
		Updates(map[string]any{
			"status":     domain.JobRunning,
			"attempts":   gorm.Expr("attempts + 1"),
			"started_at": at,
			"updated_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *repo) FinishJob(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.JobStatus, outcome *string, lastErr *string, at time.Time) error {
	updates := map[string]any{
		"status":     status,
		"outcome":    outcome,
		"last_error": lastErr,
		"updated_at": at,
	}
	if status.Terminal() {
		updates["finished_at"] = at
	}
	return db.WithContext(ctx).
		Model(&domain.Job{}).
		Where("id = ? AND status = ?", id, domain.JobRunning).
		Updates(updates).Error
}

func (r *repo) CancelJob(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Job{}).
		Where("id = ? AND status = ?", id, domain.JobQueued).
		Updates(map[string]any{
			"status":      domain.JobCanceled,
			"finished_at": at,
			"updated_at":  at,
		})
	return res.RowsAffected, res.Error
}

func (r *repo) RequeueStale(ctx context.Context, db *gorm.DB, startedBefore, at time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Job{}).
		Where("status = ? AND started_at < ?", domain.JobRunning, startedBefore).
		Updates(map[string]any{
			"status":     domain.JobQueued,
			"updated_at": at,
		})
	return res.RowsAffected, res.Error
}
