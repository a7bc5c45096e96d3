package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/enfinitus/onboarding/internal/audit/domain"
	"github.com/enfinitus/onboarding/internal/clock"
	contractdomain "github.com/enfinitus/onboarding/internal/contract/domain"
	"github.com/enfinitus/onboarding/internal/observability/logger"
	"github.com/enfinitus/onboarding/internal/observability/metrics"
	"github.com/enfinitus/onboarding/internal/verification/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultMaxAttempts = 3
	systemActor        = "system:verification"
)

var errAlreadyDecided = errors.New("already_decided")

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	ContractRepo contractdomain.Repository
	Audit        auditdomain.Service
	Decider      domain.Decider
	Metrics      *metrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	contractRepo contractdomain.Repository
	audit        auditdomain.Service
	decider      domain.Decider
	metrics      *metrics.Metrics
	maxAttempts  int
}

func New(p Params) domain.Service {
	m := p.Metrics
	if m == nil {
		m = metrics.NewNop()
	}
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("verification.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		contractRepo: p.ContractRepo,
		audit:        p.Audit,
		decider:      p.Decider,
		metrics:      m,
		maxAttempts:  defaultMaxAttempts,
	}
}

func (s *Service) Verify(ctx context.Context, contractDraftID snowflake.ID) (domain.Outcome, error) {
	draft, err := s.contractRepo.FindDraftByID(ctx, s.db, contractDraftID)
	if err != nil {
		return "", err
	}
	if draft == nil {
		return "", contractdomain.ErrDraftNotFound
	}
	if draft.VerificationStatus != contractdomain.VerificationPending {
		return draft.VerificationStatus, nil
	}

	malo, err := s.contractRepo.FindMaLoDraftByDraftID(ctx, s.db, draft.ID)
	if err != nil {
		return "", err
	}
	if malo == nil {
		return "", contractdomain.ErrMaLoDraftNotFound
	}

	outcome, err := s.decider.Decide(ctx, *draft, *malo)
	if err != nil {
		return "", fmt.Errorf("decide: %w", err)
	}
	if outcome != domain.OutcomeApproved && outcome != domain.OutcomeRejected {
		return "", fmt.Errorf("decide: unexpected outcome %q", outcome)
	}

	eventType := auditdomain.EventValidationPassed
	if outcome == domain.OutcomeRejected {
		eventType = auditdomain.EventValidationFailed
	}

	var event auditdomain.ContractEvent
	now := s.clock.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.contractRepo.SetDraftVerification(ctx, tx, draft.ID, outcome, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			return errAlreadyDecided
		}
		if err := s.contractRepo.SetMaLoVerification(ctx, tx, malo.ID, outcome, outcome == domain.OutcomeApproved, now); err != nil {
			return err
		}
		event, err = s.audit.Append(ctx, tx, auditdomain.AppendRequest{
			ContractID: draft.ContractID,
			EventType:  eventType,
			Actor:      systemActor,
			Details: map[string]any{
				"contract_draft_id": draft.ID.String(),
				"malo_draft_id":     malo.ID.String(),
				"outcome":           string(outcome),
			},
		})
		return err
	})
	if errors.Is(err, errAlreadyDecided) {
		current, findErr := s.contractRepo.FindDraftByID(ctx, s.db, draft.ID)
		if findErr != nil || current == nil {
			return "", errors.Join(err, findErr)
		}
		return current.VerificationStatus, nil
	}
	if err != nil {
		s.metrics.RecordVerification(ctx, metrics.OutcomeFailure)
		return "", err
	}

	s.audit.Publish(ctx, event)
	if outcome == domain.OutcomeApproved {
		s.metrics.RecordVerification(ctx, metrics.OutcomeSuccess)
	} else {
		s.metrics.RecordVerification(ctx, metrics.OutcomeRejected)
	}

	logger.WithContext(ctx, s.log).Info("contract draft verified",
		zap.String("contract_id", draft.ContractID),
		zap.String("contract_draft_id", draft.ID.String()),
		zap.String("outcome", string(outcome)),
	)
	return outcome, nil
}

func (s *Service) Enqueue(ctx context.Context, db *gorm.DB, contractID string, contractDraftID snowflake.ID) (domain.Job, error) {
	if db == nil {
		db = s.db
	}

	now := s.clock.Now()
	job := domain.Job{
		ID:              s.genID.Generate(),
		ContractID:      contractID,
		ContractDraftID: contractDraftID,
		Status:          domain.JobQueued,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.InsertJob(ctx, db, &job); err != nil {
		return domain.Job{}, err
	}
	return job, nil
}

func (s *Service) Cancel(ctx context.Context, jobID string) (domain.Job, error) {
	id, err := parseJobID(jobID)
	if err != nil {
		return domain.Job{}, err
	}

	rows, err := s.repo.CancelJob(ctx, s.db, id, s.clock.Now())
	if err != nil {
		return domain.Job{}, err
	}

	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return domain.Job{}, err
	}
	if rows == 0 {
		return job, domain.ErrJobNotCancelable
	}
	return job, nil
}

func (s *Service) GetJob(ctx context.Context, jobID string) (domain.Job, error) {
	id, err := parseJobID(jobID)
	if err != nil {
		return domain.Job{}, err
	}

	job, err := s.repo.FindJob(ctx, s.db, id)
	if err != nil {
		return domain.Job{}, err
	}
	if job == nil {
		return domain.Job{}, domain.ErrJobNotFound
	}
	return *job, nil
}

// ClaimQueued marks up to limit QUEUED jobs RUNNING. Jobs claimed by another
// worker in between are skipped.
func (s *Service) ClaimQueued(ctx context.Context, limit int) ([]domain.Job, error) {
	if limit <= 0 {
		return nil, nil
	}

	ids, err := s.repo.ListQueuedIDs(ctx, s.db, limit)
	if err != nil {
		return nil, err
	}

	claimed := make([]domain.Job, 0, len(ids))
	for _, id := range ids {
		rows, err := s.repo.ClaimJob(ctx, s.db, id, s.clock.Now())
		if err != nil {
			return claimed, err
		}
		if rows == 0 {
			continue
		}
		job, err := s.repo.FindJob(ctx, s.db, id)
		if err != nil {
			return claimed, err
		}
		if job != nil {
			claimed = append(claimed, *job)
		}
	}
	return claimed, nil
}

// Execute runs Verify for a claimed job and records the result. Failed jobs are
// queued again until they reach the attempt limit.
func (s *Service) Execute(ctx context.Context, job domain.Job) (domain.Job, error) {
	log := logger.WithContext(ctx, s.log).With(
		zap.String("job_id", job.ID.String()),
		zap.String("contract_id", job.ContractID),
	)

	outcome, verifyErr := s.Verify(ctx, job.ContractDraftID)

	status := domain.JobSucceeded
	var outcomePtr, lastErr *string
	if verifyErr == nil {
		value := string(outcome)
		outcomePtr = &value
	} else {
		msg := verifyErr.Error()
		lastErr = &msg
		status = domain.JobFailed
		if job.Attempts < s.maxAttempts && !errors.Is(verifyErr, contractdomain.ErrDraftNotFound) {
			status = domain.JobQueued
		}
		log.Warn("verification job failed",
			zap.Int("attempts", job.Attempts),
			zap.String("next_status", string(status)),
			zap.Error(verifyErr),
		)
	}

	// the job row is finalised even when the caller's context is done
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.repo.FinishJob(finishCtx, s.db, job.ID, status, outcomePtr, lastErr, s.clock.Now()); err != nil {
		return job, errors.Join(verifyErr, err)
	}

	updated, err := s.repo.FindJob(finishCtx, s.db, job.ID)
	if err != nil || updated == nil {
		return job, errors.Join(verifyErr, err)
	}
	return *updated, verifyErr
}

func (s *Service) RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	now := s.clock.Now()
	rows, err := s.repo.RequeueStale(ctx, s.db, now.Add(-olderThan), now)
	if err != nil {
		return 0, err
	}
	if rows > 0 {
		s.log.Warn("requeued stale verification jobs", zap.Int64("count", rows))
	}
	return rows, nil
}

func parseJobID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidJobID
	}
	return id, nil
}
