package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/enfinitus/onboarding/internal/clock"
	obsmetrics "github.com/enfinitus/onboarding/internal/observability/metrics"
	onboardingdomain "github.com/enfinitus/onboarding/internal/onboarding/domain"
	verificationdomain "github.com/enfinitus/onboarding/internal/verification/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Verification verificationdomain.Service
	Onboarding   onboardingdomain.Service
	Metrics      *obsmetrics.WorkerMetrics `optional:"true"`
	Config       Config                    `optional:"true"`
}

// Scheduler runs the periodic maintenance jobs: re-queueing verification
// jobs whose worker vanished and resolving interrupted onboarding sagas.
type Scheduler struct {
	log          *zap.Logger
	cfg          Config
	genID        *snowflake.Node
	clock        clock.Clock
	verification verificationdomain.Service
	onboarding   onboardingdomain.Service
	metrics      *obsmetrics.WorkerMetrics
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.GenID == nil || p.Clock == nil || p.Verification == nil || p.Onboarding == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:          p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:          p.Config.withDefaults(),
		genID:        p.GenID,
		clock:        p.Clock,
		verification: p.Verification,
		onboarding:   p.Onboarding,
		metrics:      p.Metrics,
	}, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	timeout time.Duration,
	fn func(ctx context.Context) error,
) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	ctx, run, owner := s.ensureJobRun(ctx, name)
	if owner {
		s.logJobStart(ctx, run)
	}
	log := s.logger(ctx).With(
		zap.String("job", name),
		zap.String("run_id", run.runID),
	)
	s.metrics.IncJobRun(name)

	err := fn(ctx)
	s.metrics.ObserveJobDuration(name, s.clock.Now().Sub(start))
	s.metrics.AddProcessed(name, run.processedCount)
	if owner {
		if err != nil && run.errorCount == 0 {
			run.IncError()
		}
		s.logJobFinish(ctx, run)
	}
	if err == nil {
		return nil
	}

	s.metrics.IncJobError(name, err)
	// deadline is a soft timeout; the next tick picks up the remainder
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		log.Warn("job timed out",
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}

	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error

	jobs := []struct {
		Name    string
		Enabled bool
		Run     func(context.Context) error
	}{
		{obsmetrics.JobStaleRequeue, s.isJobEnabled(obsmetrics.JobStaleRequeue), func(ctx context.Context) error {
			return s.runJob(ctx, obsmetrics.JobStaleRequeue, s.cfg.JobTimeout, s.StaleRequeueJob)
		}},
		{obsmetrics.JobSagaRecovery, s.isJobEnabled(obsmetrics.JobSagaRecovery), func(ctx context.Context) error {
			return s.runJob(ctx, obsmetrics.JobSagaRecovery, s.cfg.JobTimeout, s.SagaRecoveryJob)
		}},
	}

	for _, job := range jobs {
		if job.Enabled {
			err = errors.Join(err, job.Run(parent))
		}
	}
	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()
	nextRun := s.clock.Now().Add(s.cfg.RunInterval)

	for {
		if runLag := s.clock.Now().Sub(nextRun); runLag > 0 {
			s.metrics.ObserveRunLoopLag(runLag)
		}
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}
		nextRun = nextRun.Add(s.cfg.RunInterval)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// StaleRequeueJob returns RUNNING verification jobs whose heartbeat is older
// than the stale threshold to the queue.
func (s *Scheduler) StaleRequeueJob(ctx context.Context) error {
	run := jobRunFromContext(ctx)
	n, err := s.verification.RequeueStale(ctx, s.cfg.StaleThreshold)
	if err != nil {
		return err
	}
	run.AddProcessed(int(n))
	if n > 0 {
		s.logger(ctx).Info("verification jobs requeued", zap.Int64("count", n))
	}
	return nil
}

// SagaRecoveryJob resolves onboarding sagas that stopped before completion.
func (s *Scheduler) SagaRecoveryJob(ctx context.Context) error {
	run := jobRunFromContext(ctx)
	n, err := s.onboarding.RecoverStale(ctx, s.cfg.SagaRecoveryThreshold)
	run.AddProcessed(n)
	return err
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	// empty list enables every job
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}
