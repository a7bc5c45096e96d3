package service

import (
	"context"
	"sync"
	"time"

	"github.com/enfinitus/onboarding/internal/observability/metrics"
	"github.com/enfinitus/onboarding/internal/verification/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

type WorkerConfig struct {
	Workers      int
	PollInterval time.Duration
	JobTimeout   time.Duration
}

func (c WorkerConfig) withDefaults() WorkerConfig {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 30 * time.Second
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = 30 * time.Second
	}
	return c
}

// Worker runs queued verification jobs on a bounded pool. It wakes on Notify
// and on every poll tick.
type Worker struct {
	svc     domain.Service
	log     *zap.Logger
	cfg     WorkerConfig
	sem     *semaphore.Weighted
	kick    chan struct{}
	wg      sync.WaitGroup
	metrics *metrics.WorkerMetrics
}

func NewWorker(svc domain.Service, cfg WorkerConfig, log *zap.Logger, m *metrics.WorkerMetrics) *Worker {
	cfg = cfg.withDefaults()
	return &Worker{
		svc:     svc,
		log:     log.Named("verification.worker"),
		cfg:     cfg,
		sem:     semaphore.NewWeighted(int64(cfg.Workers)),
		kick:    make(chan struct{}, 1),
		metrics: m,
	}
}

func (w *Worker) Notify() {
	select {
	case w.kick <- struct{}{}:
	default:
	}
}

// Run dispatches until ctx is canceled, then waits for running jobs.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()
	defer w.wg.Wait()

	w.log.Info("verification worker started", zap.Int("workers", w.cfg.Workers))
	for {
		if _, err := w.Dispatch(ctx); err != nil && ctx.Err() == nil {
			w.log.Warn("verification dispatch failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			w.log.Info("verification worker stopping")
			return
		case <-w.kick:
		case <-ticker.C:
		}
	}
}

// Dispatch claims queued jobs up to the pool size and starts them. It returns
// the number of jobs started.
func (w *Worker) Dispatch(ctx context.Context) (int, error) {
	start := time.Now()
	jobs, err := w.svc.ClaimQueued(ctx, w.cfg.Workers)
	if w.metrics != nil {
		w.metrics.IncJobRun(metrics.JobQueuedDispatch)
		w.metrics.ObserveRunLoopLag(time.Since(start))
	}
	if err != nil {
		if w.metrics != nil {
			w.metrics.IncJobError(metrics.JobQueuedDispatch, err)
		}
		if len(jobs) == 0 {
			return 0, err
		}
	}

	started := 0
	for _, job := range jobs {
		if acquireErr := w.sem.Acquire(ctx, 1); acquireErr != nil {
			// remaining claimed jobs stay RUNNING until the stale sweep requeues them
			return started, acquireErr
		}
		started++
		w.wg.Add(1)
		go w.execute(ctx, job)
	}
	return started, err
}

// Wait blocks until every started job has finished.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) execute(parent context.Context, job domain.Job) {
	defer w.wg.Done()
	defer w.sem.Release(1)

	if w.metrics != nil {
		w.metrics.InFlight(1)
		defer w.metrics.InFlight(-1)
	}

	ctx, cancel := context.WithTimeout(parent, w.cfg.JobTimeout)
	defer cancel()

	start := time.Now()
	_, err := w.svc.Execute(ctx, job)
	if w.metrics != nil {
		w.metrics.IncJobRun(metrics.JobVerification)
		w.metrics.ObserveJobDuration(metrics.JobVerification, time.Since(start))
		if err != nil {
			w.metrics.IncJobError(metrics.JobVerification, err)
		} else {
			w.metrics.AddProcessed(metrics.JobVerification, 1)
		}
	}
}
