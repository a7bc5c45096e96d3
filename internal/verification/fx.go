package verification

import (
	"context"

	"github.com/enfinitus/onboarding/internal/config"
	"github.com/enfinitus/onboarding/internal/observability/metrics"
	"github.com/enfinitus/onboarding/internal/verification/domain"
	"github.com/enfinitus/onboarding/internal/verification/repository"
	"github.com/enfinitus/onboarding/internal/verification/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("verification.service",
	fx.Provide(repository.Provide),
	fx.Provide(ProvideDecider),
	fx.Provide(service.New),
	fx.Provide(ProvideWorker),
	fx.Provide(func(w *service.Worker) domain.Notifier { return w }),
	fx.Invoke(StartWorker),
)

// ProvideDecider approves drafts at the configured ratio.
func ProvideDecider(cfg config.Config) domain.Decider {
	return domain.RandomDecider(cfg.Verification.ApproveRatio)
}

func ProvideWorker(cfg config.Config, svc domain.Service, log *zap.Logger, m *metrics.WorkerMetrics) *service.Worker {
	return service.NewWorker(svc, service.WorkerConfig{
		Workers:      cfg.Verification.Workers,
		PollInterval: cfg.Verification.SweepInterval,
		JobTimeout:   cfg.Verification.JobTimeout,
	}, log, m)
}

func StartWorker(lc fx.Lifecycle, worker *service.Worker) {
	var cancel context.CancelFunc
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			go func() {
				defer close(done)
				worker.Run(ctx)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-ctx.Done():
			}
			return nil
		},
	})
}
