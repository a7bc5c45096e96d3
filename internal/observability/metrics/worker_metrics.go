package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const (
	WorkerReasonDeadlineExceeded     = "deadline_exceeded"
	WorkerReasonSerializationFailure = "serialization_failure"
	WorkerReasonUniqueViolation      = "unique_violation"
	WorkerReasonDB                   = "db"
	WorkerReasonUnknown              = "unknown"
)

const (
	JobVerification   = "verification"
	JobStaleRequeue   = "stale_requeue"
	JobSagaRecovery   = "saga_recovery"
	JobQueuedDispatch = "queued_dispatch"
)

// WorkerMetrics captures background worker health as Prometheus series.
type WorkerMetrics struct {
	jobRuns     *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	jobErrors   *prometheus.CounterVec
	processed   *prometheus.CounterVec
	inFlight    prometheus.Gauge
	runLoopLag  prometheus.Observer
}

var (
	workerMetricsOnce sync.Once
	workerMetrics     *WorkerMetrics
)

// Worker returns the process-wide worker metrics registered on the default registry.
func Worker(cfg Config) *WorkerMetrics {
	workerMetricsOnce.Do(func() {
		workerMetrics = newWorkerMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return workerMetrics
}

// NewWorkerMetrics registers a fresh set of worker series on registerer.
func NewWorkerMetrics(registerer prometheus.Registerer, cfg Config) *WorkerMetrics {
	return newWorkerMetrics(registerer, cfg)
}

func newWorkerMetrics(registerer prometheus.Registerer, cfg Config) *WorkerMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "onboarding"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{"service": serviceName, "env": environment}

	m := &WorkerMetrics{
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "onboarding_worker_job_runs_total",
			Help:        "Background worker runs by job.",
			ConstLabels: constLabels,
		}, []string{"job"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "onboarding_worker_job_duration_seconds",
			Help:        "Background worker latency by job.",
			Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			ConstLabels: constLabels,
		}, []string{"job"}),
		jobErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "onboarding_worker_job_errors_total",
			Help:        "Background worker errors by low-cardinality reason.",
			ConstLabels: constLabels,
		}, []string{"job", "reason"}),
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "onboarding_worker_items_processed_total",
			Help:        "Items handled by background workers.",
			ConstLabels: constLabels,
		}, []string{"job"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "onboarding_verification_in_flight",
			Help:        "Verification jobs currently executing.",
			ConstLabels: constLabels,
		}),
	}
	lag := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "onboarding_worker_runloop_lag_seconds",
		Help:        "Sweep loop lag beyond the configured interval.",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		ConstLabels: constLabels,
	})
	m.runLoopLag = lag

	registerer.MustRegister(m.jobRuns, m.jobDuration, m.jobErrors, m.processed, m.inFlight, lag)
	return m
}

func (m *WorkerMetrics) IncJobRun(job string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job).Inc()
}

func (m *WorkerMetrics) ObserveJobDuration(job string, d time.Duration) {
	if m == nil {
		return
	}
	m.jobDuration.WithLabelValues(job).Observe(d.Seconds())
}

func (m *WorkerMetrics) IncJobError(job string, err error) {
	if m == nil || err == nil {
		return
	}
	m.jobErrors.WithLabelValues(job, ClassifyWorkerReason(err)).Inc()
}

func (m *WorkerMetrics) AddProcessed(job string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.processed.WithLabelValues(job).Add(float64(count))
}

func (m *WorkerMetrics) InFlight(delta float64) {
	if m == nil {
		return
	}
	m.inFlight.Add(delta)
}

func (m *WorkerMetrics) ObserveRunLoopLag(d time.Duration) {
	if m == nil {
		return
	}
	if d < 0 {
		d = 0
	}
	m.runLoopLag.Observe(d.Seconds())
}

// ClassifyWorkerReason maps worker errors to low-cardinality reasons.
func ClassifyWorkerReason(err error) string {
	switch {
	case err == nil:
		return WorkerReasonUnknown
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return WorkerReasonDeadlineExceeded
	case hasPGCode(err, "40001"):
		return WorkerReasonSerializationFailure
	case errors.Is(err, gorm.ErrDuplicatedKey), hasPGCode(err, "23505"):
		return WorkerReasonUniqueViolation
	case isDBError(err):
		return WorkerReasonDB
	default:
		return WorkerReasonUnknown
	}
}

func hasPGCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}

func isDBError(err error) bool {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false
	}
	if errors.Is(err, gorm.ErrInvalidDB) ||
		errors.Is(err, gorm.ErrInvalidTransaction) ||
		errors.Is(err, gorm.ErrInvalidData) {
		return true
	}
	var pgErr *pgconn.PgError
	var connErr *pgconn.ConnectError
	return errors.As(err, &pgErr) || errors.As(err, &connErr)
}
