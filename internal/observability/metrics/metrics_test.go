package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("tariff_type", "GREEN"),
		attribute.String("customer_id", "456"),
		attribute.String("outcome", "success"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	for _, attr := range attrs {
		if attr.Key == "customer_id" {
			t.Fatalf("customer_id must be dropped")
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.RecordImport(context.Background(), "STANDARD", OutcomeSuccess)
	m.RecordPriceFallback(context.Background(), FallbackMarginMissing)

	var w *WorkerMetrics
	w.IncJobRun(JobVerification)
	w.ObserveRunLoopLag(time.Second)
}

func TestNewNop(t *testing.T) {
	m := NewNop()
	if m == nil {
		t.Fatal("expected noop metrics")
	}
	m.RecordActivation(context.Background(), OutcomeSuccess)
}

func TestClassifyWorkerReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"deadline", context.DeadlineExceeded, WorkerReasonDeadlineExceeded},
		{"serialization_failure", &pgconn.PgError{Code: "40001"}, WorkerReasonSerializationFailure},
		{"unique_violation", gorm.ErrDuplicatedKey, WorkerReasonUniqueViolation},
		{"db", &pgconn.PgError{Code: "42P01"}, WorkerReasonDB},
		{"unknown", errors.New("boom"), WorkerReasonUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyWorkerReason(tc.err); got != tc.want {
				t.Fatalf("expected reason %q, got %q", tc.want, got)
			}
		})
	}
}

func TestAddProcessed(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newWorkerMetrics(registry, Config{ServiceName: "onboarding", Environment: "test"})

	m.AddProcessed(JobVerification, 3)
	m.AddProcessed(JobVerification, 0)

	got := testutil.ToFloat64(m.processed.WithLabelValues(JobVerification))
	if got != 3 {
		t.Fatalf("expected processed count 3, got %v", got)
	}
}
