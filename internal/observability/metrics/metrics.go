package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeDegraded = "degraded"
	OutcomeRejected = "rejected"
)

const (
	FallbackMarginMissing   = "margin_missing"
	FallbackFeedUnavailable = "feed_unavailable"
	FallbackSnapshotFailed  = "snapshot_failed"
	FallbackNoVoucher       = "voucher_not_applicable"
)

// Metrics exposes onboarding instruments.
type Metrics struct {
	imports        metric.Int64Counter
	priceFallbacks metric.Int64Counter
	verifications  metric.Int64Counter
	manualEdits    metric.Int64Counter
	activations    metric.Int64Counter
	eventPublishes metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New creates the onboarding counters on the given provider.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "onboarding"
	}
	meter := provider.Meter(name)

	var (
		m   Metrics
		err error
	)
	if m.imports, err = meter.Int64Counter("onboarding_imports_total"); err != nil {
		return nil, err
	}
	if m.priceFallbacks, err = meter.Int64Counter("onboarding_price_fallbacks_total"); err != nil {
		return nil, err
	}
	if m.verifications, err = meter.Int64Counter("onboarding_verifications_total"); err != nil {
		return nil, err
	}
	if m.manualEdits, err = meter.Int64Counter("onboarding_manual_edits_total"); err != nil {
		return nil, err
	}
	if m.activations, err = meter.Int64Counter("onboarding_activations_total"); err != nil {
		return nil, err
	}
	if m.eventPublishes, err = meter.Int64Counter("onboarding_event_publishes_total"); err != nil {
		return nil, err
	}
	return &m, nil
}

// NewNop returns instruments backed by the noop provider, for tests and tools.
func NewNop() *Metrics {
	m, _ := New(Config{}, noop.NewMeterProvider())
	return m
}

func (m *Metrics) RecordImport(ctx context.Context, tariffType, outcome string) {
	if m == nil {
		return
	}
	m.imports.Add(ctx, 1, metric.WithAttributes(FilterAttributes(
		attribute.String("tariff_type", strings.TrimSpace(tariffType)),
		attribute.String("outcome", outcome),
	)...))
}

// RecordPriceFallback counts pricing steps that continued with a fallback value.
func (m *Metrics) RecordPriceFallback(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.priceFallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *Metrics) RecordVerification(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.verifications.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) RecordManualEdit(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.manualEdits.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) RecordActivation(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.activations.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) RecordEventPublish(ctx context.Context, eventType, outcome string) {
	if m == nil {
		return
	}
	m.eventPublishes.Add(ctx, 1, metric.WithAttributes(FilterAttributes(
		attribute.String("event_type", eventType),
		attribute.String("outcome", outcome),
	)...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"tariff_type": {},
	"outcome":     {},
	"reason":      {},
	"event_type":  {},
	"job":         {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
