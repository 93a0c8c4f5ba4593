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

// Metrics exposes application-level instruments.
type Metrics struct {
	calculations        metric.Int64Counter
	calculationFailures metric.Int64Counter
	grossMarginFallback metric.Int64Counter
	profilesAggregated  metric.Int64Histogram
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
				if log != nil {
					log.Info("shutting down meter provider")
				}
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

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "ratecard"
	}
	meter := provider.Meter(name)

	calculations, err := meter.Int64Counter("ratecard_rating_calculations_total")
	if err != nil {
		return nil, err
	}
	calculationFailures, err := meter.Int64Counter("ratecard_rating_calculation_failures_total")
	if err != nil {
		return nil, err
	}
	grossMarginFallback, err := meter.Int64Counter("ratecard_rating_gross_margin_fallback_total")
	if err != nil {
		return nil, err
	}
	profilesAggregated, err := meter.Int64Histogram("ratecard_rating_profiles_aggregated")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		calculations:        calculations,
		calculationFailures: calculationFailures,
		grossMarginFallback: grossMarginFallback,
		profilesAggregated:  profilesAggregated,
	}, nil
}

// RecordCalculation counts a successful aggregation and the number of profiles it folded.
func (m *Metrics) RecordCalculation(ctx context.Context, operation, rateType string, profiles int) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("operation", strings.TrimSpace(operation)),
		attribute.String("rate_type", strings.TrimSpace(rateType)),
	)
	m.calculations.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.profilesAggregated.Record(ctx, int64(profiles), metric.WithAttributes(attrs...))
}

// RecordCalculationFailure counts failed aggregations by low-cardinality reason.
func (m *Metrics) RecordCalculationFailure(ctx context.Context, operation, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("operation", strings.TrimSpace(operation)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.calculationFailures.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordGrossMarginFallback counts applications of the 100% gross margin doubling rule.
func (m *Metrics) RecordGrossMarginFallback(ctx context.Context) {
	if m == nil {
		return
	}
	m.grossMarginFallback.Add(ctx, 1)
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
	"operation":   {},
	"rate_type":   {},
	"adjustment":  {},
	"endpoint":    {},
	"status_code": {},
	"reason":      {},
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
