package metrics

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("operation", "calculate_rates"),
		attribute.String("team_id", "456"),
		attribute.String("rate_type", "HOURLY"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "operation" && attrs[1].Key != "operation" {
		t.Fatalf("expected operation to be retained")
	}
	if attrs[0].Key != "rate_type" && attrs[1].Key != "rate_type" {
		t.Fatalf("expected rate_type to be retained")
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.RecordCalculation(context.Background(), "calculate_rates", "HOURLY", 2)
	m.RecordCalculationFailure(context.Background(), "calculate_rates", "not_found")
	m.RecordGrossMarginFallback(context.Background())
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{}, noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.RecordCalculation(context.Background(), "calculate_metrics", "", 3)
	m.RecordGrossMarginFallback(context.Background())
}
