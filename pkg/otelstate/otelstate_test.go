package otelstate

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/go-loom/loom/pkg/state"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumInt64(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s data = %T, want Sum[int64]", m.Name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestTracerExportsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	tracer, err := NewTracer(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewTracer: %v", err)
	}
	state.SetTracer(tracer)
	defer state.SetTracer(nil)

	v := state.NewValue(1)
	state.NewComputed(func(tr *state.Tracker) int {
		return state.Use(tr, v) + 1
	})
	v.Set(2)
	v.Set(3)
	v.Destroy()

	metrics := collect(t, reader)

	for _, name := range []string{
		"loom.state.objects.live",
		"loom.state.changes",
		"loom.state.recomputes",
		"loom.state.dependencies",
		"loom.state.recompute.duration",
	} {
		if _, ok := metrics[name]; !ok {
			t.Errorf("missing metric %s", name)
		}
	}

	if live := sumInt64(t, metrics["loom.state.objects.live"]); live != 1 {
		t.Errorf("objects.live = %d, want 1 (two created, one destroyed)", live)
	}
	if changes := sumInt64(t, metrics["loom.state.changes"]); changes != 2 {
		t.Errorf("changes = %d, want 2", changes)
	}
	if recomputes := sumInt64(t, metrics["loom.state.recomputes"]); recomputes != 2 {
		t.Errorf("recomputes = %d, want 2", recomputes)
	}
	if deps := sumInt64(t, metrics["loom.state.dependencies"]); deps != 1 {
		t.Errorf("dependencies = %d, want 1", deps)
	}

	histo, ok := metrics["loom.state.recompute.duration"].Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("duration data = %T, want Histogram[float64]", metrics["loom.state.recompute.duration"].Data)
	}
	var count uint64
	for _, dp := range histo.DataPoints {
		count += dp.Count
	}
	if count != 2 {
		t.Errorf("duration samples = %d, want 2", count)
	}
}

func TestInstallUninstall(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	uninstall, err := Install(mp.Meter("test"))
	if err != nil {
		t.Fatalf("Install: %v", err)
	}

	state.NewValue("tracked")
	uninstall()
	state.NewValue("untracked")

	metrics := collect(t, reader)
	if live := sumInt64(t, metrics["loom.state.objects.live"]); live != 1 {
		t.Errorf("objects.live = %d, want 1 (second value created after uninstall)", live)
	}
}
