// Package otelstate exports reactive-graph activity as OpenTelemetry
// metrics.
//
// Tracer implements state.Tracer; install it with state.SetTracer or let
// Install wire it up. Instruments: loom.state.objects.live (up/down counter
// of live objects), loom.state.changes and loom.state.recomputes (counters),
// loom.state.dependencies (counter of tracked edges), and
// loom.state.recompute.duration (histogram, seconds, spanning the full
// cascade under a recompute). All instruments carry a "kind" attribute.
package otelstate

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/go-loom/loom/pkg/state"
)

const instrumentationName = "github.com/go-loom/loom/pkg/otelstate"

// Tracer is a state.Tracer that records graph activity on OpenTelemetry
// instruments. Its hooks run inline on the graph's goroutine and only
// record measurements.
type Tracer struct {
	liveObjects   metric.Int64UpDownCounter
	changes       metric.Int64Counter
	recomputes    metric.Int64Counter
	dependencies  metric.Int64Counter
	recomputeSecs metric.Float64Histogram

	// recompute start stack; finish hooks nest under the single-threaded
	// core, so LIFO matching holds.
	starts []recomputeStart
}

type recomputeStart struct {
	id    uint64
	began time.Time
}

// NewTracer builds a Tracer on the given meter.
func NewTracer(meter metric.Meter) (*Tracer, error) {
	t := &Tracer{}
	var err error

	t.liveObjects, err = meter.Int64UpDownCounter(
		"loom.state.objects.live",
		metric.WithDescription("Number of live state objects"),
		metric.WithUnit("{object}"),
	)
	if err != nil {
		return nil, err
	}

	t.changes, err = meter.Int64Counter(
		"loom.state.changes",
		metric.WithDescription("Number of value writes"),
		metric.WithUnit("{change}"),
	)
	if err != nil {
		return nil, err
	}

	t.recomputes, err = meter.Int64Counter(
		"loom.state.recomputes",
		metric.WithDescription("Number of computed re-runs"),
		metric.WithUnit("{recompute}"),
	)
	if err != nil {
		return nil, err
	}

	t.dependencies, err = meter.Int64Counter(
		"loom.state.dependencies",
		metric.WithDescription("Number of dependency edges established"),
		metric.WithUnit("{edge}"),
	)
	if err != nil {
		return nil, err
	}

	t.recomputeSecs, err = meter.Float64Histogram(
		"loom.state.recompute.duration",
		metric.WithDescription("Recompute duration including the downstream cascade"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return t, nil
}

// Install builds a Tracer from meter and installs it process-wide with
// state.SetTracer. A nil meter uses the global provider. The returned func
// uninstalls the tracer.
func Install(meter metric.Meter) (func(), error) {
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}
	t, err := NewTracer(meter)
	if err != nil {
		return nil, err
	}
	state.SetTracer(t)
	return func() { state.SetTracer(nil) }, nil
}

func kindAttr(kind string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("kind", kind))
}

// ObjectCreated implements state.Tracer.
func (t *Tracer) ObjectCreated(obj state.ObjectInfo) {
	t.liveObjects.Add(context.Background(), 1, kindAttr(obj.Kind))
}

// ObjectDestroyed implements state.Tracer.
func (t *Tracer) ObjectDestroyed(obj state.ObjectInfo) {
	t.liveObjects.Add(context.Background(), -1, kindAttr(obj.Kind))
}

// ValueChanged implements state.Tracer.
func (t *Tracer) ValueChanged(obj state.ObjectInfo) {
	t.changes.Add(context.Background(), 1, kindAttr(obj.Kind))
}

// DependencyAdded implements state.Tracer.
func (t *Tracer) DependencyAdded(dependent, dependency state.ObjectInfo) {
	t.dependencies.Add(context.Background(), 1, kindAttr(dependent.Kind))
}

// RecomputeStarted implements state.Tracer.
func (t *Tracer) RecomputeStarted(obj state.ObjectInfo) {
	t.starts = append(t.starts, recomputeStart{id: obj.ID, began: time.Now()})
}

// RecomputeFinished implements state.Tracer.
func (t *Tracer) RecomputeFinished(obj state.ObjectInfo) {
	ctx := context.Background()
	t.recomputes.Add(ctx, 1, kindAttr(obj.Kind))
	for i := len(t.starts) - 1; i >= 0; i-- {
		if t.starts[i].id == obj.ID {
			t.recomputeSecs.Record(ctx, time.Since(t.starts[i].began).Seconds(), kindAttr(obj.Kind))
			t.starts = t.starts[:i]
			break
		}
	}
}

var _ state.Tracer = (*Tracer)(nil)
