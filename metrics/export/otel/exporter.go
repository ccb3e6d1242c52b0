package otel

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/metric"

	donorlink "github.com/vitalsync/donorlink"
	"github.com/vitalsync/donorlink/metrics/export/internaldefs"
)

// Source is the narrow view of a client the exporter needs. *donorlink.Client
// satisfies it.
type Source interface {
	MetricsSnapshot() donorlink.MetricsSnapshot
	AuditDropped() uint64
}

// Exporter defines a public type used by donorlink APIs.
//
// Exporter instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Exporter struct {
	source Source

	counters     map[donorlink.MetricID]metric.Int64ObservableCounter
	histBuckets  map[donorlink.MetricID][]metric.Int64ObservableGauge
	histCounts   map[donorlink.MetricID]metric.Int64ObservableGauge
	auditDropped metric.Int64ObservableCounter

	registration metric.Registration
}

// NewExporter registers observable instruments for every client counter and
// histogram on the given meter and wires a single collection callback that
// reads one snapshot per scrape.
//
// NewExporter returns an error for invalid input or failed effects instead of panicking.
func NewExporter(source Source, meter metric.Meter) (*Exporter, error) {
	if source == nil {
		return nil, errors.New("otel: source must not be nil")
	}
	if meter == nil {
		return nil, errors.New("otel: meter must not be nil")
	}

	e := &Exporter{
		source:      source,
		counters:    make(map[donorlink.MetricID]metric.Int64ObservableCounter, len(internaldefs.CounterDefs)),
		histBuckets: make(map[donorlink.MetricID][]metric.Int64ObservableGauge, len(internaldefs.HistogramDefs)),
		histCounts:  make(map[donorlink.MetricID]metric.Int64ObservableGauge, len(internaldefs.HistogramDefs)),
	}

	observables := make([]metric.Observable, 0, len(internaldefs.CounterDefs)+len(internaldefs.HistogramDefs)*(len(internaldefs.HistogramBounds)+1)+1)

	for _, def := range internaldefs.CounterDefs {
		inst, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("otel: register counter %s: %w", def.Name, err)
		}
		e.counters[def.ID] = inst
		observables = append(observables, inst)
	}

	for _, def := range internaldefs.HistogramDefs {
		buckets := make([]metric.Int64ObservableGauge, 0, len(internaldefs.HistogramBoundSuffix))
		for i, suffix := range internaldefs.HistogramBoundSuffix {
			name := fmt.Sprintf("%s_bucket_le_%s", def.Name, suffix)
			inst, err := meter.Int64ObservableGauge(name, metric.WithDescription(fmt.Sprintf("%s Cumulative count with upper bound %s.", def.Help, internaldefs.HistogramBounds[i])))
			if err != nil {
				return nil, fmt.Errorf("otel: register histogram bucket %s: %w", name, err)
			}
			buckets = append(buckets, inst)
			observables = append(observables, inst)
		}
		e.histBuckets[def.ID] = buckets

		countName := def.Name + "_count"
		countInst, err := meter.Int64ObservableGauge(countName, metric.WithDescription(fmt.Sprintf("%s Total observation count.", def.Help)))
		if err != nil {
			return nil, fmt.Errorf("otel: register histogram count %s: %w", countName, err)
		}
		e.histCounts[def.ID] = countInst
		observables = append(observables, countInst)
	}

	dropped, err := meter.Int64ObservableCounter(
		"donorlink_audit_dropped_total",
		metric.WithDescription("Audit events dropped because the dispatcher buffer was full."),
	)
	if err != nil {
		return nil, fmt.Errorf("otel: register audit dropped counter: %w", err)
	}
	e.auditDropped = dropped
	observables = append(observables, dropped)

	reg, err := meter.RegisterCallback(e.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("otel: register callback: %w", err)
	}
	e.registration = reg

	return e, nil
}

func (e *Exporter) observe(_ context.Context, observer metric.Observer) error {
	snap := e.source.MetricsSnapshot()

	for id, inst := range e.counters {
		observer.ObserveInt64(inst, int64(snap.Counters[id]))
	}

	for id, buckets := range e.histBuckets {
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snap.Histograms[id]))
		for i, inst := range buckets {
			observer.ObserveInt64(inst, int64(cumulative[i]))
		}
		if countInst, ok := e.histCounts[id]; ok {
			observer.ObserveInt64(countInst, int64(cumulative[len(cumulative)-1]))
		}
	}

	observer.ObserveInt64(e.auditDropped, int64(e.source.AuditDropped()))
	return nil
}

// Close unregisters the collection callback. The exporter must not be used
// after Close returns.
//
// Close returns an error for invalid input or failed effects instead of panicking.
func (e *Exporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
