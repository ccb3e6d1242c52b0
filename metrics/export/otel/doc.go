// Package otel bridges client metrics snapshots into an OpenTelemetry
// meter via observable instruments. The bridge is pull-based: nothing is
// recorded on the hot path, the registered callback reads a snapshot when
// the reader collects.
package otel
