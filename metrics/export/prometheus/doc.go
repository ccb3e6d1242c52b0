// Package prometheus renders client metrics in Prometheus text exposition
// format.
//
// [NewExporter] accepts a [donorlink.Client] and exposes an [http.Handler]
// that renders all counters and histograms. Counter names are prefixed
// donorlink_*_total; the single histogram is donorlink_login_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate client state.
package prometheus
