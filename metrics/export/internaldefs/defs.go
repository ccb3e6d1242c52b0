package internaldefs

import (
	donorlink "github.com/vitalsync/donorlink"
)

// CounterDef defines a public type used by donorlink APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   donorlink.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by donorlink APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   donorlink.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session core.
var CounterDefs = []CounterDef{
	{ID: donorlink.MetricLoginSuccess, Name: "donorlink_login_success_total", Help: "Successful login attempts."},
	{ID: donorlink.MetricLoginRejected, Name: "donorlink_login_rejected_total", Help: "Login attempts rejected by the backend."},
	{ID: donorlink.MetricLoginTransportError, Name: "donorlink_login_transport_error_total", Help: "Login attempts that failed to reach the backend."},
	{ID: donorlink.MetricSessionRestored, Name: "donorlink_session_restored_total", Help: "Sessions restored from the persistent store."},
	{ID: donorlink.MetricSessionDiscarded, Name: "donorlink_session_discarded_total", Help: "Malformed persisted sessions discarded at startup."},
	{ID: donorlink.MetricLogout, Name: "donorlink_logout_total", Help: "Logout operations."},
	{ID: donorlink.MetricGuardRedirectLogin, Name: "donorlink_guard_redirect_login_total", Help: "Guard redirects to the login route."},
	{ID: donorlink.MetricGuardRedirectLanding, Name: "donorlink_guard_redirect_landing_total", Help: "Guard redirects to a role landing route."},
	{ID: donorlink.MetricGuardAuthorized, Name: "donorlink_guard_authorized_total", Help: "Guard transitions into the authorized state."},
	{ID: donorlink.MetricProfileSet, Name: "donorlink_profile_set_total", Help: "Profile image broadcast updates."},
	{ID: donorlink.MetricProfileHydrated, Name: "donorlink_profile_hydrated_total", Help: "Profile image lazy hydrations from the persistent store."},
	{ID: donorlink.MetricProfileNotifySuppressed, Name: "donorlink_profile_notify_suppressed_total", Help: "Broadcast cycles suppressed at the re-entrancy bound."},
	{ID: donorlink.MetricPersistenceError, Name: "donorlink_persistence_error_total", Help: "Persistent store failures absorbed by the core."},
}

// HistogramDefs is an exported constant or variable used by the session core.
var HistogramDefs = []HistogramDef{
	{ID: donorlink.MetricLoginLatency, Name: "donorlink_login_latency_seconds", Help: "Login round-trip latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the session core.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the session core.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// bucket width.
//
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// both exporters emit.
//
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
