package donorlink

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vitalsync/donorlink/authapi"
	"github.com/vitalsync/donorlink/kv"
	"github.com/vitalsync/donorlink/token"
)

// Client defines a public type used by donorlink APIs.
//
// Client is the single source of truth for "who is logged in". It owns the
// in-memory session snapshot, the injected persistent store, and the profile
// broadcast store. Client instances are intended to be configured during
// initialization and then treated as immutable unless documented otherwise.
type Client struct {
	config  Config
	id      string
	kv      kv.Store
	auth    *authapi.Client
	tokens  *token.Manager
	audit   *auditDispatcher
	metrics *Metrics
	profile *ProfileStore

	mu          sync.RWMutex
	session     *Session
	initialized atomic.Bool
}

// ID returns the unique identifier stamped on this client's audit events.
func (c *Client) ID() string {
	if c == nil {
		return ""
	}
	return c.id
}

// Ready reports whether Initialize has completed. Guards render a neutral
// loading state until this is true.
func (c *Client) Ready() bool {
	return c != nil && c.initialized.Load()
}

// CurrentSession returns the in-memory session snapshot. It is a pure read:
// present-or-absent, never an error.
//
// CurrentSession does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) CurrentSession() (Session, bool) {
	if c == nil {
		return Session{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// Profile returns the process-wide profile broadcast store owned by this
// client.
func (c *Client) Profile() *ProfileStore {
	if c == nil {
		return nil
	}
	return c.profile
}

// Close describes the close operation and its observable behavior.
//
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.audit != nil {
		c.audit.Close()
	}
}

// AuditDropped returns the number of audit events shed by the dispatcher.
func (c *Client) AuditDropped() uint64 {
	if c == nil || c.audit == nil {
		return 0
	}
	return c.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

// GuardRoutes returns a copy of the configured guard routes so guards built
// over this client redirect consistently with its configuration.
func (c *Client) GuardRoutes() GuardConfig {
	if c == nil {
		return DefaultConfig().Guard
	}
	return cloneConfig(c.config).Guard
}

// RecordGuardDecision feeds guard decisions into this client's metrics and
// audit stream. It exists for the guard package, which observes sessions
// through an interface and cannot reach the unexported plumbing.
func (c *Client) RecordGuardDecision(ctx context.Context, state string, target string) {
	if c == nil {
		return
	}

	switch state {
	case "unauthenticated":
		c.metricInc(MetricGuardRedirectLogin)
	case "unauthorized":
		c.metricInc(MetricGuardRedirectLanding)
	case "authorized":
		c.metricInc(MetricGuardAuthorized)
		return
	default:
		return
	}

	c.emit(ctx, AuditEvent{
		EventType: EventGuardRedirect,
		Metadata: map[string]string{
			"state":  state,
			"target": target,
		},
	})
}

func (c *Client) metricInc(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}

func (c *Client) metricObserve(id MetricID, d time.Duration) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Observe(id, d)
}

func (c *Client) emit(ctx context.Context, event AuditEvent) {
	if c == nil || c.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.ClientID = c.id
	c.audit.Emit(ctx, event)
}
