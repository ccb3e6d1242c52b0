package donorlink

import (
	"context"
	"strconv"
	"sync"

	"github.com/vitalsync/donorlink/kv"
)

// ProfileSubscriber receives the shared profile image value. present is
// false only while nothing has ever been set or hydrated.
type ProfileSubscriber func(value string, present bool)

type profileSubscription struct {
	id uint64
	fn ProfileSubscriber
}

// ProfileStore distributes one shared value — the profile image reference —
// to any number of subscribed views, with opportunistic durability in the
// injected persistent store.
//
// ProfileStore is explicitly constructed and owned by its [Client]; there is
// no package-level singleton. The in-memory value is authoritative: a
// persistence failure is audited and the update still broadcasts.
type ProfileStore struct {
	key      string
	kv       kv.Store
	maxDepth int
	client   *Client

	mu       sync.Mutex
	value    string
	present  bool
	hydrated bool
	nextID   uint64
	subs     []profileSubscription
	depth    int
}

func newProfileStore(cfg Config, store kv.Store, client *Client) *ProfileStore {
	maxDepth := cfg.Profile.MaxNotifyDepth
	if maxDepth <= 0 {
		maxDepth = 1
	}
	return &ProfileStore{
		key:      cfg.Storage.ProfileKey,
		kv:       store,
		maxDepth: maxDepth,
		client:   client,
	}
}

// Set updates the in-memory value, mirrors it to the persistent store, then
// synchronously notifies every subscriber in subscription order. Setting an
// empty string is a valid overwrite ("no image"), not a delete.
//
// A subscriber callback may call Set again; the nested cycle notifies the
// full current subscriber list. Nesting is bounded by MaxNotifyDepth — at
// the bound the value still updates and persists, but the fan-out is
// suppressed and audited.
func (p *ProfileStore) Set(ctx context.Context, value string) {
	if p == nil {
		return
	}

	p.mu.Lock()
	p.value = value
	p.present = true
	p.hydrated = true
	suppressed := p.depth >= p.maxDepth
	if !suppressed {
		p.depth++
	}
	subs := make([]profileSubscription, len(p.subs))
	copy(subs, p.subs)
	p.mu.Unlock()

	if err := p.kv.Set(ctx, p.key, value); err != nil {
		p.client.reportPersistence(ctx, "profile.set", err)
	}

	p.client.metricInc(MetricProfileSet)
	p.client.emit(ctx, AuditEvent{
		EventType: EventProfileSet,
		Success:   true,
	})

	if suppressed {
		p.client.metricInc(MetricProfileNotifySuppressed)
		p.client.emit(ctx, AuditEvent{
			EventType: EventProfileNotifySuppressed,
			Metadata:  map[string]string{"max_depth": strconv.Itoa(p.maxDepth)},
		})
		return
	}

	for _, sub := range subs {
		sub.fn(value, true)
	}

	p.mu.Lock()
	p.depth--
	p.mu.Unlock()
}

// Get returns the in-memory value if one exists, lazily hydrating from the
// persistent store on first read. The hydrate result is cached even when it
// is "absent". Concurrent first reads may each hit the store; they converge
// to whichever result lands first. A store failure is audited and reported
// as absent without being cached, so a later read can retry.
func (p *ProfileStore) Get(ctx context.Context) (string, bool) {
	if p == nil {
		return "", false
	}

	p.mu.Lock()
	if p.hydrated {
		value, present := p.value, p.present
		p.mu.Unlock()
		return value, present
	}
	p.mu.Unlock()

	raw, present, err := p.kv.Get(ctx, p.key)
	if err != nil {
		p.client.reportPersistence(ctx, "profile.hydrate", err)
		return "", false
	}

	p.mu.Lock()
	if !p.hydrated {
		p.value = raw
		p.present = present
		p.hydrated = true
	}
	value, has := p.value, p.present
	p.mu.Unlock()

	p.client.metricInc(MetricProfileHydrated)
	p.client.emit(ctx, AuditEvent{
		EventType: EventProfileHydrated,
		Success:   true,
		Metadata:  map[string]string{"present": strconv.FormatBool(has)},
	})

	return value, has
}

// Subscribe registers fn and immediately invokes it once with the current
// value, synchronously, before returning — a late subscriber observes the
// latest state without an extra fetch. The returned closure removes exactly
// this registration; calling it more than once is a no-op.
func (p *ProfileStore) Subscribe(fn ProfileSubscriber) func() {
	if p == nil || fn == nil {
		return func() {}
	}

	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.subs = append(p.subs, profileSubscription{id: id, fn: fn})
	value, present := p.value, p.present
	p.mu.Unlock()

	fn(value, present)

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		for i, sub := range p.subs {
			if sub.id == id {
				p.subs = append(p.subs[:i], p.subs[i+1:]...)
				return
			}
		}
	}
}

// SubscriberCount reports the number of live registrations.
func (p *ProfileStore) SubscriberCount() int {
	if p == nil {
		return 0
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}
