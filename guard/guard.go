package guard

import (
	"context"
	"net/url"
	"sync"

	donorlink "github.com/vitalsync/donorlink"
)

// State defines a public type used by donorlink APIs.
//
// State instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type State uint8

const (
	// StateLoading means the session store has not finished initializing.
	// Render a neutral loading indicator; never redirect.
	StateLoading State = iota
	// StateUnauthenticated means initialization completed with no session.
	// The guard issues one redirect to the login route carrying the current
	// path as the return destination.
	StateUnauthenticated
	// StateUnauthorized means a session exists but its role is not in the
	// allowed set. The guard issues one redirect to the role's landing route.
	StateUnauthorized
	// StateAuthorized means the protected content may render.
	StateAuthorized
)

// String describes the string operation and its observable behavior.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateUnauthorized:
		return "unauthorized"
	case StateAuthorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Navigator is the fire-and-forget navigation collaborator. The guard does
// not wait for or verify completion.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to the [Navigator] interface.
type NavigatorFunc func(path string)

// Navigate describes the navigate operation and its observable behavior.
func (f NavigatorFunc) Navigate(path string) { f(path) }

// SessionSource supplies the guard's inputs. [donorlink.Client] satisfies it.
type SessionSource interface {
	Ready() bool
	CurrentSession() (donorlink.Session, bool)
}

// Recorder receives guard decisions for metrics and audit.
// [donorlink.Client] satisfies it; a nil recorder is valid.
type Recorder interface {
	RecordGuardDecision(ctx context.Context, state string, target string)
}

// Options configures one [Guard] instance. A guard protects one view: its
// allowed-role set and current path are fixed at construction, matching the
// lifetime of the view it gates.
type Options struct {
	// AllowedRoles lists the roles permitted to render the protected view.
	AllowedRoles []donorlink.Role
	// CurrentPath is appended to the login redirect as the return
	// destination.
	CurrentPath string
	// Routes overrides the redirect routes. The zero value uses
	// [donorlink.DefaultConfig] routes.
	Routes donorlink.GuardConfig
	// Recorder, when non-nil, observes every decision.
	Recorder Recorder
}

// Guard is the reactive access state machine for one protected view.
//
// Guard instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Guard struct {
	source  SessionSource
	nav     Navigator
	routes  donorlink.GuardConfig
	allowed map[donorlink.Role]struct{}
	path    string
	rec     Recorder

	mu    sync.Mutex
	state State
	fired bool
}

// New constructs a [Guard] over the given session source and navigator.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New(source SessionSource, nav Navigator, opts Options) *Guard {
	routes := opts.Routes
	if routes.LoginRoute == "" {
		routes = donorlink.DefaultConfig().Guard
	}

	allowed := make(map[donorlink.Role]struct{}, len(opts.AllowedRoles))
	for _, role := range opts.AllowedRoles {
		allowed[role] = struct{}{}
	}

	return &Guard{
		source:  source,
		nav:     nav,
		routes:  routes,
		allowed: allowed,
		path:    opts.CurrentPath,
		rec:     opts.Recorder,
		state:   StateLoading,
	}
}

// State returns the most recently evaluated state without re-evaluating.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Evaluate recomputes the state from the current inputs. The redirect side
// effect fires exactly once per transition into StateUnauthenticated or
// StateUnauthorized; re-evaluating with unchanged inputs re-issues nothing,
// guarding against redirect loops and duplicate navigation entries.
//
// Evaluate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Guard) Evaluate(ctx context.Context) State {
	next, target := g.decide()

	g.mu.Lock()
	transitioned := next != g.state
	g.state = next
	fire := false
	if transitioned {
		g.fired = false
	}
	if (next == StateUnauthenticated || next == StateUnauthorized) && !g.fired {
		g.fired = true
		fire = true
	}
	g.mu.Unlock()

	if fire && g.nav != nil {
		g.nav.Navigate(target)
	}
	if g.rec != nil && (fire || (transitioned && next == StateAuthorized)) {
		g.rec.RecordGuardDecision(ctx, next.String(), target)
	}

	return next
}

// decide maps the current inputs onto a state and redirect target.
func (g *Guard) decide() (State, string) {
	if g.source == nil || !g.source.Ready() {
		return StateLoading, ""
	}

	sess, ok := g.source.CurrentSession()
	if !ok {
		return StateUnauthenticated, g.loginTarget()
	}

	if _, permitted := g.allowed[sess.Role]; !permitted {
		return StateUnauthorized, g.landingTarget(sess.Role)
	}

	return StateAuthorized, ""
}

func (g *Guard) loginTarget() string {
	target := g.routes.LoginRoute
	if g.path != "" {
		target += "?" + g.routes.ReturnParam + "=" + url.QueryEscape(g.path)
	}
	return target
}

func (g *Guard) landingTarget(role donorlink.Role) string {
	if route, ok := g.routes.Landing[role]; ok {
		return route
	}
	return g.routes.DefaultLanding
}
