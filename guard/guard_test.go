package guard

import (
	"context"
	"testing"

	donorlink "github.com/vitalsync/donorlink"
)

type fakeSource struct {
	ready   bool
	session donorlink.Session
	present bool
}

func (f *fakeSource) Ready() bool { return f.ready }

func (f *fakeSource) CurrentSession() (donorlink.Session, bool) {
	return f.session, f.present
}

type recordingNav struct {
	targets []string
}

func (n *recordingNav) Navigate(path string) {
	n.targets = append(n.targets, path)
}

func donorSession() donorlink.Session {
	return donorlink.Session{ID: "1", DisplayName: "Alice", Email: "alice@example.com", Role: donorlink.RoleDonor}
}

func newTestGuard(source SessionSource, nav Navigator, allowed []donorlink.Role, path string) *Guard {
	return New(source, nav, Options{
		AllowedRoles: allowed,
		CurrentPath:  path,
	})
}

func TestGuardStartsLoading(t *testing.T) {
	g := newTestGuard(&fakeSource{}, &recordingNav{}, []donorlink.Role{donorlink.RoleDonor}, "/dashboard")
	if g.State() != StateLoading {
		t.Fatalf("expected initial loading state, got %v", g.State())
	}
}

func TestGuardLoadingNeverRedirects(t *testing.T) {
	nav := &recordingNav{}
	g := newTestGuard(&fakeSource{ready: false}, nav, []donorlink.Role{donorlink.RoleDonor}, "/dashboard")

	for i := 0; i < 3; i++ {
		if state := g.Evaluate(context.Background()); state != StateLoading {
			t.Fatalf("expected loading, got %v", state)
		}
	}
	if len(nav.targets) != 0 {
		t.Fatalf("expected no redirects while loading, got %v", nav.targets)
	}
}

func TestGuardUnauthenticatedRedirectsOnce(t *testing.T) {
	nav := &recordingNav{}
	source := &fakeSource{ready: true}
	g := newTestGuard(source, nav, []donorlink.Role{donorlink.RoleDonor}, "/dashboard")

	if state := g.Evaluate(context.Background()); state != StateUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", state)
	}
	g.Evaluate(context.Background())
	g.Evaluate(context.Background())

	if len(nav.targets) != 1 {
		t.Fatalf("expected exactly one redirect, got %v", nav.targets)
	}
	if nav.targets[0] != "/login?redirect=%2Fdashboard" {
		t.Fatalf("unexpected redirect target %q", nav.targets[0])
	}
}

func TestGuardLoginRedirectWithoutPath(t *testing.T) {
	nav := &recordingNav{}
	g := newTestGuard(&fakeSource{ready: true}, nav, []donorlink.Role{donorlink.RoleDonor}, "")

	g.Evaluate(context.Background())
	if len(nav.targets) != 1 || nav.targets[0] != "/login" {
		t.Fatalf("expected bare login redirect, got %v", nav.targets)
	}
}

func TestGuardUnauthorizedRedirectsToRoleLanding(t *testing.T) {
	tests := []struct {
		role donorlink.Role
		want string
	}{
		{donorlink.RoleAdmin, "/admin-dashboard"},
		{donorlink.RoleDonor, "/dashboard"},
		{donorlink.RolePatient, "/patient-dashboard"},
		{donorlink.RoleOrganization, "/dashboard"},
	}

	for _, tc := range tests {
		t.Run(string(tc.role), func(t *testing.T) {
			nav := &recordingNav{}
			sess := donorSession()
			sess.Role = tc.role
			source := &fakeSource{ready: true, session: sess, present: true}

			// No allowed roles: every session is unauthorized.
			g := newTestGuard(source, nav, nil, "/restricted")

			if state := g.Evaluate(context.Background()); state != StateUnauthorized {
				t.Fatalf("expected unauthorized, got %v", state)
			}
			if len(nav.targets) != 1 || nav.targets[0] != tc.want {
				t.Fatalf("expected redirect to %q, got %v", tc.want, nav.targets)
			}
		})
	}
}

func TestGuardUnauthorizedFallsBackToDefaultLanding(t *testing.T) {
	nav := &recordingNav{}
	source := &fakeSource{ready: true, session: donorSession(), present: true}

	routes := donorlink.DefaultConfig().Guard
	routes.Landing = map[donorlink.Role]string{}

	g := New(source, nav, Options{
		CurrentPath: "/restricted",
		Routes:      routes,
	})

	g.Evaluate(context.Background())
	if len(nav.targets) != 1 || nav.targets[0] != "/home" {
		t.Fatalf("expected default landing redirect, got %v", nav.targets)
	}
}

func TestGuardAuthorizedRenders(t *testing.T) {
	nav := &recordingNav{}
	source := &fakeSource{ready: true, session: donorSession(), present: true}
	g := newTestGuard(source, nav, []donorlink.Role{donorlink.RoleDonor, donorlink.RoleAdmin}, "/dashboard")

	if state := g.Evaluate(context.Background()); state != StateAuthorized {
		t.Fatalf("expected authorized, got %v", state)
	}
	if len(nav.targets) != 0 {
		t.Fatalf("expected no redirects, got %v", nav.targets)
	}
}

func TestGuardRedirectRearmsOnTransition(t *testing.T) {
	nav := &recordingNav{}
	source := &fakeSource{ready: true}
	g := newTestGuard(source, nav, []donorlink.Role{donorlink.RoleDonor}, "/dashboard")

	// Unauthenticated fires the login redirect once.
	g.Evaluate(context.Background())
	g.Evaluate(context.Background())
	if len(nav.targets) != 1 {
		t.Fatalf("expected one redirect, got %v", nav.targets)
	}

	// Login with a role outside the allowed set: a new edge, a new redirect.
	sess := donorSession()
	sess.Role = donorlink.RolePatient
	source.session = sess
	source.present = true

	g.Evaluate(context.Background())
	g.Evaluate(context.Background())
	if len(nav.targets) != 2 {
		t.Fatalf("expected second redirect after transition, got %v", nav.targets)
	}
	if nav.targets[1] != "/patient-dashboard" {
		t.Fatalf("unexpected landing target %q", nav.targets[1])
	}

	// Back to unauthenticated: the login redirect fires again.
	source.present = false
	g.Evaluate(context.Background())
	if len(nav.targets) != 3 {
		t.Fatalf("expected third redirect after logout, got %v", nav.targets)
	}
}

func TestGuardLoadingToAuthorizedNoRedirect(t *testing.T) {
	nav := &recordingNav{}
	source := &fakeSource{}
	g := newTestGuard(source, nav, []donorlink.Role{donorlink.RoleDonor}, "/dashboard")

	g.Evaluate(context.Background())

	source.ready = true
	source.session = donorSession()
	source.present = true

	if state := g.Evaluate(context.Background()); state != StateAuthorized {
		t.Fatalf("expected authorized, got %v", state)
	}
	if len(nav.targets) != 0 {
		t.Fatalf("expected no redirects, got %v", nav.targets)
	}
}

type recordingRecorder struct {
	states  []string
	targets []string
}

func (r *recordingRecorder) RecordGuardDecision(_ context.Context, state, target string) {
	r.states = append(r.states, state)
	r.targets = append(r.targets, target)
}

func TestGuardRecorderSeesEdgesOnly(t *testing.T) {
	rec := &recordingRecorder{}
	source := &fakeSource{ready: true}
	g := New(source, &recordingNav{}, Options{
		AllowedRoles: []donorlink.Role{donorlink.RoleDonor},
		CurrentPath:  "/dashboard",
		Recorder:     rec,
	})

	g.Evaluate(context.Background())
	g.Evaluate(context.Background()) // steady state, no new decision

	source.session = donorSession()
	source.present = true
	g.Evaluate(context.Background())
	g.Evaluate(context.Background()) // steady state again

	want := []string{"unauthenticated", "authorized"}
	if len(rec.states) != len(want) {
		t.Fatalf("expected %v, got %v", want, rec.states)
	}
	for i := range want {
		if rec.states[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, rec.states)
		}
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateLoading, "loading"},
		{StateUnauthenticated, "unauthenticated"},
		{StateUnauthorized, "unauthorized"},
		{StateAuthorized, "authorized"},
		{State(99), "unknown"},
	}
	for _, tc := range tests {
		if got := tc.state.String(); got != tc.want {
			t.Fatalf("State(%d).String() = %q, want %q", tc.state, got, tc.want)
		}
	}
}
