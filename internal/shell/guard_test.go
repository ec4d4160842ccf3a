package shell

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSetup bool

func (s stubSetup) IsInitialized(context.Context) bool { return bool(s) }

type stubAuth struct {
	authenticated bool
	role          string
}

func (a stubAuth) IsAuthenticated() bool { return a.authenticated }
func (a stubAuth) Role() string          { return a.role }

func evaluate(t *testing.T, initialized bool, auth stubAuth, path string) Decision {
	t.Helper()
	r := NewRouter(StaticRoutes()...)
	loc, ok := r.Resolve(path)
	require.True(t, ok, "no route for %s", path)
	return NewGuard(stubSetup(initialized), auth, nopLog).Evaluate(context.Background(), loc)
}

func TestGuard_AuthAndRoles(t *testing.T) {
	tests := []struct {
		name     string
		auth     stubAuth
		path     string
		state    State
		redirect string
	}{
		{"anonymous to admin page goes to login with return path", stubAuth{}, "/admin/home",
			StateRedirect, "/login?redirect=/admin/home"},
		{"user role on admin page goes to own dashboard", stubAuth{true, RoleUser}, "/admin/home",
			StateRedirect, "/user/home"},
		{"admin on admin page is allowed", stubAuth{true, RoleAdmin}, "/admin/home",
			StateAllow, ""},
		{"signed-in user on login goes to dashboard", stubAuth{true, RoleUser}, "/login",
			StateRedirect, "/user/home"},
		{"anonymous on login is allowed", stubAuth{}, "/login",
			StateAllow, ""},
		{"wildcard role admits any signed-in role", stubAuth{true, "auditor"}, "/notifications",
			StateAllow, ""},
		{"unknown role on admin page goes to login", stubAuth{true, "auditor"}, "/admin/home",
			StateRedirect, "/login"},
		{"anonymous home goes to login", stubAuth{}, "/",
			StateRedirect, "/login"},
		{"signed-in home goes to dashboard", stubAuth{true, RoleAdmin}, "/",
			StateRedirect, "/admin/home"},
		{"public not-found page is allowed", stubAuth{}, "/missing",
			StateAllow, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := evaluate(t, true, tt.auth, tt.path)
			assert.Equal(t, tt.state, d.State)
			assert.Equal(t, tt.redirect, d.Redirect)
		})
	}
}

func TestGuard_LoginRedirectKeepsQuery(t *testing.T) {
	d := evaluate(t, true, stubAuth{}, "/admin/page-editor?id=3&mode=edit")
	assert.Equal(t, "/login?redirect=/admin/page-editor%3Fid%3D3%26mode%3Dedit", d.Redirect)
}

func TestGuard_SetupComesFirst(t *testing.T) {
	d := evaluate(t, false, stubAuth{true, RoleAdmin}, "/admin/home")
	assert.Equal(t, StateRedirect, d.State)
	assert.Equal(t, PathSetup, d.Redirect)
	assert.Equal(t, []State{StateCheckingSetup, StateRedirect}, d.Trace)

	d = evaluate(t, false, stubAuth{}, PathSetup)
	assert.Equal(t, StateAllow, d.State)

	d = evaluate(t, true, stubAuth{}, PathSetup)
	assert.Equal(t, StateRedirect, d.State)
	assert.Equal(t, PathLogin, d.Redirect)
}

func TestGuard_TraceFollowsStateOrder(t *testing.T) {
	d := evaluate(t, true, stubAuth{true, RoleAdmin}, "/admin/home")
	assert.Equal(t, []State{StateCheckingSetup, StateResolvingAuth, StateCheckingRole, StateAllow}, d.Trace)

	d = evaluate(t, true, stubAuth{}, "/admin/home")
	assert.Equal(t, []State{StateCheckingSetup, StateResolvingAuth, StateRedirect}, d.Trace)
}

func TestDashboardFor(t *testing.T) {
	assert.Equal(t, "/admin/home", DashboardFor(RoleAdmin))
	assert.Equal(t, "/user/home", DashboardFor(RoleUser))
	assert.Equal(t, PathLogin, DashboardFor("guest"))
}
