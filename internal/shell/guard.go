package shell

import (
	"context"
	"net/url"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

// Roles the shell has dashboards for. Any other role string is valid on a
// session but lands on the login page.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
	// WildcardRole in a route's roles admits every authenticated role.
	WildcardRole = "all"
)

// DashboardTable is the single source of truth for where a role belongs.
var DashboardTable = map[string]string{
	RoleAdmin: "/admin/home",
	RoleUser:  "/user/home",
}

// DashboardFor returns the default dashboard of role, or the login page for
// roles without one.
func DashboardFor(role string) string {
	if p, ok := DashboardTable[role]; ok {
		return p
	}
	return PathLogin
}

type State string

const (
	StateCheckingSetup State = "CHECKING_SETUP"
	StateResolvingAuth State = "RESOLVING_AUTH"
	StateCheckingRole  State = "CHECKING_ROLE"
	StateAllow         State = "ALLOW"
	StateRedirect      State = "REDIRECT"
)

// Decision is the outcome of one guard evaluation. Trace lists the states
// passed through, ending in State.
type Decision struct {
	State    State   `json:"state"`
	Redirect string  `json:"redirect,omitempty"`
	Trace    []State `json:"trace"`
}

type SetupChecker interface {
	IsInitialized(ctx context.Context) bool
}

type AuthState interface {
	IsAuthenticated() bool
	Role() string
}

// Guard decides every navigation: setup first, then authentication, then
// role membership.
type Guard struct {
	setup SetupChecker
	auth  AuthState
	log   zerolog.Logger
}

func NewGuard(setup SetupChecker, auth AuthState, log zerolog.Logger) *Guard {
	return &Guard{setup: setup, auth: auth, log: log}
}

func (g *Guard) Evaluate(ctx context.Context, to Location) Decision {
	d := &Decision{}
	redirect := func(target string) Decision {
		d.Trace = append(d.Trace, StateRedirect)
		d.State = StateRedirect
		d.Redirect = target
		g.log.Debug().Str("from", to.FullPath).Str("to", target).Msg("navigation redirected")
		return *d
	}
	allow := func() Decision {
		d.Trace = append(d.Trace, StateAllow)
		d.State = StateAllow
		return *d
	}

	d.Trace = append(d.Trace, StateCheckingSetup)
	isSetupRoute := to.Name == NameSetup || to.Path == PathSetup
	initialized := g.setup.IsInitialized(ctx)
	if !isSetupRoute && !initialized {
		return redirect(PathSetup)
	}
	if isSetupRoute && initialized {
		return redirect(PathLogin)
	}

	d.Trace = append(d.Trace, StateResolvingAuth)
	authenticated := g.auth.IsAuthenticated()
	role := g.auth.Role()

	if to.Name == NameHome && to.Path == PathHome {
		if !authenticated {
			return redirect(PathLogin)
		}
		return redirect(DashboardFor(role))
	}

	if !to.Meta.RequiresAuth {
		if authenticated && !isSetupRoute && (to.Name == NameLogin || to.Name == NameRegister) {
			dashboard := DashboardFor(role)
			if to.Path == dashboard {
				return allow()
			}
			return redirect(dashboard)
		}
		return allow()
	}

	if !authenticated {
		if to.Name == NameLogin {
			return allow()
		}
		return redirect(PathLogin + "?redirect=" + encodeQueryValue(to.FullPath))
	}

	d.Trace = append(d.Trace, StateCheckingRole)
	if roles := to.Meta.Roles; len(roles) > 0 && !slices.Contains(roles, WildcardRole) && !slices.Contains(roles, role) {
		return redirect(DashboardFor(role))
	}
	return allow()
}

var queryValueReplacer = strings.NewReplacer("%2F", "/", "%3A", ":", "%40", "@")

// encodeQueryValue escapes a return path for a query string, keeping it
// readable: "/admin/home" stays "/admin/home".
func encodeQueryValue(v string) string {
	return queryValueReplacer.Replace(url.QueryEscape(v))
}
