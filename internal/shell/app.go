// Package shell is the client side of the portal: it resolves configuration,
// setup state, routes and menus from the server at boot and decides every
// navigation.
package shell

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jboilerplate/portal/internal/cache"
	"github.com/rs/zerolog"
)

const (
	DefaultMountTimeout = 3 * time.Second
	DefaultMaxRedirects = 10
)

var (
	ErrTooManyRedirects = errors.New("too many redirects")
	ErrNoRoute          = errors.New("no route matches")
)

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Storage    Storage
	Presenter  Presenter
	Components *ComponentRegistry
	Logger     zerolog.Logger
	// MountTimeout bounds how long mounting waits for boot.
	MountTimeout time.Duration
	Now          func() time.Time
	// DedupGets shares identical in-flight GETs between callers.
	DedupGets    bool
	MaxRedirects int
}

// BootReport describes what the boot sequence resolved.
type BootReport struct {
	Initialized  bool       `json:"initialized"`
	ConfigSource string     `json:"configSource"`
	DatabaseOK   bool       `json:"databaseReady"`
	Routes       LoadReport `json:"routes"`
	Duration     string     `json:"duration"`
}

// MountReport says whether the app mounted before boot finished.
type MountReport struct {
	TimedOut bool `json:"timedOut"`
}

// NavigationResult is where a navigation ended up and how it got there.
type NavigationResult struct {
	Location Location `json:"location"`
	Route    *Route   `json:"route,omitempty"`
	Hops     []string `json:"hops"`
	Decision Decision `json:"decision"`
	Title    string   `json:"title"`
}

// App owns every shell collaborator.
type App struct {
	Client     *Client
	Storage    Storage
	Setup      *SetupGate
	Config     *ConfigStore
	Router     *Router
	Components *ComponentRegistry
	Menus      *MenuResolver
	Session    *Session
	Guard      *Guard
	// Document receives the page title on every allowed navigation.
	Document Presenter

	log          zerolog.Logger
	now          func() time.Time
	mountTimeout time.Duration
	maxRedirects int

	navMu     sync.Mutex
	startOnce sync.Once
	ready     chan struct{}
	mounted   chan struct{}
	boot      BootReport
	mount     MountReport
}

func New(opts Options) *App {
	if opts.Storage == nil {
		opts.Storage = NewMemoryStorage()
	}
	if opts.Components == nil {
		opts.Components = DefaultComponents()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Presenter == nil {
		opts.Presenter = NewDocumentState()
	}
	if opts.MountTimeout <= 0 {
		opts.MountTimeout = DefaultMountTimeout
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = DefaultMaxRedirects
	}

	a := &App{
		Storage:      opts.Storage,
		Components:   opts.Components,
		Router:       NewRouter(StaticRoutes()...),
		Document:     opts.Presenter,
		log:          opts.Logger,
		now:          opts.Now,
		mountTimeout: opts.MountTimeout,
		maxRedirects: opts.MaxRedirects,
		ready:        make(chan struct{}),
		mounted:      make(chan struct{}),
	}
	a.Client = &Client{BaseURL: opts.BaseURL, HTTP: opts.HTTPClient}
	if opts.DedupGets {
		a.Client.Dedup = cache.NewDeduper()
	}
	a.Session = NewSession(a.Client, a.Storage, opts.Now, opts.Logger)
	a.Client.Token = a.Session.Token
	a.Setup = NewSetupGate(a.Client, a.Storage, opts.Now, opts.Logger)
	a.Config = NewConfigStore(a.Client, a.Storage, opts.Presenter, opts.Now, opts.Logger)
	a.Menus = NewMenuResolver(a.Client, opts.Logger)
	a.Guard = NewGuard(a.Setup, a.Session, opts.Logger)
	return a
}

// Start runs the boot sequence in the background and mounts once it
// finishes or the mount timeout passes, whichever comes first. It is safe
// to call more than once; later calls do nothing.
func (a *App) Start(ctx context.Context) {
	a.startOnce.Do(func() {
		go a.runBoot(ctx)
		go a.waitMount(ctx)
	})
}

func (a *App) runBoot(ctx context.Context) {
	defer close(a.ready)
	start := a.now()

	initialized := a.Setup.IsInitialized(ctx)
	a.Config.Load(ctx)
	routes := LoadDynamicRoutes(ctx, a.Router, a.Components, a.Client, a.now, a.log)
	a.Menus.Load(ctx)

	a.boot = BootReport{
		Initialized:  initialized,
		ConfigSource: a.Config.Source(),
		DatabaseOK:   a.Config.IsDatabaseReady(),
		Routes:       routes,
		Duration:     a.now().Sub(start).String(),
	}
	a.log.Info().
		Bool("initialized", initialized).
		Str("config_source", a.boot.ConfigSource).
		Int("routes_added", len(routes.Added)).
		Msg("boot finished")
}

func (a *App) waitMount(ctx context.Context) {
	defer close(a.mounted)
	timer := time.NewTimer(a.mountTimeout)
	defer timer.Stop()
	select {
	case <-a.ready:
	case <-timer.C:
		a.mount.TimedOut = true
		a.log.Warn().Dur("timeout", a.mountTimeout).Msg("boot still running, mounting anyway")
	case <-ctx.Done():
		a.mount.TimedOut = true
	}
}

// Ready is closed when the boot sequence has finished.
func (a *App) Ready() <-chan struct{} { return a.ready }

// Mounted is closed when the app has mounted.
func (a *App) Mounted() <-chan struct{} { return a.mounted }

// BootReport is valid once Ready is closed.
func (a *App) BootReport() BootReport {
	<-a.ready
	return a.boot
}

// MountReport is valid once Mounted is closed.
func (a *App) MountReport() MountReport {
	<-a.mounted
	return a.mount
}

// Navigate resolves path and runs the guard, following route and guard
// redirects. Navigations are evaluated one at a time.
// PageTitle is the document title for a route: "<route title> | <system
// name>", or just the system name for untitled routes.
func PageTitle(routeTitle, systemName string) string {
	if routeTitle == "" {
		return systemName
	}
	return routeTitle + " | " + systemName
}

func (a *App) Navigate(ctx context.Context, path string) (*NavigationResult, error) {
	a.navMu.Lock()
	defer a.navMu.Unlock()

	res := &NavigationResult{Hops: []string{path}}
	target := path
	for hop := 0; hop <= a.maxRedirects; hop++ {
		loc, ok := a.Router.Resolve(target)
		if !ok {
			return res, fmt.Errorf("%w: %s", ErrNoRoute, target)
		}
		if loc.Matched.Redirect != "" {
			target = loc.Matched.Redirect
			res.Hops = append(res.Hops, target)
			continue
		}

		decision := a.Guard.Evaluate(ctx, loc)
		res.Decision = decision
		if decision.State == StateRedirect {
			target = decision.Redirect
			res.Hops = append(res.Hops, target)
			continue
		}
		res.Location = loc
		res.Route = loc.Matched
		res.Title = PageTitle(loc.Matched.Meta.Title, a.Config.Config().Title())
		a.Document.SetTitle(res.Title)
		return res, nil
	}
	return res, fmt.Errorf("%w: %v", ErrTooManyRedirects, res.Hops)
}
