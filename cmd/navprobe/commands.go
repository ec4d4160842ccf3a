package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jboilerplate/portal/internal/models"
	"github.com/jboilerplate/portal/internal/shell"
)

type Context struct {
	App     *shell.App
	Output  Format
	Timeout time.Duration
	Out     io.Writer
}

func (c Context) out() io.Writer {
	if c.Out != nil {
		return c.Out
	}
	return os.Stdout
}

func (c Context) context() (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), c.Timeout)
}

func Usage(w io.Writer) {
	fmt.Fprint(w, `navprobe [global flags] <command> [flags]

Global Flags:
  --base-url       Portal base URL (env: NAVPROBE_BASE_URL)
  --state          Client storage file (env: NAVPROBE_STATE)
  --pages          Dashboard source root to scan for page components
  --output         json|text (default json)
  --mount-timeout  Boot mount timeout (default 3s)

Commands:
  boot     run the boot sequence and report what it resolved
  nav      resolve a navigation: nav <path>
  login    sign in: login --email <e> --password <p>
  logout   sign out and clear the stored session
  whoami   show the stored session, refreshed from the server
  setup    status | complete --system-name <n> [--admin-email <e> --admin-password <p>]
  config   show | set key=value... | reset
  menu     show [--role r] | save --role r --file <structure.json>
  routes   list every registered route after loading the manifest
`)
}

func Dispatch(ctx Context, args []string) error {
	if len(args) == 0 {
		Usage(os.Stderr)
		return errors.New("missing command")
	}
	switch args[0] {
	case "boot":
		return bootCmd(ctx)
	case "nav":
		return navCmd(ctx, args[1:])
	case "login":
		return loginCmd(ctx, args[1:])
	case "logout":
		return logoutCmd(ctx)
	case "whoami":
		return whoamiCmd(ctx)
	case "setup":
		return setupCmd(ctx, args[1:])
	case "config":
		return configCmd(ctx, args[1:])
	case "menu":
		return menuCmd(ctx, args[1:])
	case "routes":
		return routesCmd(ctx)
	case "help", "-h", "--help":
		Usage(ctx.out())
		return nil
	default:
		Usage(os.Stderr)
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

type bootResult struct {
	Boot  shell.BootReport  `json:"boot"`
	Mount shell.MountReport `json:"mount"`
}

func (r bootResult) Lines() []string {
	return []string{
		fmt.Sprintf("initialized=%t", r.Boot.Initialized),
		fmt.Sprintf("config_source=%s database_ready=%t", r.Boot.ConfigSource, r.Boot.DatabaseOK),
		fmt.Sprintf("routes_added=%d routes_skipped=%d", len(r.Boot.Routes.Added), len(r.Boot.Routes.Skipped)),
		fmt.Sprintf("mount_timed_out=%t duration=%s", r.Mount.TimedOut, r.Boot.Duration),
	}
}

// boot runs the boot sequence and waits for it to finish.
func boot(ctx Context) (context.Context, context.CancelFunc, bootResult, error) {
	c, cancel := ctx.context()
	ctx.App.Start(c)
	select {
	case <-ctx.App.Ready():
	case <-c.Done():
		cancel()
		return nil, nil, bootResult{}, fmt.Errorf("boot did not finish: %w", c.Err())
	}
	return c, cancel, bootResult{Boot: ctx.App.BootReport(), Mount: ctx.App.MountReport()}, nil
}

func bootCmd(ctx Context) error {
	_, cancel, res, err := boot(ctx)
	if err != nil {
		return err
	}
	defer cancel()
	return Write(ctx.out(), ctx.Output, res)
}

type navResult struct {
	*shell.NavigationResult
	Component string `json:"component,omitempty"`
}

func (r navResult) Lines() []string {
	lines := []string{"hops: " + strings.Join(r.Hops, " -> ")}
	lines = append(lines, fmt.Sprintf("route: %s (%s)", r.Location.Name, r.Location.FullPath))
	lines = append(lines, "title: "+r.Title)
	if r.Component != "" {
		lines = append(lines, "component: "+r.Component)
	}
	return lines
}

func navCmd(ctx Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: navprobe nav <path>")
	}
	c, cancel, _, err := boot(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	res, err := ctx.App.Navigate(c, args[0])
	if err != nil {
		return err
	}
	out := navResult{NavigationResult: res}
	if res.Route != nil {
		out.Component = res.Route.Component
	}
	return Write(ctx.out(), ctx.Output, out)
}

func loginCmd(ctx Context, args []string) error {
	fs := flag.NewFlagSet("navprobe login", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	email := fs.String("email", "", "Email")
	password := fs.String("password", "", "Password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*email) == "" || *password == "" {
		return errors.New("usage: navprobe login --email <e> --password <p>")
	}

	c, cancel := ctx.context()
	defer cancel()
	user, err := ctx.App.Session.Login(c, strings.TrimSpace(*email), *password)
	if err != nil {
		return err
	}
	return Write(ctx.out(), ctx.Output, map[string]any{
		"user":      user,
		"dashboard": shell.DashboardFor(user.Role),
	})
}

func logoutCmd(ctx Context) error {
	c, cancel := ctx.context()
	defer cancel()
	if err := ctx.App.Session.Logout(c); err != nil {
		return err
	}
	return Write(ctx.out(), ctx.Output, map[string]string{"status": "logged out"})
}

func whoamiCmd(ctx Context) error {
	c, cancel := ctx.context()
	defer cancel()
	user, err := ctx.App.Session.Refresh(c)
	if err != nil {
		return err
	}
	return Write(ctx.out(), ctx.Output, map[string]any{
		"user":          user,
		"authenticated": ctx.App.Session.IsAuthenticated(),
		"dashboard":     shell.DashboardFor(user.Role),
	})
}

func setupCmd(ctx Context, args []string) error {
	if len(args) == 0 {
		return errors.New("setup subcommand required: status|complete")
	}
	c, cancel := ctx.context()
	defer cancel()

	switch args[0] {
	case "status":
		status, err := ctx.App.Setup.Status(c)
		if err != nil {
			return err
		}
		return Write(ctx.out(), ctx.Output, status)
	case "complete":
		fs := flag.NewFlagSet("navprobe setup complete", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		systemName := fs.String("system-name", "", "System name")
		adminName := fs.String("admin-name", "Administrator", "Admin display name")
		adminEmail := fs.String("admin-email", "", "Admin email")
		adminPassword := fs.String("admin-password", "", "Admin password")
		themeColor := fs.String("theme-color", "", "Theme color")
		themeRadius := fs.String("theme-radius", "", "Theme radius in rem")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if strings.TrimSpace(*systemName) == "" {
			return errors.New("usage: navprobe setup complete --system-name <n> [--admin-email <e> --admin-password <p>]")
		}
		req := &shell.SetupRequest{System: shell.SetupSystem{SystemName: strings.TrimSpace(*systemName)}}
		if strings.TrimSpace(*adminEmail) != "" {
			req.Admin = &shell.SetupAdmin{Name: *adminName, Email: strings.TrimSpace(*adminEmail), Password: *adminPassword}
		}
		if *themeColor != "" || *themeRadius != "" {
			req.Theme = &shell.SetupTheme{Color: *themeColor, Radius: *themeRadius}
		}
		if err := ctx.App.Setup.CompleteSetup(c, req); err != nil {
			return err
		}
		return Write(ctx.out(), ctx.Output, map[string]string{"status": "setup completed"})
	default:
		return fmt.Errorf("unknown setup subcommand: %s", args[0])
	}
}

func configCmd(ctx Context, args []string) error {
	sub := "show"
	if len(args) > 0 {
		sub = args[0]
	}
	c, cancel := ctx.context()
	defer cancel()
	store := ctx.App.Config
	store.Load(c)

	switch sub {
	case "show":
		return Write(ctx.out(), ctx.Output, map[string]any{
			"config":        store.Config(),
			"source":        store.Source(),
			"databaseReady": store.IsDatabaseReady(),
			"databaseError": store.DatabaseError(),
			"logoLight":     store.Logo(false),
			"logoDark":      store.Logo(true),
		})
	case "set":
		partial, err := parseAssignments(args[1:])
		if err != nil {
			return err
		}
		cfg, err := store.Save(c, partial)
		if err != nil {
			return err
		}
		return Write(ctx.out(), ctx.Output, cfg)
	case "reset":
		cfg, err := store.ResetToDefaults(c)
		if err != nil {
			return err
		}
		return Write(ctx.out(), ctx.Output, cfg)
	default:
		return fmt.Errorf("unknown config subcommand: %s", sub)
	}
}

// parseAssignments turns key=value arguments into a partial config.
func parseAssignments(args []string) (map[string]any, error) {
	if len(args) == 0 {
		return nil, errors.New("usage: navprobe config set key=value...")
	}
	partial := make(map[string]any, len(args))
	for _, a := range args {
		key, value, ok := strings.Cut(a, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid assignment %q, want key=value", a)
		}
		partial[strings.TrimSpace(key)] = value
	}
	return partial, nil
}

func menuCmd(ctx Context, args []string) error {
	sub := "show"
	if len(args) > 0 {
		sub = args[0]
		args = args[1:]
	}
	fs := flag.NewFlagSet("navprobe menu "+sub, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	role := fs.String("role", "", "Role (default: the signed-in user's role)")
	file := fs.String("file", "", "Menu structure JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *role == "" {
		*role = ctx.App.Session.Role()
	}
	if *role == "" {
		return errors.New("no role given and no one signed in")
	}

	c, cancel := ctx.context()
	defer cancel()
	switch sub {
	case "show":
		ctx.App.Menus.Load(c)
		return Write(ctx.out(), ctx.Output, map[string]any{"role": *role, "navigation": ctx.App.Menus.NavigationFor(*role)})
	case "save":
		if *file == "" {
			return errors.New("usage: navprobe menu save --role <r> --file <structure.json>")
		}
		data, err := os.ReadFile(*file)
		if err != nil {
			return err
		}
		var structure []models.MenuCategory
		if err := json.Unmarshal(data, &structure); err != nil {
			return fmt.Errorf("parse %s: %w", *file, err)
		}
		if err := ctx.App.Menus.Save(c, *role, structure); err != nil {
			return err
		}
		return Write(ctx.out(), ctx.Output, map[string]any{"role": *role, "navigation": ctx.App.Menus.NavigationFor(*role)})
	default:
		return fmt.Errorf("unknown menu subcommand: %s", sub)
	}
}

type routesResult struct {
	Routes []shell.Route    `json:"routes"`
	Report shell.LoadReport `json:"report"`
}

func (r routesResult) Lines() []string {
	lines := make([]string, 0, len(r.Routes)+len(r.Report.Skipped))
	for _, rt := range r.Routes {
		target := rt.Component
		if rt.Redirect != "" {
			target = "-> " + rt.Redirect
		}
		lines = append(lines, fmt.Sprintf("%-32s %-24s %s", rt.Path, rt.Name, target))
	}
	for _, s := range r.Report.Skipped {
		lines = append(lines, fmt.Sprintf("skipped %s (%s): %s", s.Name, s.Path, s.Reason))
	}
	return lines
}

func routesCmd(ctx Context) error {
	_, cancel, res, err := boot(ctx)
	if err != nil {
		return err
	}
	defer cancel()
	return Write(ctx.out(), ctx.Output, routesResult{Routes: ctx.App.Router.Routes(), Report: res.Boot.Routes})
}
