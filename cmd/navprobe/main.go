// Command navprobe drives the navigation shell against a running portal
// server: it boots the shell, resolves navigations and edits menus and
// configuration the way the dashboard would.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jboilerplate/portal/internal/shell"
	"github.com/jboilerplate/portal/pkg/logger"
)

func main() {
	var (
		baseURL  = flag.String("base-url", "", "Portal base URL (env: NAVPROBE_BASE_URL, default http://localhost:8080)")
		state    = flag.String("state", "", "Client storage file (env: NAVPROBE_STATE)")
		pages    = flag.String("pages", "", "Dashboard source root to scan for page components")
		outFmt   = flag.String("output", "json", "Output format: json|text")
		logLevel = flag.String("log-level", "warn", "Log level")
		timeout  = flag.Duration("timeout", 10*time.Second, "Overall request timeout")
		mount    = flag.Duration("mount-timeout", shell.DefaultMountTimeout, "How long boot may delay mounting")
		dedup    = flag.Bool("dedup", true, "Share identical in-flight GET requests")
	)
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		Usage(os.Stderr)
		os.Exit(2)
	}

	logger.InitWriter(*logLevel, os.Stderr)

	storage, err := shell.OpenFileStorage(resolveStatePath(*state))
	if err != nil {
		fmt.Fprintln(os.Stderr, "state error:", err)
		os.Exit(1)
	}

	components := shell.DefaultComponents()
	if strings.TrimSpace(*pages) != "" {
		scanned, err := shell.ScanComponents(*pages)
		if err != nil {
			fmt.Fprintln(os.Stderr, "component scan error:", err)
			os.Exit(1)
		}
		for _, k := range scanned.Keys() {
			components.Register(k)
		}
	}

	app := shell.New(shell.Options{
		BaseURL:      resolveBaseURL(*baseURL),
		Storage:      storage,
		Components:   components,
		Logger:       logger.Component("shell"),
		MountTimeout: *mount,
		DedupGets:    *dedup,
	})

	ctx := Context{App: app, Output: Format(strings.TrimSpace(*outFmt)), Timeout: *timeout}
	if err := Dispatch(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func resolveBaseURL(flagValue string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("NAVPROBE_BASE_URL")); v != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://localhost:8080"
}

func resolveStatePath(flagValue string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv("NAVPROBE_STATE")); v != "" {
		return v
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".navprobe", "state.json")
	}
	return ".navprobe-state.json"
}
