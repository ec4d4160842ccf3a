package shell

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/jboilerplate/portal/internal/manifest"
	"github.com/rs/zerolog"
)

// ManifestPath is where the server publishes the generated route manifest.
const ManifestPath = "/config/generated-routes.json"

// Reasons recorded for skipped manifest entries.
const (
	SkipIncomplete       = "incomplete"
	SkipDuplicateName    = "duplicate name"
	SkipUnknownComponent = "unknown component"
	SkipInvalid          = "invalid entry"
)

type SkippedEntry struct {
	Name   string `json:"name,omitempty"`
	Path   string `json:"path,omitempty"`
	Reason string `json:"reason"`
}

type LoadReport struct {
	Added   []string       `json:"added"`
	Skipped []SkippedEntry `json:"skipped"`
}

// LoadDynamicRoutes registers the manifest's routes after the static ones.
// A defective entry is skipped without affecting the entries after it, and
// an unreachable or malformed manifest registers nothing. Loading twice adds
// each route once.
func LoadDynamicRoutes(ctx context.Context, router *Router, components *ComponentRegistry, client *Client, now func() time.Time, log zerolog.Logger) LoadReport {
	report := LoadReport{Added: []string{}, Skipped: []SkippedEntry{}}
	if now == nil {
		now = time.Now
	}

	var raw []json.RawMessage
	path := ManifestPath + "?_t=" + strconv.FormatInt(now().UnixMilli(), 10)
	if err := client.GetFresh(ctx, path, &raw); err != nil {
		log.Warn().Err(err).Msg("route manifest unavailable, no dynamic routes registered")
		return report
	}

	for _, item := range raw {
		var e manifest.Entry
		if err := json.Unmarshal(item, &e); err != nil {
			report.Skipped = append(report.Skipped, SkippedEntry{Reason: SkipInvalid})
			continue
		}
		if !e.Complete() {
			report.Skipped = append(report.Skipped, SkippedEntry{Name: e.Name, Path: e.Path, Reason: SkipIncomplete})
			continue
		}
		if router.HasRoute(e.Name) {
			report.Skipped = append(report.Skipped, SkippedEntry{Name: e.Name, Path: e.Path, Reason: SkipDuplicateName})
			continue
		}
		key, ok := components.Lookup(e.ComponentPath)
		if !ok {
			log.Warn().Str("name", e.Name).Str("component", e.ComponentPath).Msg("no component for manifest route, skipping")
			report.Skipped = append(report.Skipped, SkippedEntry{Name: e.Name, Path: e.Path, Reason: SkipUnknownComponent})
			continue
		}
		if err := router.AddRoute(Route{Path: e.Path, Name: e.Name, Component: key, Meta: e.Meta}); err != nil {
			report.Skipped = append(report.Skipped, SkippedEntry{Name: e.Name, Path: e.Path, Reason: SkipDuplicateName})
			continue
		}
		report.Added = append(report.Added, e.Name)
	}

	log.Info().Int("added", len(report.Added)).Int("skipped", len(report.Skipped)).Msg("dynamic routes loaded")
	return report
}
