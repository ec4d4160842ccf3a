package shell

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// SetupStatusTTL is how long a setup status answer is trusted.
const SetupStatusTTL = 60 * time.Second

// SetupStatus mirrors GET /api/setup/status.
type SetupStatus struct {
	Initialized   bool   `json:"initialized"`
	HasDatabase   bool   `json:"hasDatabase"`
	HasCoreTables bool   `json:"hasCoreTables"`
	Reason        string `json:"reason"`
}

type setupCacheEntry struct {
	Initialized bool  `json:"initialized"`
	Timestamp   int64 `json:"timestamp"` // unix ms
}

// SetupGate answers "is this instance initialized" with a short-lived cache
// in client storage. Concurrent misses are not collapsed into one request.
type SetupGate struct {
	client  *Client
	storage Storage
	now     func() time.Time
	log     zerolog.Logger
}

func NewSetupGate(client *Client, storage Storage, now func() time.Time, log zerolog.Logger) *SetupGate {
	if now == nil {
		now = time.Now
	}
	return &SetupGate{client: client, storage: storage, now: now, log: log}
}

func (g *SetupGate) IsInitialized(ctx context.Context) bool {
	now := g.now()
	if entry, ok := g.cached(); ok {
		age := now.Sub(time.UnixMilli(entry.Timestamp))
		if age >= 0 && age < SetupStatusTTL {
			return entry.Initialized
		}
	}

	status, err := g.fetch(ctx)
	if err != nil {
		g.log.Warn().Err(err).Msg("setup status check failed, using stored completion flag")
		flag, _ := g.storage.Get(KeySetupComplete)
		return flag == "true"
	}

	entry := setupCacheEntry{Initialized: status.Initialized, Timestamp: now.UnixMilli()}
	if data, err := json.Marshal(entry); err == nil {
		if err := g.storage.Set(KeySetupStatus, string(data)); err != nil {
			g.log.Warn().Err(err).Msg("failed to cache setup status")
		}
	}
	return status.Initialized
}

// Status fetches the full status from the server, bypassing the cache.
func (g *SetupGate) Status(ctx context.Context) (*SetupStatus, error) {
	return g.fetch(ctx)
}

func (g *SetupGate) fetch(ctx context.Context) (*SetupStatus, error) {
	req, err := g.client.NewRequest(ctx, http.MethodGet, "/api/setup/status", nil)
	if err != nil {
		return nil, err
	}
	var status SetupStatus
	if err := g.client.Do(req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (g *SetupGate) cached() (setupCacheEntry, bool) {
	raw, ok := g.storage.Get(KeySetupStatus)
	if !ok || raw == "" {
		return setupCacheEntry{}, false
	}
	var entry setupCacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return setupCacheEntry{}, false
	}
	return entry, true
}

// Invalidate drops the cached status so the next check asks the server.
func (g *SetupGate) Invalidate() {
	if err := g.storage.Remove(KeySetupStatus); err != nil {
		g.log.Warn().Err(err).Msg("failed to clear setup status cache")
	}
}

// SetupSystem, SetupAdmin and SetupTheme make up the setup wizard payload.
type SetupSystem struct {
	SystemName       string `json:"systemName"`
	LoginTitle       string `json:"loginTitle,omitempty"`
	LoginDescription string `json:"loginDescription,omitempty"`
	LogoLight        string `json:"logoLight,omitempty"`
	LogoDark         string `json:"logoDark,omitempty"`
}

type SetupAdmin struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SetupTheme struct {
	Color  string `json:"color,omitempty"`
	Radius string `json:"radius,omitempty"`
}

type SetupRequest struct {
	System SetupSystem `json:"system"`
	Admin  *SetupAdmin `json:"admin,omitempty"`
	Theme  *SetupTheme `json:"theme,omitempty"`
}

// CompleteSetup submits the wizard. On success the long-lived completion
// flag is stored and the cached status is dropped at once.
func (g *SetupGate) CompleteSetup(ctx context.Context, req *SetupRequest) error {
	if err := g.client.Post(ctx, "/api/setup/complete", req, nil); err != nil {
		return err
	}
	if err := g.storage.Set(KeySetupComplete, "true"); err != nil {
		g.log.Warn().Err(err).Msg("failed to store setup completion flag")
	}
	g.Invalidate()
	return nil
}
