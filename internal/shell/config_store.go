package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/jboilerplate/portal/internal/sysconfig"
	"github.com/rs/zerolog"
)

var ErrSaveFailed = errors.New("failed to save configuration")

// Presenter receives the presentational side effects of a loaded config.
type Presenter interface {
	SetTitle(title string)
	SetAttribute(name, value string)
	SetCSSVar(name, value string)
}

// DocumentState is a Presenter that records what it was told.
type DocumentState struct {
	mu      sync.RWMutex
	title   string
	attrs   map[string]string
	cssVars map[string]string
}

func NewDocumentState() *DocumentState {
	return &DocumentState{attrs: map[string]string{}, cssVars: map[string]string{}}
}

func (d *DocumentState) SetTitle(title string) {
	d.mu.Lock()
	d.title = title
	d.mu.Unlock()
}

func (d *DocumentState) SetAttribute(name, value string) {
	d.mu.Lock()
	d.attrs[name] = value
	d.mu.Unlock()
}

func (d *DocumentState) SetCSSVar(name, value string) {
	d.mu.Lock()
	d.cssVars[name] = value
	d.mu.Unlock()
}

func (d *DocumentState) Title() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.title
}

func (d *DocumentState) Attribute(name string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.attrs[name]
}

func (d *DocumentState) CSSVar(name string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cssVars[name]
}

// Config sources reported by ConfigStore.Source.
const (
	SourceDatabase = "db"
	SourceFile     = "file"
	SourceDefaults = "default"
)

type configResponse struct {
	Config map[string]any `json:"config"`
}

type logoResponse struct {
	Logo *struct {
		Path string `json:"path"`
	} `json:"logo"`
}

// ConfigStore resolves the system configuration from the database, then
// the config file, then compiled defaults, and is the only writer of the
// in-memory copy.
type ConfigStore struct {
	client    *Client
	storage   Storage
	presenter Presenter
	now       func() time.Time
	log       zerolog.Logger

	saveMu sync.Mutex

	mu        sync.RWMutex
	cfg       sysconfig.Config
	source    string
	dbReady   bool
	dbErr     string
	logoLight string
	logoDark  string
}

func NewConfigStore(client *Client, storage Storage, presenter Presenter, now func() time.Time, log zerolog.Logger) *ConfigStore {
	if now == nil {
		now = time.Now
	}
	if presenter == nil {
		presenter = NewDocumentState()
	}
	return &ConfigStore{
		client:    client,
		storage:   storage,
		presenter: presenter,
		now:       now,
		log:       log,
		cfg:       sysconfig.Defaults(),
		source:    SourceDefaults,
		logoLight: defaultLogoPath("light"),
		logoDark:  defaultLogoPath("dark"),
	}
}

// Load runs the cascade and applies the result. It never fails; a missing
// database only shows up in IsDatabaseReady and DatabaseError.
func (s *ConfigStore) Load(ctx context.Context) sysconfig.Config {
	cfg, source := s.resolve(ctx)

	s.mu.Lock()
	s.cfg = cfg
	s.source = source
	s.mu.Unlock()

	s.apply(cfg)
	s.RefreshLogos(ctx)
	return cfg
}

func (s *ConfigStore) resolve(ctx context.Context) (sysconfig.Config, string) {
	var resp configResponse
	err := s.client.Get(ctx, "/api/system-config/load-db", &resp)
	s.mu.Lock()
	s.dbReady = err == nil
	s.dbErr = ""
	if err != nil {
		s.dbErr = err.Error()
	}
	s.mu.Unlock()
	if err == nil {
		s.log.Info().Msg("system config loaded from database")
		return sysconfig.FromMap(resp.Config), SourceDatabase
	}
	s.log.Warn().Err(err).Msg("system config database load failed, falling back to file")

	resp = configResponse{}
	if err := s.client.Get(ctx, "/api/system-config/load-file", &resp); err != nil {
		s.log.Warn().Err(err).Msg("system config file load failed, using defaults")
		return sysconfig.Defaults(), SourceDefaults
	}
	s.log.Info().Msg("system config loaded from file")
	return sysconfig.FromMap(resp.Config), SourceFile
}

func (s *ConfigStore) apply(cfg sysconfig.Config) {
	s.presenter.SetTitle(cfg.Title())
	if cfg.ThemeColor != "" {
		s.presenter.SetAttribute("data-color-scheme", cfg.ThemeColor)
		s.remember(KeyThemeColor, cfg.ThemeColor)
	}
	if cfg.ThemeRadius != "" {
		s.presenter.SetCSSVar("--radius", cfg.ThemeRadius+"rem")
		s.remember(KeyThemeRadius, cfg.ThemeRadius)
	}
	if cfg.ThemeMode != "" {
		s.remember(KeyTheme, cfg.ThemeMode)
	}
}

func (s *ConfigStore) remember(key, value string) {
	if s.storage == nil {
		return
	}
	if err := s.storage.Set(key, value); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to persist theme setting")
	}
}

func (s *ConfigStore) Config() sysconfig.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Source reports where the current config came from.
func (s *ConfigStore) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

func (s *ConfigStore) IsDatabaseReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dbReady
}

func (s *ConfigStore) DatabaseError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dbErr
}

// Save merges partial over the current config and writes the whole object
// to the database. Memory and title change only after the write succeeds.
func (s *ConfigStore) Save(ctx context.Context, partial map[string]any) (sysconfig.Config, error) {
	return s.save(ctx, "/api/system-config/save-db", partial)
}

// SaveToFile is Save against the config file instead of the database.
func (s *ConfigStore) SaveToFile(ctx context.Context, partial map[string]any) (sysconfig.Config, error) {
	return s.save(ctx, "/api/system-config/save-file", partial)
}

// ResetToDefaults writes the compiled defaults to the database.
func (s *ConfigStore) ResetToDefaults(ctx context.Context) (sysconfig.Config, error) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return s.write(ctx, "/api/system-config/save-db", sysconfig.Defaults())
}

func (s *ConfigStore) save(ctx context.Context, path string, partial map[string]any) (sysconfig.Config, error) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return s.write(ctx, path, sysconfig.Merge(s.Config(), partial))
}

func (s *ConfigStore) write(ctx context.Context, path string, next sysconfig.Config) (sysconfig.Config, error) {
	if err := s.client.Post(ctx, path, next.ToMap(), nil); err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("system config save failed")
		return s.Config(), fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	s.mu.Lock()
	s.cfg = next
	s.mu.Unlock()
	s.presenter.SetTitle(next.Title())
	return next, nil
}

// RefreshLogos re-resolves both logo paths with a fresh cache-buster.
func (s *ConfigStore) RefreshLogos(ctx context.Context) {
	stamp := strconv.FormatInt(s.now().UnixMilli(), 10)
	light := s.fetchLogo(ctx, "light") + "?t=" + stamp
	dark := s.fetchLogo(ctx, "dark") + "?t=" + stamp

	s.mu.Lock()
	s.logoLight = light
	s.logoDark = dark
	s.mu.Unlock()
}

func (s *ConfigStore) fetchLogo(ctx context.Context, logoType string) string {
	var resp logoResponse
	if err := s.client.Get(ctx, "/api/logo-info?type="+logoType, &resp); err != nil || resp.Logo == nil || resp.Logo.Path == "" {
		if err != nil {
			s.log.Warn().Err(err).Str("type", logoType).Msg("logo lookup failed")
		}
		return defaultLogoPath(logoType)
	}
	return resp.Logo.Path
}

func defaultLogoPath(logoType string) string {
	return "/assets/logo/logo-" + logoType + "-default.svg"
}

// Logo returns the resolved logo for the current color mode.
func (s *ConfigStore) Logo(dark bool) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if dark {
		return s.logoDark
	}
	return s.logoLight
}

// LoginLogo picks the login page logo: a fixed variant, or the one matching
// the color mode when loginLogoMode is "theme".
func (s *ConfigStore) LoginLogo(dark bool) string {
	switch s.Config().LoginLogoMode {
	case "light":
		return s.Logo(false)
	case "dark":
		return s.Logo(true)
	default:
		return s.Logo(dark)
	}
}

func (s *ConfigStore) LoginLogoSizeClass() string {
	return s.Config().LogoSizeClass()
}

func (s *ConfigStore) LoginLogoWidth() string {
	return s.Config().LogoWidth()
}
