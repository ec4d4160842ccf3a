package shell

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jboilerplate/portal/internal/models"
	"github.com/rs/zerolog"
)

// fakePortal is an in-process stand-in for the portal server. Every field
// is read under mu, so tests may change behavior between calls.
type fakePortal struct {
	srv *httptest.Server

	mu          sync.Mutex
	hits        map[string]int
	headers     map[string]http.Header
	queries     map[string]string
	initialized bool
	setupDown   bool
	dbConfig    map[string]any
	fileConfig  map[string]any
	manifest    string
	menus       map[string][]models.MenuCategory
	menuDown    bool
	logos       map[string]string
	saveFails   bool
	saved       []map[string]any
	savedMenus  map[string][]models.MenuCategory
	users       map[string]fakeUser
	tokenTTL    time.Duration
	delay       time.Duration
}

type fakeUser struct {
	password string
	user     User
}

func newFakePortal(t *testing.T) *fakePortal {
	t.Helper()
	p := &fakePortal{
		hits:        map[string]int{},
		headers:     map[string]http.Header{},
		queries:     map[string]string{},
		initialized: true,
		manifest:    "[]",
		menus:       map[string][]models.MenuCategory{},
		logos:       map[string]string{},
		savedMenus:  map[string][]models.MenuCategory{},
		users: map[string]fakeUser{
			"admin@example.com": {password: "secret", user: User{ID: 1, Email: "admin@example.com", Name: "Admin", Role: RoleAdmin}},
			"user@example.com":  {password: "secret", user: User{ID: 2, Email: "user@example.com", Name: "User", Role: RoleUser}},
		},
		tokenTTL: time.Hour,
	}
	p.srv = httptest.NewServer(http.HandlerFunc(p.serve))
	t.Cleanup(p.srv.Close)
	return p
}

func (p *fakePortal) URL() string { return p.srv.URL }

func (p *fakePortal) set(fn func(p *fakePortal)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p)
}

func (p *fakePortal) hitCount(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits[path]
}

func (p *fakePortal) lastHeader(path string) http.Header {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.headers[path]
}

func (p *fakePortal) lastQuery(path string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queries[path]
}

func (p *fakePortal) client() *Client {
	return &Client{BaseURL: p.URL()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func okBody(fields map[string]any) map[string]any {
	out := map[string]any{"success": true}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func fail(msg string) map[string]any {
	return map[string]any{"success": false, "error": msg}
}

func (p *fakePortal) serve(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	p.hits[r.URL.Path]++
	p.headers[r.URL.Path] = r.Header.Clone()
	p.queries[r.URL.Path] = r.URL.RawQuery
	delay := p.delay
	p.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch r.URL.Path {
	case "/api/setup/status":
		if p.setupDown {
			writeJSON(w, http.StatusInternalServerError, fail("setup status unavailable"))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"initialized": p.initialized, "hasDatabase": true, "hasCoreTables": true})
	case "/api/setup/complete":
		if p.initialized {
			writeJSON(w, http.StatusConflict, fail("Setup has already been completed"))
			return
		}
		p.initialized = true
		writeJSON(w, http.StatusOK, okBody(map[string]any{"message": "Setup completed successfully"}))
	case "/api/system-config/load-db":
		if p.dbConfig == nil {
			writeJSON(w, http.StatusInternalServerError, fail("database not ready"))
			return
		}
		writeJSON(w, http.StatusOK, okBody(map[string]any{"config": p.dbConfig}))
	case "/api/system-config/load-file":
		if p.fileConfig == nil {
			writeJSON(w, http.StatusNotFound, fail("config file not found"))
			return
		}
		writeJSON(w, http.StatusOK, okBody(map[string]any{"config": p.fileConfig}))
	case "/api/system-config/save-db", "/api/system-config/save-file":
		if p.saveFails {
			writeJSON(w, http.StatusInternalServerError, fail("write failed"))
			return
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, fail(err.Error()))
			return
		}
		p.saved = append(p.saved, body)
		writeJSON(w, http.StatusOK, okBody(map[string]any{"message": "saved"}))
	case "/api/logo-info":
		t := r.URL.Query().Get("type")
		if path, found := p.logos[t]; found {
			writeJSON(w, http.StatusOK, okBody(map[string]any{"logo": map[string]any{"path": path, "type": t}}))
			return
		}
		writeJSON(w, http.StatusOK, okBody(map[string]any{"logo": nil}))
	case ManifestPath:
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(p.manifest))
	case "/api/menu-structure":
		if p.menuDown {
			writeJSON(w, http.StatusInternalServerError, fail("menu unavailable"))
			return
		}
		if r.Method == http.MethodPost {
			var body struct {
				Role      string                `json:"role"`
				Structure []models.MenuCategory `json:"structure"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, fail(err.Error()))
				return
			}
			p.savedMenus[body.Role] = body.Structure
			writeJSON(w, http.StatusOK, okBody(nil))
			return
		}
		writeJSON(w, http.StatusOK, okBody(map[string]any{"structure": p.menus[r.URL.Query().Get("role")]}))
	case "/api/auth/login":
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		u, found := p.users[body.Email]
		if !found || u.password != body.Password {
			writeJSON(w, http.StatusUnauthorized, fail("invalid email or password"))
			return
		}
		writeJSON(w, http.StatusOK, okBody(map[string]any{
			"token":     signedToken(time.Now().Add(p.tokenTTL)),
			"csrfToken": "csrf-" + u.user.Email,
			"user":      u.user,
		}))
	case "/api/auth/logout":
		writeJSON(w, http.StatusOK, okBody(map[string]any{"message": "logged out successfully"}))
	case "/api/auth/me":
		if r.Header.Get("Authorization") == "" {
			writeJSON(w, http.StatusUnauthorized, fail("missing authorization"))
			return
		}
		u := p.users["admin@example.com"]
		writeJSON(w, http.StatusOK, okBody(map[string]any{"user": u.user}))
	default:
		writeJSON(w, http.StatusNotFound, fail("not found"))
	}
}

func signedToken(exp time.Time) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix(), "sub": "1"})
	s, err := token.SignedString([]byte("test-key"))
	if err != nil {
		panic(err)
	}
	return s
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var nopLog = zerolog.Nop()

const (
	testWait = 2 * time.Second
	testTick = 5 * time.Millisecond
)

func waitBriefly() { time.Sleep(100 * time.Millisecond) }
