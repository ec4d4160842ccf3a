package main

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jboilerplate/portal/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*gin.Engine, *appServices) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	cfg, err := config.Load(filepath.Join(root, "config.yaml"))
	require.NoError(t, err)
	cfg.Server.Mode = "test"
	cfg.Database.DSN = filepath.Join(root, "portal.db")
	cfg.Portal.PublicDir = filepath.Join(root, "public")
	cfg.Portal.PagesDir = root
	cfg.Redis.Enabled = false

	svc, err := bootstrap(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { svc.shutdown(context.Background()) })

	r := gin.New()
	registerRoutes(r, svc)
	return r, svc
}

func serve(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r http.Handler) string {
	t.Helper()
	w := serve(r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    defaultAdminEmail,
		"password": defaultAdminPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Token
}

func TestRoutes_PublicEndpoints(t *testing.T) {
	r, _ := newTestServer(t)

	for _, path := range []string{
		"/health",
		"/config/generated-routes.json",
		"/api/setup/status",
		"/api/system-config/load-db",
		"/api/logo-info",
		"/api/menu-structure",
	} {
		w := serve(r, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"), path)
	}
}

func TestRoutes_WritesRequireAdmin(t *testing.T) {
	r, _ := newTestServer(t)

	writes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/system-config/save-db"},
		{http.MethodPost, "/api/system-config/save-file"},
		{http.MethodPost, "/api/menu-structure"},
		{http.MethodGet, "/api/pages"},
		{http.MethodPost, "/api/pages"},
		{http.MethodDelete, "/api/pages/1"},
		{http.MethodPost, "/api/pages/delete-manual"},
		{http.MethodGet, "/api/system/status"},
		{http.MethodGet, "/api/system/logs"},
		{http.MethodPost, "/api/upload"},
		{http.MethodPost, "/api/upload-image"},
	}
	for _, tt := range writes {
		w := serve(r, tt.method, tt.path, "", map[string]any{})
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tt.method, tt.path)
	}
}

func TestRoutes_AdminFlow(t *testing.T) {
	r, _ := newTestServer(t)
	token := login(t, r)

	w := serve(r, http.MethodPost, "/api/system-config/save-db", token, map[string]any{"systemName": "Wired"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = serve(r, http.MethodGet, "/api/system-config/load-db", "", nil)
	assert.Contains(t, w.Body.String(), `"systemName":"Wired"`)

	w = serve(r, http.MethodPost, "/api/pages", token, map[string]any{
		"name":           "Audit",
		"path":           "/admin/audit",
		"component_path": "@/views/admin/Audit.vue",
		"role":           "admin",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = serve(r, http.MethodGet, "/config/generated-routes.json", "", nil)
	assert.Contains(t, w.Body.String(), "/admin/audit")

	w = serve(r, http.MethodGet, "/api/system/logs?module=pages", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "[Audit] admin@localhost POST /api/pages")

	w = serve(r, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "jboilerplate_routes_manifest_entries 1"))
	assert.Contains(t, w.Body.String(), `jboilerplate_portal_config_writes_total{success="true",target="db"} 1`)
}

func TestRoutes_LogoUploadIsServed(t *testing.T) {
	r, _ := newTestServer(t)
	token := login(t, r)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("type", "dark"))
	part, err := mw.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="file"; filename="brand.svg"`},
		"Content-Type":        {"image/svg+xml"},
	})
	require.NoError(t, err)
	_, _ = part.Write([]byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"path":"/assets/logo/logo-dark.svg"`)

	w = serve(r, http.MethodGet, "/api/logo-info?type=dark", "", nil)
	assert.Contains(t, w.Body.String(), `"path":"/assets/logo/logo-dark.svg"`)

	w = serve(r, http.MethodGet, "/assets/logo/logo-dark.svg", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<svg")

	w = serve(r, http.MethodGet, "/api/system/logs?module=upload", token, nil)
	assert.Contains(t, w.Body.String(), "[multipart form]")
}
