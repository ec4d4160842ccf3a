package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jboilerplate/portal/internal/services"
)

const maxAuditBody = 2000

// AuditLog records write operations (POST/PUT/DELETE) to system_logs.
func AuditLog(logs *services.SystemLogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method != http.MethodPost && method != http.MethodPut && method != http.MethodDelete {
			c.Next()
			return
		}

		var bodySnippet string
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			bodySnippet = "[multipart form]"
		} else if c.Request.Body != nil {
			bodyBytes, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			bodySnippet = string(bodyBytes)
			if len(bodySnippet) > maxAuditBody {
				bodySnippet = bodySnippet[:maxAuditBody] + "...[truncated]"
			}
			bodySnippet = maskSensitiveFields(bodySnippet)
		}

		c.Next()

		status := c.Writer.Status()
		module, action := parseRouteInfo(c.FullPath(), method)

		var uid *uint
		if userID := GetUserID(c); userID > 0 {
			uid = &userID
		}

		actor := GetEmail(c)
		if actor == "" {
			actor = "anonymous"
		}
		entry := services.LogEntry{
			Module:    module,
			Action:    action,
			Message:   formatAuditMessage(actor, method, c.Request.URL.Path, status),
			UserID:    uid,
			Actor:     actor,
			Status:    status,
			RequestID: c.GetString(RequestIDKey),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Extra: map[string]interface{}{
				"method": method,
				"path":   c.Request.URL.Path,
				"body":   bodySnippet,
			},
		}
		if status >= http.StatusInternalServerError {
			logs.Error(entry)
		} else {
			logs.Info(entry)
		}
	}
}

// parseRouteInfo derives module and action from a route pattern, e.g.
// "/api/menu-structure" + POST gives module "menu_structure", action "save".
func parseRouteInfo(fullPath, method string) (module, action string) {
	path := strings.TrimPrefix(fullPath, "/api/")
	parts := strings.Split(path, "/")

	module = strings.ReplaceAll(parts[0], "-", "_")
	if module == "" {
		module = "unknown"
	}

	if len(parts) > 1 && !strings.HasPrefix(parts[len(parts)-1], ":") {
		return module, strings.ReplaceAll(parts[len(parts)-1], "-", "_")
	}

	switch method {
	case http.MethodPost:
		action = "save"
	case http.MethodPut:
		action = "update"
	case http.MethodDelete:
		action = "delete"
	default:
		action = strings.ToLower(method)
	}
	return module, action
}

func formatAuditMessage(actor, method, path string, status int) string {
	outcome := "OK"
	if status < 200 || status >= 300 {
		outcome = "Failed"
	}
	return "[Audit] " + actor + " " + method + " " + path + " -> " + outcome
}

// maskSensitiveFields replaces sensitive values in JSON body
func maskSensitiveFields(body string) string {
	sensitiveKeys := []string{"password", "secret", "token", "csrfToken", "access_token"}
	for _, key := range sensitiveKeys {
		body = maskJSONValue(body, key)
	}
	return body
}

// maskJSONValue masks every quoted string value of key, best effort.
func maskJSONValue(body, key string) string {
	needle := "\"" + strings.ToLower(key) + "\""
	searchFrom := 0
	for {
		lower := strings.ToLower(body)
		rel := strings.Index(lower[searchFrom:], needle)
		if rel == -1 {
			return body
		}
		idx := searchFrom + rel + len(needle)

		colon := strings.Index(body[idx:], ":")
		if colon == -1 {
			return body
		}
		valueStart := idx + colon + 1
		for valueStart < len(body) && (body[valueStart] == ' ' || body[valueStart] == '\t') {
			valueStart++
		}
		if valueStart >= len(body) || body[valueStart] != '"' {
			searchFrom = idx
			continue
		}
		endQuote := strings.Index(body[valueStart+1:], "\"")
		if endQuote == -1 {
			return body
		}
		body = body[:valueStart+1] + "***" + body[valueStart+1+endQuote:]
		searchFrom = valueStart + 1 + len("***") + 1
		if searchFrom >= len(body) {
			return body
		}
	}
}
