package shell

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jboilerplate/portal/internal/cache"
)

const maxResponseBody = 2 << 20

// APIError is a portal call that completed with a failure: a non-2xx status
// or a body with "success": false.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type envelope struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
}

// Client talks JSON to the portal server.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	// Token supplies the bearer token per request; empty means anonymous.
	Token func() string
	// Dedup, when set, shares identical concurrent GETs made through Get.
	Dedup *cache.Deduper
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func (c *Client) NewRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	if strings.TrimSpace(c.BaseURL) == "" {
		return nil, errors.New("base url is empty")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	url := strings.TrimRight(c.BaseURL, "/") + path

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != nil {
		if token := strings.TrimSpace(c.Token()); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// Do sends req and decodes the body into out. Failures, including a
// "success": false body on a 2xx response, come back as *APIError.
func (c *Client) Do(req *http.Request, out any) error {
	b, err := c.fetch(req)
	if err != nil {
		return err
	}
	return decodeBody(b, out)
}

func (c *Client) fetch(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var env envelope
		if err := json.Unmarshal(b, &env); err == nil && strings.TrimSpace(env.Error) != "" {
			return nil, &APIError{Status: resp.StatusCode, Message: env.Error}
		}
		return nil, &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(b))}
	}
	return b, nil
}

func decodeBody(b []byte, out any) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return err
		}
		if env.Success != nil && !*env.Success {
			msg := env.Error
			if msg == "" {
				msg = "request failed"
			}
			return &APIError{Message: msg}
		}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(trimmed, out)
}

// Get fetches path, sharing the call with identical in-flight GETs when
// Dedup is set.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	req, err := c.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if c.Dedup == nil {
		return c.Do(req, out)
	}

	key := cache.RequestKey(http.MethodGet, req.URL.String(), nil)
	v, _, err := c.Dedup.Do(ctx, key, func() (any, error) {
		return c.fetch(req.Clone(context.WithoutCancel(ctx)))
	})
	if err != nil {
		return err
	}
	return decodeBody(v.([]byte), out)
}

// GetFresh fetches path bypassing HTTP caches and request sharing.
func (c *Client) GetFresh(ctx context.Context, path string, out any) error {
	req, err := c.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	return c.Do(req, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	req, err := c.NewRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	return c.Do(req, out)
}
