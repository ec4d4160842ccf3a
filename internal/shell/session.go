package shell

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

var ErrNotLoggedIn = errors.New("not logged in")

type User struct {
	ID     uint   `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Role   string `json:"role"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	CSRFToken string    `json:"csrfToken"`
	ExpireAt  time.Time `json:"expireAt"`
	User      *User     `json:"user"`
}

type meResponse struct {
	User *User `json:"user"`
}

// Session is the signed-in user as kept in client storage. It implements
// AuthState for the guard.
type Session struct {
	client  *Client
	storage Storage
	now     func() time.Time
	log     zerolog.Logger
	mu      sync.Mutex
}

func NewSession(client *Client, storage Storage, now func() time.Time, log zerolog.Logger) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{client: client, storage: storage, now: now, log: log}
}

// Token returns the stored access token, or "" when signed out.
func (s *Session) Token() string {
	token, _ := s.storage.Get(KeyAccessToken)
	return token
}

func (s *Session) Login(ctx context.Context, email, password string) (*User, error) {
	var resp loginResponse
	body := map[string]string{"email": email, "password": password}
	if err := s.client.Post(ctx, "/api/auth/login", body, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" || resp.User == nil {
		return nil, errors.New("login response missing token or user")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storeUser(resp.User); err != nil {
		return nil, err
	}
	if err := s.storage.Set(KeyAccessToken, resp.Token); err != nil {
		return nil, err
	}
	if resp.CSRFToken != "" {
		if err := s.storage.Set(KeyCSRFToken, resp.CSRFToken); err != nil {
			return nil, err
		}
	}
	s.log.Info().Str("email", resp.User.Email).Str("role", resp.User.Role).Msg("signed in")
	return resp.User, nil
}

// Logout tells the server and always clears local credentials.
func (s *Session) Logout(ctx context.Context) error {
	var err error
	if s.Token() != "" {
		err = s.client.Post(ctx, "/api/auth/logout", nil, nil)
		if err != nil {
			s.log.Warn().Err(err).Msg("server logout failed, clearing local session anyway")
		}
	}
	s.clear()
	return err
}

func (s *Session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range []string{KeyAccessToken, KeyCSRFToken, KeyUser} {
		if err := s.storage.Remove(key); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("failed to clear session key")
		}
	}
}

// IsAuthenticated reports whether a token and user are stored and the
// token, when it carries an exp claim, has not expired.
func (s *Session) IsAuthenticated() bool {
	token := s.Token()
	if token == "" || s.CurrentUser() == nil {
		return false
	}
	return !s.expired(token)
}

func (s *Session) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// Opaque tokens are checked by the server.
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !s.now().Before(exp.Time)
}

// Role is the signed-in user's role, or "" when signed out.
func (s *Session) Role() string {
	if u := s.CurrentUser(); u != nil {
		return u.Role
	}
	return ""
}

func (s *Session) CurrentUser() *User {
	raw, ok := s.storage.Get(KeyUser)
	if !ok || raw == "" {
		return nil
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil
	}
	return &u
}

// Refresh reloads the user from the server. A 401 signs the session out.
func (s *Session) Refresh(ctx context.Context) (*User, error) {
	if s.Token() == "" {
		return nil, ErrNotLoggedIn
	}
	var resp meResponse
	if err := s.client.Get(ctx, "/api/auth/me", &resp); err != nil {
		if IsStatus(err, http.StatusUnauthorized) {
			s.clear()
		}
		return nil, err
	}
	if resp.User == nil {
		return nil, errors.New("user missing from response")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storeUser(resp.User); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (s *Session) storeUser(u *User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.storage.Set(KeyUser, string(data))
}
