// Package session holds the authenticated identity and drives the
// auth endpoints. The identity is replaced or cleared wholesale, never
// patched field by field.
package session

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"blogclient/internal/api"
	"blogclient/internal/log"
	"blogclient/internal/models"
	"blogclient/internal/token"
)

type Status int

const (
	// StatusLoading: la rehidratación del token guardado aún no terminó.
	StatusLoading Status = iota
	StatusAnonymous
	StatusAuthenticated
)

// Snapshot is an atomic view of the session for the access guard.
type Snapshot struct {
	Status Status
	User   models.User
}

type Store struct {
	mu     sync.RWMutex
	status Status
	user   models.User

	api    *api.Client
	tokens *token.Store
}

// NewStore builds the session store. It starts in StatusLoading until
// Rehydrate runs; construct once per process and inject it (no ambient
// globals).
func NewStore(client *api.Client, tokens *token.Store) *Store {
	return &Store{status: StatusLoading, api: client, tokens: tokens}
}

type credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login authenticates against /auth/login. On success the token is
// persisted and the identity replaced atomically; on any failure the
// prior state stays untouched.
func (s *Store) Login(ctx context.Context, email, password string) (models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return models.User{}, fmt.Errorf("login failed: %w", api.ErrValidation)
	}
	return s.authenticate(ctx, "/auth/login", credentials{Email: email, Password: password})
}

// Register creates an account via /auth/register; same contract as Login.
func (s *Store) Register(ctx context.Context, name, email, password string) (models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" || email == "" || password == "" {
		return models.User{}, fmt.Errorf("registration failed: %w", api.ErrValidation)
	}
	return s.authenticate(ctx, "/auth/register", credentials{Name: name, Email: email, Password: password})
}

func (s *Store) authenticate(ctx context.Context, path string, creds credentials) (models.User, error) {
	var out authResponse
	if err := s.api.Do(ctx, http.MethodPost, path, nil, creds, &out); err != nil {
		log.Warn.Printf("auth FAIL path=%s email=%s err=%v", path, creds.Email, err)
		// el detalle se pierde a propósito: para el caller todo es un
		// fallo de autenticación y la vista muestra un mensaje fijo
		return models.User{}, fmt.Errorf("%s failed: %w", strings.TrimPrefix(path, "/auth/"), api.ErrAuthentication)
	}
	if err := s.tokens.Save(out.Token); err != nil {
		return models.User{}, fmt.Errorf("persist credential: %w", err)
	}

	s.mu.Lock()
	s.status = StatusAuthenticated
	s.user = out.User
	s.mu.Unlock()

	log.Info.Printf("auth OK email=%s uid=%s role=%s", creds.Email, out.User.ID, out.User.Role)
	return out.User, nil
}

// Logout clears credential and identity unconditionally. Cannot fail.
func (s *Store) Logout() {
	s.tokens.Clear()
	s.mu.Lock()
	s.status = StatusAnonymous
	s.user = models.User{}
	s.mu.Unlock()
	log.Info.Printf("logout")
}

// Rehydrate validates a stored token against /users/me. Runs once at
// startup; until it returns, Snapshot reports StatusLoading and the
// guard defers instead of redirecting.
func (s *Store) Rehydrate(ctx context.Context) {
	if s.tokens.Token() == "" {
		s.setAnonymous()
		return
	}
	var u models.User
	if err := s.api.Do(ctx, http.MethodGet, "/users/me", nil, nil, &u); err != nil {
		// token caducado o inválido: se descarta y seguimos anónimos
		log.Warn.Printf("rehydrate FAIL err=%v", err)
		s.tokens.Clear()
		s.setAnonymous()
		return
	}
	s.mu.Lock()
	s.status = StatusAuthenticated
	s.user = u
	s.mu.Unlock()
	log.Info.Printf("rehydrate OK uid=%s role=%s", u.ID, u.Role)
}

func (s *Store) setAnonymous() {
	s.mu.Lock()
	s.status = StatusAnonymous
	s.user = models.User{}
	s.mu.Unlock()
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Status: s.status, User: s.user}
}

// CurrentUser returns the identity when authenticated.
func (s *Store) CurrentUser() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.status == StatusAuthenticated
}
