package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"blogclient/internal/api"
	"blogclient/internal/token"
)

func newStore(t *testing.T, h http.Handler) (*Store, *token.Store) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	tokens, err := token.Open(filepath.Join(t.TempDir(), "token"))
	if err != nil {
		t.Fatal(err)
	}
	client := api.New(srv.URL, time.Second, tokens.Token)
	return NewStore(client, tokens), tokens
}

func authHandler(t *testing.T, path, tok string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("bad auth body: %v", err)
		}
		if body.Email == "" || body.Password == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"token": tok,
			"user": map[string]string{
				"id": "u1", "email": body.Email, "name": "Ana", "role": "user",
			},
		})
	})
	return mux
}

func TestStartsLoading(t *testing.T) {
	s, _ := newStore(t, http.NotFoundHandler())
	if s.Snapshot().Status != StatusLoading {
		t.Fatal("fresh store should report StatusLoading")
	}
}

func TestLoginSuccess(t *testing.T) {
	s, tokens := newStore(t, authHandler(t, "/auth/login", "tok-login"))

	u, err := s.Login(context.Background(), "ana@example.com", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != "u1" || u.Email != "ana@example.com" {
		t.Fatalf("identity %+v", u)
	}
	if tokens.Token() != "tok-login" {
		t.Fatalf("token not persisted, got %q", tokens.Token())
	}
	snap := s.Snapshot()
	if snap.Status != StatusAuthenticated || snap.User.ID != "u1" {
		t.Fatalf("snapshot %+v", snap)
	}
}

func TestLoginFailureLeavesStateUntouched(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	})
	s, tokens := newStore(t, mux)
	s.Rehydrate(context.Background()) // sin token: anónimo

	_, err := s.Login(context.Background(), "ana@example.com", "wrong")
	if !errors.Is(err, api.ErrAuthentication) {
		t.Fatalf("got %v, want ErrAuthentication", err)
	}
	if tokens.Token() != "" {
		t.Fatal("failed login persisted a token")
	}
	if s.Snapshot().Status != StatusAnonymous {
		t.Fatal("failed login changed session state")
	}
}

func TestLoginValidatesBeforeNetwork(t *testing.T) {
	s, _ := newStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("network call for empty credentials")
	}))
	if _, err := s.Login(context.Background(), "", ""); !errors.Is(err, api.ErrValidation) {
		t.Fatalf("got %v, want ErrValidation", err)
	}
}

func TestRegister(t *testing.T) {
	s, tokens := newStore(t, authHandler(t, "/auth/register", "tok-reg"))

	u, err := s.Register(context.Background(), "Ana", "ana@example.com", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != "u1" {
		t.Fatalf("identity %+v", u)
	}
	if tokens.Token() != "tok-reg" {
		t.Fatal("token not persisted after register")
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	s, tokens := newStore(t, authHandler(t, "/auth/login", "tok"))
	if _, err := s.Login(context.Background(), "ana@example.com", "pw"); err != nil {
		t.Fatal(err)
	}

	s.Logout()

	if _, ok := s.CurrentUser(); ok {
		t.Fatal("identity survived logout")
	}
	if tokens.Token() != "" {
		t.Fatal("token survived logout")
	}
	if s.Snapshot().Status != StatusAnonymous {
		t.Fatal("status after logout")
	}
}

func TestRehydrateValidToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-stored" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"id": "u1", "email": "ana@example.com", "name": "Ana", "role": "admin",
		})
	})
	s, tokens := newStore(t, mux)
	if err := tokens.Save("tok-stored"); err != nil {
		t.Fatal(err)
	}

	s.Rehydrate(context.Background())

	snap := s.Snapshot()
	if snap.Status != StatusAuthenticated || !snap.User.IsAdmin() {
		t.Fatalf("snapshot %+v", snap)
	}
}

func TestRehydrateInvalidTokenClearsCredential(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	s, tokens := newStore(t, mux)
	if err := tokens.Save("tok-expired"); err != nil {
		t.Fatal(err)
	}

	s.Rehydrate(context.Background())

	if s.Snapshot().Status != StatusAnonymous {
		t.Fatal("expired token left session non-anonymous")
	}
	if tokens.Token() != "" {
		t.Fatal("expired token not cleared")
	}
}

func TestRehydrateWithoutToken(t *testing.T) {
	s, _ := newStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no token stored, nothing should hit the network")
	}))
	s.Rehydrate(context.Background())
	if s.Snapshot().Status != StatusAnonymous {
		t.Fatal("expected anonymous after rehydrate without token")
	}
}
