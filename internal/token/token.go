// Package token persists the bearer credential across runs. It is the
// only durable state the client keeps: one token string in one file.
package token

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store carga el token una sola vez al abrir; después trabaja sobre la
// copia en memoria. Solo el session store debe escribirlo.
type Store struct {
	mu   sync.Mutex
	path string
	tok  string
}

// DefaultPath returns ~/.blogclient/token.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".blogclient", "token"), nil
}

// Open reads the token file if it exists. A missing file is not an
// error, it just means an anonymous start.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read token file: %w", err)
	}
	s.tok = strings.TrimSpace(string(b))
	return s, nil
}

func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tok
}

func (s *Store) Save(tok string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(tok+"\n"), 0600); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	s.tok = tok
	return nil
}

// Clear removes the token from memory and disk. Best effort on disk:
// logout no puede fallar.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tok = ""
	// si falla el borrado queda un fichero huérfano; el próximo Save lo pisa
	_ = os.Remove(s.path)
}
