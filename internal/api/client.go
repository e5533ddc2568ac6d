// Package api holds the HTTP client for the remote blog API. All
// server-authoritative state flows through here; the stores in
// internal/session and internal/blog own the in-memory mirrors.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenFunc returns the current bearer token, or "" when anonymous.
type TokenFunc func() string

type Client struct {
	base  string
	httpc *http.Client
	token TokenFunc
}

// New creates a client for the API at base. token may be nil for a
// client that never authenticates.
func New(base string, timeout time.Duration, token TokenFunc) *Client {
	return &Client{
		base:  strings.TrimRight(base, "/"),
		httpc: &http.Client{Timeout: timeout},
		token: token,
	}
}

// Do runs a JSON round-trip against the API. body and out may be nil.
// Devuelve siempre un error de la taxonomía local (errors.go); el
// mensaje del servidor no se propaga.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: encode body: %w", method, path, err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, ErrNetwork)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		// vaciar el body para reutilizar la conexión
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: status %d: %w", method, path, resp.StatusCode, mapStatus(resp.StatusCode))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, path, ErrNetwork)
		}
	}
	return nil
}
