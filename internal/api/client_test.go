package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestBearerAttachedWhenPresent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, func() string { return "tok-1" })
	if err := c.Do(context.Background(), http.MethodGet, "/posts", nil, nil, nil); err != nil {
		t.Fatal(err)
	}
	if got != "Bearer tok-1" {
		t.Fatalf("Authorization = %q", got)
	}
}

func TestNoBearerWhenAnonymous(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, func() string { return "" })
	if err := c.Do(context.Background(), http.MethodGet, "/posts", nil, nil, nil); err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Fatalf("unexpected Authorization header %q", got)
	}
}

func TestQueryEncoding(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Get("q")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, nil)
	q := url.Values{"q": {"hello world"}}
	if err := c.Do(context.Background(), http.MethodGet, "/posts", q, nil, nil); err != nil {
		t.Fatal(err)
	}
	if got != "hello world" {
		t.Fatalf("q = %q", got)
	}
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{401, ErrAuthentication},
		{403, ErrAuthorization},
		{404, ErrNotFound},
		{400, ErrValidation},
		{422, ErrValidation},
		{500, ErrNetwork},
		{502, ErrNetwork},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "server detail that must not leak", tc.status)
		}))
		c := New(srv.URL, time.Second, nil)
		err := c.Do(context.Background(), http.MethodGet, "/x", nil, nil, nil)
		srv.Close()
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: got %v, want %v", tc.status, err, tc.want)
		}
	}
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // cerrado a propósito

	c := New(srv.URL, time.Second, nil)
	err := c.Do(context.Background(), http.MethodGet, "/posts", nil, nil, nil)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("got %v, want ErrNetwork", err)
	}
}

func TestDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"p1","title":"T"}`))
	}))
	defer srv.Close()

	var out struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	c := New(srv.URL, time.Second, nil)
	if err := c.Do(context.Background(), http.MethodGet, "/posts/p1", nil, nil, &out); err != nil {
		t.Fatal(err)
	}
	if out.ID != "p1" || out.Title != "T" {
		t.Fatalf("decoded %+v", out)
	}
}
