package httpx

import (
	"fmt"
	"net/http"
	"time"

	"blogclient/internal/guard"
	"blogclient/internal/log"
)

// guarded resuelve la decisión del Access Guard antes de montar la
// vista. Las vistas nunca re-comprueban roles por su cuenta.
func (s *Server) guarded(req guard.Requirement, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch guard.Check(s.Session.Snapshot(), req) {
		case guard.Allow:
			next(w, r)
		case guard.Deferred:
			// sesión aún rehidratando: no redirigir, mostrar un
			// interludio que reintenta solo
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprintf(w, `<!doctype html><html><head><meta http-equiv="refresh" content="1"><title>Loading…</title></head><body><p>Loading session…</p></body></html>`)
		case guard.RedirectLogin:
			http.Redirect(w, r, "/login", http.StatusSeeOther)
		case guard.RedirectHome:
			http.Redirect(w, r, "/", http.StatusSeeOther)
		}
	}
}

// ——— access log ———

type statusRW struct {
	http.ResponseWriter
	status int
}

func (w *statusRW) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// WithAccessLog envuelve un handler y loguea METHOD PATH -> STATUS (duración)
func WithAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusRW{ResponseWriter: w, status: 200}
		next.ServeHTTP(sw, r)
		log.Info.Printf("%s %s -> %d (%s)", r.Method, r.URL.Path, sw.status, time.Since(start).Truncate(time.Millisecond))
	})
}
