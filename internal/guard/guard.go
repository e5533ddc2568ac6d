// Package guard is the single place that decides whether a protected
// view renders. Views ask the guard instead of re-checking roles.
package guard

import (
	"blogclient/internal/session"
)

type Requirement int

const (
	Public Requirement = iota
	Authenticated
	AdminRole
)

type Decision int

const (
	Allow Decision = iota
	// Deferred: la sesión sigue rehidratando; no renderizar ni
	// redirigir todavía (evita el flash-redirect).
	Deferred
	RedirectLogin
	RedirectHome
)

// Check is pure: same snapshot and requirement, same decision.
func Check(s session.Snapshot, req Requirement) Decision {
	if req == Public {
		return Allow
	}
	if s.Status == session.StatusLoading {
		return Deferred
	}
	if s.Status != session.StatusAuthenticated {
		return RedirectLogin
	}
	if req == AdminRole && !s.User.IsAdmin() {
		// degradación silenciosa: usuario válido sin rol admin
		return RedirectHome
	}
	return Allow
}
