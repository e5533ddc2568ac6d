package api

import "errors"

var (
	// ErrAuthentication is returned when the server rejects the credentials (401).
	ErrAuthentication = errors.New("authentication failed")
	// ErrAuthorization is returned when the session lacks the required role or ownership (403).
	ErrAuthorization = errors.New("authorization denied")
	// ErrValidation is returned for rejected input, client-side or server-side (400/422).
	ErrValidation = errors.New("invalid input")
	// ErrNotFound is returned when the requested post/comment/user does not exist (404).
	ErrNotFound = errors.New("not found")
	// ErrNetwork covers transport failures and 5xx responses.
	ErrNetwork = errors.New("network failure")
)

// mapStatus traduce el status HTTP a la taxonomía local. El detalle del
// error del servidor se descarta a propósito: las vistas muestran un
// mensaje fijo por operación.
func mapStatus(status int) error {
	switch {
	case status == 401:
		return ErrAuthentication
	case status == 403:
		return ErrAuthorization
	case status == 404:
		return ErrNotFound
	case status == 400 || status == 422:
		return ErrValidation
	default:
		return ErrNetwork
	}
}
