package service

import (
	"errors"
	"net/http"

	"github.com/darmiel/realmbroker/internal/core"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	StatusCode int
	Wrapped    error
}

func (e HTTPError) Error() string {
	return e.Wrapped.Error()
}

func (e HTTPError) Unwrap() error {
	return e.Wrapped
}

func httpError(statusCode int, err error) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Wrapped:    err,
	}
}

// StatusCode maps an error of the broker to an HTTP status code.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	switch {
	case errors.Is(err, core.ErrNoPrincipal),
		errors.Is(err, core.ErrMalformedCredentials),
		errors.Is(err, core.ErrExpiredToken),
		errors.Is(err, core.ErrInvalidSignature),
		errors.Is(err, core.ErrInvalidToken),
		errors.Is(err, core.ErrUnknownPrincipal),
		errors.Is(err, core.ErrInvalidClientCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrScopeNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, core.ErrPrincipalSecretsNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrPrincipalExists):
		return http.StatusConflict
	case errors.Is(err, core.ErrInfrastructure):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
