package core

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is a fatal setup problem, e.g. no secret source.
	ErrConfiguration = errors.New("configuration error")

	// ErrSecretUnavailable means the signing secret could not be resolved.
	ErrSecretUnavailable = errors.New("secret unavailable")

	// ErrMalformedCredentials is reserved for strict credential parsing.
	ErrMalformedCredentials = errors.New("malformed credentials")

	// ErrNoPrincipal means the credentials did not name a principal.
	ErrNoPrincipal = errors.New("no principal")

	// ErrInfrastructure means a collaborator (e.g. the metastore) failed.
	ErrInfrastructure = errors.New("infrastructure error")

	// ErrPrincipalSecretsNotFound means there is no secrets record.
	// On the inline authentication path this is not a failure.
	ErrPrincipalSecretsNotFound = errors.New("principal secrets not found")

	// ErrPrincipalExists is returned when creating a principal twice.
	ErrPrincipalExists = errors.New("principal already exists")

	ErrExpiredToken     = errors.New("token expired")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrInvalidToken     = errors.New("invalid token")

	// ErrUnknownPrincipal means a verified token names a principal that no
	// longer exists in the realm.
	ErrUnknownPrincipal = errors.New("unknown principal")

	ErrInvalidClientCredentials = errors.New("invalid client credentials")

	// ErrScopeNotAllowed means no scope rule grants the requested scope.
	ErrScopeNotAllowed = errors.New("scope not allowed")
)

// SecretUnavailableError is returned when a file-backed secret cannot be read.
type SecretUnavailableError struct {
	Path string
	Err  error
}

func (e *SecretUnavailableError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", ErrSecretUnavailable, e.Err)
	}
	return fmt.Sprintf("%s: reading '%s': %v", ErrSecretUnavailable, e.Path, e.Err)
}

func (e *SecretUnavailableError) Unwrap() error {
	return e.Err
}

func (e *SecretUnavailableError) Is(target error) bool {
	return target == ErrSecretUnavailable
}

// Infrastructure wraps err so it matches ErrInfrastructure while keeping the cause.
func Infrastructure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInfrastructure, op, err)
}
