package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/realmbroker/internal/audit"
	"github.com/darmiel/realmbroker/internal/core"
	"github.com/darmiel/realmbroker/internal/store"
)

// ScopePolicy decides whether a principal may request a scope.
// Allow returns the name of the granting rule.
type ScopePolicy interface {
	Allow(realm core.RealmContext, principal, scope string) (string, error)
}

// TokenService exchanges client credentials for broker tokens.
type TokenService struct {
	brokers core.TokenBrokerFactory
	auditor core.Auditor
	scopes  ScopePolicy
}

type Option func(s *TokenService)

// WithScopePolicy restricts the scopes granted at the token endpoint.
func WithScopePolicy(p ScopePolicy) Option {
	return func(s *TokenService) {
		s.scopes = p
	}
}

func NewTokenService(brokers core.TokenBrokerFactory, auditor core.Auditor, opts ...Option) *TokenService {
	if auditor == nil {
		auditor = audit.NewNoopAuditor()
	}
	s := &TokenService{
		brokers: brokers,
		auditor: auditor,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExchangeClientCredentials verifies a client id and secret against the
// realm's metastore and issues a token. Both the main and the secondary
// secret of the principal are accepted.
func (s *TokenService) ExchangeClientCredentials(ctx context.Context, req ClientCredentialsRequest) (*TokenResponse, error) {
	logger := log.Ctx(ctx)

	scope := req.Scope
	if scope == "" {
		scope = DefaultScope
	}

	auditEntry := core.AuditEntry{
		ID:        core.CorrelationID(ctx),
		Time:      time.Now(),
		Action:    core.ActionTokenIssue,
		Realm:     req.Realm,
		Principal: req.ClientID,
		Scope:     scope,
	}
	defer func() {
		if err := s.auditor.Log(auditEntry); err != nil {
			logger.Error().Err(err).Msg("failed to write audit log entry for token issuance")
		}
	}()

	if req.ClientID == "" || req.ClientSecret == "" {
		auditEntry.Error = "missing client credentials"
		return nil, httpError(http.StatusBadRequest,
			fmt.Errorf("%w: client_id and client_secret are required", core.ErrInvalidClientCredentials))
	}

	broker, err := s.brokers.Build(ctx, req.Realm)
	if err != nil {
		auditEntry.Error = "token broker unavailable"
		return nil, httpError(StatusCode(err), fmt.Errorf("building token broker: %w", err))
	}

	secrets, err := broker.MetaStore().LoadPrincipalSecrets(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, core.ErrPrincipalSecretsNotFound) {
			auditEntry.Error = "unknown client"
			return nil, httpError(http.StatusUnauthorized, core.ErrInvalidClientCredentials)
		}
		auditEntry.Error = "metastore lookup failed"
		return nil, httpError(http.StatusServiceUnavailable, fmt.Errorf("loading principal secrets: %w", err))
	}
	if !store.MatchesClientSecret(secrets, req.ClientSecret) {
		auditEntry.Error = "client secret mismatch"
		return nil, httpError(http.StatusUnauthorized, core.ErrInvalidClientCredentials)
	}

	logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("sub", secrets.PrincipalName)
	})

	if s.scopes != nil {
		rule, err := s.scopes.Allow(req.Realm, secrets.PrincipalName, scope)
		if err != nil {
			auditEntry.Error = err.Error()
			return nil, httpError(StatusCode(err), err)
		}
		if rule != "" {
			auditEntry.Metadata = map[string]any{"scope_rule": rule}
		}
	}

	principal := &core.AuthenticatedPrincipal{
		Subject:       secrets.PrincipalName,
		Scope:         scope,
		IntegrationID: secrets.PrincipalID,
		Realm:         req.Realm,
		Authenticator: "client_credentials",
	}
	artifact, err := s.issue(ctx, broker, principal, req.Lifetime)
	if err != nil {
		auditEntry.Error = "issuing failed"
		return nil, err
	}

	auditEntry.Granted = true
	auditEntry.TokenFingerprint = artifact.Fingerprint
	return &TokenResponse{Artifact: artifact, Principal: principal}, nil
}

// Refresh issues a fresh token for an authenticated caller.
// Principals without a secrets record cannot refresh.
func (s *TokenService) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	logger := log.Ctx(ctx)
	principal := req.Principal

	auditEntry := core.AuditEntry{
		ID:     core.CorrelationID(ctx),
		Time:   time.Now(),
		Action: core.ActionTokenRefresh,
	}
	defer func() {
		if err := s.auditor.Log(auditEntry); err != nil {
			logger.Error().Err(err).Msg("failed to write audit log entry for token refresh")
		}
	}()

	if principal == nil {
		auditEntry.Error = "not authenticated"
		return nil, httpError(http.StatusUnauthorized, core.ErrNoPrincipal)
	}
	auditEntry.Realm = principal.Realm
	auditEntry.Principal = principal.Subject
	auditEntry.Scope = principal.Scope
	auditEntry.Authenticator = principal.Authenticator

	if !principal.HasIntegrationID() {
		auditEntry.Error = "principal has no secrets record"
		return nil, httpError(http.StatusForbidden,
			fmt.Errorf("principal '%s' has no secrets record and cannot refresh tokens", principal.Subject))
	}

	// rules may have changed since the presented token was issued
	if s.scopes != nil {
		rule, err := s.scopes.Allow(principal.Realm, principal.Subject, principal.Scope)
		if err != nil {
			auditEntry.Error = err.Error()
			return nil, httpError(StatusCode(err), err)
		}
		if rule != "" {
			auditEntry.Metadata = map[string]any{"scope_rule": rule}
		}
	}

	broker, err := s.brokers.Build(ctx, principal.Realm)
	if err != nil {
		auditEntry.Error = "token broker unavailable"
		return nil, httpError(StatusCode(err), fmt.Errorf("building token broker: %w", err))
	}

	artifact, err := s.issue(ctx, broker, principal, req.Lifetime)
	if err != nil {
		auditEntry.Error = "issuing failed"
		return nil, err
	}

	auditEntry.Granted = true
	auditEntry.TokenFingerprint = artifact.Fingerprint
	return &TokenResponse{Artifact: artifact, Principal: principal}, nil
}

func (s *TokenService) issue(
	ctx context.Context,
	broker core.TokenBroker,
	principal *core.AuthenticatedPrincipal,
	lifetime time.Duration,
) (*core.TokenArtifact, error) {
	artifact, err := broker.Issue(ctx, core.TokenRequest{
		Subject:       principal.Subject,
		Scope:         principal.Scope,
		IntegrationID: principal.IntegrationID,
		Lifetime:      lifetime,
	})
	if err != nil {
		return nil, httpError(http.StatusInternalServerError, fmt.Errorf("issuing token: %w", err))
	}
	return artifact, nil
}
