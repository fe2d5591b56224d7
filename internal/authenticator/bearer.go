package authenticator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/darmiel/realmbroker/internal/core"
	"github.com/darmiel/realmbroker/internal/credentials"
)

const BearerName = "bearer"

var _ core.Authenticator = (*BearerAuthenticator)(nil)

// BearerAuthenticator accepts tokens minted by the realm's token broker.
type BearerAuthenticator struct {
	brokers core.TokenBrokerFactory
}

func NewBearerAuthenticator(brokers core.TokenBrokerFactory) *BearerAuthenticator {
	return &BearerAuthenticator{brokers: brokers}
}

func (a *BearerAuthenticator) Name() string {
	return BearerName
}

func (a *BearerAuthenticator) Authenticate(
	ctx context.Context,
	realm core.RealmContext,
	creds string,
) (*core.AuthenticatedPrincipal, error) {
	token := strings.TrimSpace(creds)
	if token == "" || credentials.IsStructured(token) {
		return nil, fmt.Errorf("%w: credentials are not a bearer token", core.ErrNoPrincipal)
	}

	broker, err := a.brokers.Build(ctx, realm)
	if err != nil {
		return nil, fmt.Errorf("building token broker for realm '%s': %w", realm, err)
	}

	claims, err := broker.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	// the token may outlive its principal
	secrets, err := broker.MetaStore().LoadPrincipalSecrets(ctx, claims.Subject)
	switch {
	case errors.Is(err, core.ErrPrincipalSecretsNotFound):
		return nil, fmt.Errorf("%w: '%s'", core.ErrUnknownPrincipal, claims.Subject)
	case err != nil:
		return nil, infrastructure("loading principal secrets", err)
	}

	return &core.AuthenticatedPrincipal{
		Subject:       claims.Subject,
		Scope:         claims.Scope,
		IntegrationID: secrets.PrincipalID,
		Realm:         realm,
		Authenticator: a.Name(),
	}, nil
}
