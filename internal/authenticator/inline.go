package authenticator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/realmbroker/internal/audit"
	"github.com/darmiel/realmbroker/internal/core"
	"github.com/darmiel/realmbroker/internal/credentials"
)

const InlineName = "inline"

var _ core.Authenticator = (*InlineAuthenticator)(nil)

// InlineAuthenticator accepts structured credentials such as
// "principal:alice;role:admin" and trusts the claimed identity.
//
// A principal without a secrets record is still authenticated, without an
// integration id. Only use it where asserted identities are acceptable.
type InlineAuthenticator struct {
	entityManagers core.EntityManagerFactory
	auditor        core.Auditor
}

func NewInlineAuthenticator(entityManagers core.EntityManagerFactory, auditor core.Auditor) *InlineAuthenticator {
	if auditor == nil {
		auditor = audit.NewNoopAuditor()
	}
	return &InlineAuthenticator{
		entityManagers: entityManagers,
		auditor:        auditor,
	}
}

func (a *InlineAuthenticator) Name() string {
	return InlineName
}

func (a *InlineAuthenticator) Authenticate(
	ctx context.Context,
	realm core.RealmContext,
	creds string,
) (*core.AuthenticatedPrincipal, error) {
	claims, err := credentials.Parse(creds)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrMalformedCredentials, err)
	}

	name, ok := claims.Principal()
	if !ok {
		return nil, fmt.Errorf("%w: credentials do not name a principal", core.ErrNoPrincipal)
	}

	em, err := a.entityManagers.GetOrCreateEntityManager(ctx, realm)
	if err != nil {
		return nil, infrastructure("getting entity manager", err)
	}

	principal := &core.AuthenticatedPrincipal{
		Subject:       name,
		Scope:         claims.Role(),
		Realm:         realm,
		Authenticator: a.Name(),
	}

	secrets, err := em.MetaStore().LoadPrincipalSecrets(ctx, name)
	switch {
	case err == nil:
		principal.IntegrationID = secrets.PrincipalID
	case errors.Is(err, core.ErrPrincipalSecretsNotFound):
		a.secretsMissing(ctx, principal)
	default:
		return nil, infrastructure("loading principal secrets", err)
	}
	return principal, nil
}

// secretsMissing reports a principal that was authenticated by name only.
func (a *InlineAuthenticator) secretsMissing(ctx context.Context, principal *core.AuthenticatedPrincipal) {
	entry := core.AuditEntry{
		ID:            core.CorrelationID(ctx),
		Time:          time.Now(),
		Action:        core.ActionAuthSecretsMissing,
		Realm:         principal.Realm,
		Principal:     principal.Subject,
		Scope:         principal.Scope,
		Authenticator: principal.Authenticator,
		Granted:       true,
		Metadata: map[string]any{
			"integration_id": false,
		},
	}
	if err := a.auditor.Log(entry); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to write audit log entry for missing principal secrets")
	}
}

func infrastructure(op string, err error) error {
	if errors.Is(err, core.ErrInfrastructure) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return core.Infrastructure(op, err)
}
