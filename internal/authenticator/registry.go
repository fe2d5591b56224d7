package authenticator

import (
	"fmt"

	"github.com/darmiel/realmbroker/internal/config"
	"github.com/darmiel/realmbroker/internal/core"
)

// Build creates the authenticator described by cfg. Every attempt is audited.
//
// The "default" type only accepts broker tokens. "test-inline" additionally
// accepts structured credentials with asserted identities and must not be
// used in production.
func Build(
	cfg config.AuthenticatorConfig,
	brokers core.TokenBrokerFactory,
	entityManagers core.EntityManagerFactory,
	auditor core.Auditor,
) (core.Authenticator, error) {
	var auth core.Authenticator
	switch cfg.Type {
	case config.AuthenticatorDefault, "":
		auth = NewBearerAuthenticator(brokers)
	case config.AuthenticatorTestInline:
		auth = NewChain(
			NewInlineAuthenticator(entityManagers, auditor),
			NewBearerAuthenticator(brokers),
		)
	default:
		return nil, fmt.Errorf("%w: unknown authenticator type %q", core.ErrConfiguration, cfg.Type)
	}
	return WithAudit(auth, auditor), nil
}
