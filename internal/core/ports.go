package core

import "context"

// MetaStore is the realm-scoped persistence layer for principals.
type MetaStore interface {
	// LoadPrincipalSecrets returns the secrets of the named principal.
	// It returns ErrPrincipalSecretsNotFound if there is no record, and an
	// error matching ErrInfrastructure if the store could not be queried.
	LoadPrincipalSecrets(ctx context.Context, principalName string) (*PrincipalSecrets, error)
}

// PrincipalStore is a MetaStore that can also manage principal records.
type PrincipalStore interface {
	MetaStore

	// CreatePrincipal stores a new principal. If clientSecret is empty a random
	// secret is generated. The plain secret is returned exactly once.
	CreatePrincipal(ctx context.Context, principalName, clientSecret string) (*PrincipalSecrets, string, error)

	// RotatePrincipalSecrets moves the main secret to the secondary slot and
	// stores a fresh main secret, which is returned.
	RotatePrincipalSecrets(ctx context.Context, principalName string) (*PrincipalSecrets, string, error)

	DeletePrincipal(ctx context.Context, principalName string) error

	ListPrincipals(ctx context.Context) ([]PrincipalSecrets, error)
}

// EntityManager is the per-realm handle to persistence.
type EntityManager interface {
	Realm() RealmContext
	MetaStore() MetaStore
}

// EntityManagerFactory maps realms to their entity managers.
// Handles are created on first use and reused afterwards.
type EntityManagerFactory interface {
	GetOrCreateEntityManager(ctx context.Context, realm RealmContext) (EntityManager, error)
}

// TokenBroker signs and verifies tokens for one realm.
type TokenBroker interface {
	Realm() RealmContext

	Issue(ctx context.Context, req TokenRequest) (*TokenArtifact, error)

	// Verify checks signature and expiry. Failures match ErrExpiredToken,
	// ErrInvalidSignature or ErrInvalidToken.
	Verify(ctx context.Context, token string) (*TokenClaims, error)

	// MetaStore returns the metastore of the realm the broker is bound to.
	MetaStore() MetaStore
}

// TokenBrokerFactory binds a TokenBroker to a realm on demand.
type TokenBrokerFactory interface {
	Build(ctx context.Context, realm RealmContext) (TokenBroker, error)
}

// Authenticator resolves a credential string into a principal of the given realm.
//
// A nil principal is always accompanied by an error. Credentials that the
// authenticator does not recognize produce an error matching ErrNoPrincipal.
type Authenticator interface {
	Name() string
	Authenticate(ctx context.Context, realm RealmContext, credentials string) (*AuthenticatedPrincipal, error)
}
