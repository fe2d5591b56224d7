package core

import "time"

// DefaultRealm is used when a request does not name a realm.
const DefaultRealm RealmContext = "default-realm"

// RealmContext identifies the tenant a request belongs to.
// All principals, secrets and brokers are scoped to exactly one realm.
type RealmContext string

func (r RealmContext) ID() string {
	return string(r)
}

func (r RealmContext) String() string {
	return string(r)
}

// PrincipalSecrets is the persisted secrets record of a principal.
type PrincipalSecrets struct {
	// PrincipalName is the name (client id) the record is keyed by.
	PrincipalName string `json:"principal_name"`

	// PrincipalID is the internal identifier of the principal.
	// It becomes the integration id of an authenticated principal.
	PrincipalID string `json:"principal_id"`

	// MainSecretHash is the bcrypt hash of the current client secret.
	MainSecretHash string `json:"-"`

	// SecondarySecretHash is the bcrypt hash of the previous client secret.
	// It stays valid after a rotation so clients can roll over.
	SecondarySecretHash string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthenticatedPrincipal is the identity handed back to the transport layer.
type AuthenticatedPrincipal struct {
	// Subject is the principal name.
	Subject string `json:"subject"`

	// Scope is the granted role or permission level.
	Scope string `json:"scope"`

	// IntegrationID is the internal principal id.
	// It is empty when authentication happened without a backing secrets record.
	IntegrationID string `json:"integration_id,omitempty"`

	// Realm the principal was authenticated in.
	Realm RealmContext `json:"realm"`

	// Authenticator that produced this principal (e.g. "inline", "bearer").
	Authenticator string `json:"authenticator"`
}

// HasIntegrationID reports whether the principal is backed by a secrets record.
func (p *AuthenticatedPrincipal) HasIntegrationID() bool {
	return p.IntegrationID != ""
}

// TokenRequest describes a token to be issued by a TokenBroker.
type TokenRequest struct {
	Subject       string
	Scope         string
	IntegrationID string

	// Lifetime is a hint; the broker caps it at its configured maximum.
	// Zero or negative means the maximum.
	Lifetime time.Duration
}

// TokenClaims is the verified content of a broker token.
type TokenClaims struct {
	TokenID       string       `json:"token_id"`
	Subject       string       `json:"subject"`
	Scope         string       `json:"scope"`
	IntegrationID string       `json:"integration_id,omitempty"`
	Realm         RealmContext `json:"realm"`
	IssuedAt      time.Time    `json:"issued_at"`
	ExpiresAt     time.Time    `json:"expires_at"`
}

// TokenArtifact is the result of a successful Issue operation.
type TokenArtifact struct {
	// Value is the signed token.
	Value string `json:"value"`

	// TokenType is always "bearer".
	TokenType string `json:"token_type"`

	Scope string `json:"scope"`

	// Fingerprint identifies the token in audit logs without exposing it.
	Fingerprint string `json:"fingerprint"`

	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExpiresIn returns the token lifetime in whole seconds.
func (t *TokenArtifact) ExpiresIn() int64 {
	return int64(t.ExpiresAt.Sub(t.IssuedAt).Seconds())
}
