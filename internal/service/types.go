package service

import (
	"time"

	"github.com/darmiel/realmbroker/internal/core"
)

// DefaultScope is granted when a client does not request a scope.
const DefaultScope = "PRINCIPAL_ROLE:ALL"

type ClientCredentialsRequest struct {
	Realm core.RealmContext

	ClientID     string
	ClientSecret string

	// Scope is optional. If empty, DefaultScope is granted.
	Scope string

	// Lifetime is optional and capped by the broker.
	Lifetime time.Duration
}

type RefreshRequest struct {
	// Principal is the already authenticated caller.
	Principal *core.AuthenticatedPrincipal

	Lifetime time.Duration
}

type TokenResponse struct {
	Artifact *core.TokenArtifact

	// Principal the token was issued to.
	Principal *core.AuthenticatedPrincipal
}
