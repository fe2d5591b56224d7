package broker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"

	"github.com/darmiel/realmbroker/internal/audit"
	"github.com/darmiel/realmbroker/internal/core"
	"github.com/darmiel/realmbroker/internal/secret"
)

const (
	Issuer    = "realmbroker"
	TokenType = "bearer"
)

var _ core.TokenBroker = (*SymmetricKeyBroker)(nil)

// Claims is the JWT payload of broker tokens.
type Claims struct {
	Scope       string `json:"scope,omitempty"`
	PrincipalID string `json:"principal_id,omitempty"`
	Realm       string `json:"realm"`
	jwt.RegisteredClaims
}

// SymmetricKeyBroker signs and verifies HS256 tokens for one realm.
// It is immutable after construction and safe for concurrent use.
type SymmetricKeyBroker struct {
	realm       core.RealmContext
	metaStore   core.MetaStore
	maxLifetime time.Duration
	source      secret.Source
	now         func() time.Time
}

// NewSymmetricKeyBroker binds a broker to a realm's metastore.
// The secret is not resolved until a token is issued or verified.
func NewSymmetricKeyBroker(
	realm core.RealmContext,
	metaStore core.MetaStore,
	maxLifetime time.Duration,
	source secret.Source,
	now func() time.Time,
) *SymmetricKeyBroker {
	if now == nil {
		now = time.Now
	}
	return &SymmetricKeyBroker{
		realm:       realm,
		metaStore:   metaStore,
		maxLifetime: maxLifetime,
		source:      source,
		now:         now,
	}
}

func (b *SymmetricKeyBroker) Realm() core.RealmContext {
	return b.realm
}

func (b *SymmetricKeyBroker) MetaStore() core.MetaStore {
	return b.metaStore
}

// MaxLifetime is the upper bound of issued token lifetimes.
func (b *SymmetricKeyBroker) MaxLifetime() time.Duration {
	return b.maxLifetime
}

// lifetime caps the requested lifetime at the configured maximum.
func (b *SymmetricKeyBroker) lifetime(hint time.Duration) time.Duration {
	if hint <= 0 || hint > b.maxLifetime {
		return b.maxLifetime
	}
	return hint
}

func (b *SymmetricKeyBroker) key(ctx context.Context) ([]byte, error) {
	s, err := b.source.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving signing secret for realm '%s': %w", b.realm, err)
	}
	return []byte(s), nil
}

func (b *SymmetricKeyBroker) Issue(ctx context.Context, req core.TokenRequest) (*core.TokenArtifact, error) {
	if req.Subject == "" {
		return nil, fmt.Errorf("%w: subject is required", core.ErrInvalidToken)
	}
	key, err := b.key(ctx)
	if err != nil {
		return nil, err
	}

	now := b.now()
	exp := now.Add(b.lifetime(req.Lifetime))

	claims := Claims{
		Scope:       req.Scope,
		PrincipalID: req.IntegrationID,
		Realm:       b.realm.ID(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        xid.New().String(),
			Issuer:    Issuer,
			Subject:   req.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &core.TokenArtifact{
		Value:       signedToken,
		TokenType:   TokenType,
		Scope:       req.Scope,
		Fingerprint: audit.CalculateFingerprint(audit.BearerFingerprintType, signedToken),
		IssuedAt:    claims.IssuedAt.Time,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

func (b *SymmetricKeyBroker) Verify(ctx context.Context, tokenString string) (*core.TokenClaims, error) {
	key, err := b.key(ctx)
	if err != nil {
		return nil, err
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(b.now),
	)

	var claims Claims
	_, err = parser.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w: %w", core.ErrExpiredToken, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%w: %w", core.ErrInvalidSignature, err)
		default:
			return nil, fmt.Errorf("%w: %w", core.ErrInvalidToken, err)
		}
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", core.ErrInvalidToken)
	}
	if claims.Realm != b.realm.ID() {
		return nil, fmt.Errorf("%w: token was issued for realm '%s'", core.ErrInvalidToken, claims.Realm)
	}

	result := &core.TokenClaims{
		TokenID:       claims.ID,
		Subject:       claims.Subject,
		Scope:         claims.Scope,
		IntegrationID: claims.PrincipalID,
		Realm:         core.RealmContext(claims.Realm),
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}
	return result, nil
}
