package authenticator

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/darmiel/realmbroker/internal/audit"
	"github.com/darmiel/realmbroker/internal/broker"
	"github.com/darmiel/realmbroker/internal/config"
	"github.com/darmiel/realmbroker/internal/core"
	"github.com/darmiel/realmbroker/internal/store"
)

const testRealm core.RealmContext = "realm-a"

type fixture struct {
	emf     *store.InMemoryEntityManagerFactory
	brokers *broker.SymmetricKeyFactory
	auditor *audit.InMemoryAuditor
	alice   *core.PrincipalSecrets
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	emf := store.NewInMemoryEntityManagerFactory()
	brokers, err := broker.NewSymmetricKeyFactory(broker.SymmetricKeyConfig{Secret: "s3cr3t"}, emf)
	if err != nil {
		t.Fatalf("NewSymmetricKeyFactory() error = %v", err)
	}
	ps, err := store.PrincipalStoreFor(ctx, emf, testRealm)
	if err != nil {
		t.Fatalf("PrincipalStoreFor() error = %v", err)
	}
	alice, _, err := ps.CreatePrincipal(ctx, "alice", "alice-secret")
	if err != nil {
		t.Fatalf("CreatePrincipal() error = %v", err)
	}
	return &fixture{
		emf:     emf,
		brokers: brokers,
		auditor: audit.NewInMemoryAuditor(100),
		alice:   alice,
	}
}

func (f *fixture) issue(t *testing.T, subject, scope string) string {
	t.Helper()
	b, err := f.brokers.Build(context.Background(), testRealm)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	artifact, err := b.Issue(context.Background(), core.TokenRequest{Subject: subject, Scope: scope})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	return artifact.Value
}

// failingEntityManagers simulates an unreachable metastore.
type failingEntityManagers struct{}

func (failingEntityManagers) GetOrCreateEntityManager(_ context.Context, realm core.RealmContext) (core.EntityManager, error) {
	return failingEntityManager{realm: realm}, nil
}

type failingEntityManager struct {
	realm core.RealmContext
}

func (f failingEntityManager) Realm() core.RealmContext  { return f.realm }
func (f failingEntityManager) MetaStore() core.MetaStore { return failingMetaStore{} }

type failingMetaStore struct{}

func (failingMetaStore) LoadPrincipalSecrets(context.Context, string) (*core.PrincipalSecrets, error) {
	return nil, errors.New("connection refused")
}

func TestInlineAuthenticator(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name        string
		credentials string
		want        *core.AuthenticatedPrincipal
		wantErr     error
	}{
		{
			name:        "Resolved",
			credentials: "principal:alice;role:admin",
			want: &core.AuthenticatedPrincipal{
				Subject:       "alice",
				Scope:         "admin",
				IntegrationID: f.alice.PrincipalID,
				Realm:         testRealm,
				Authenticator: InlineName,
			},
		},
		{
			name:        "Degraded",
			credentials: "principal:bob;role:reader",
			want: &core.AuthenticatedPrincipal{
				Subject:       "bob",
				Scope:         "reader",
				Realm:         testRealm,
				Authenticator: InlineName,
			},
		},
		{
			name:        "Whitespace",
			credentials: "  role : reader ;  principal : alice ",
			want: &core.AuthenticatedPrincipal{
				Subject:       "alice",
				Scope:         "reader",
				IntegrationID: f.alice.PrincipalID,
				Realm:         testRealm,
				Authenticator: InlineName,
			},
		},
		{
			name:        "No role",
			credentials: "principal:bob",
			want: &core.AuthenticatedPrincipal{
				Subject:       "bob",
				Realm:         testRealm,
				Authenticator: InlineName,
			},
		},
		{
			name:        "No principal",
			credentials: "role:admin",
			wantErr:     core.ErrNoPrincipal,
		},
		{
			name:        "Empty principal",
			credentials: "principal:;role:admin",
			wantErr:     core.ErrNoPrincipal,
		},
		{
			name:        "Opaque",
			credentials: "opaque-token-xyz",
			wantErr:     core.ErrNoPrincipal,
		},
		{
			name:        "Empty",
			credentials: "",
			wantErr:     core.ErrNoPrincipal,
		},
	}

	a := NewInlineAuthenticator(f.emf, f.auditor)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Authenticate(context.Background(), testRealm, tt.credentials)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Authenticate() error = %v, want %v", err, tt.wantErr)
				}
				if got != nil {
					t.Errorf("Authenticate() = %+v, want nil", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Authenticate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestInlineAuthenticator_DegradedIsAudited(t *testing.T) {
	f := newFixture(t)
	a := NewInlineAuthenticator(f.emf, f.auditor)

	ctx := core.WithCorrelationID(context.Background(), "req-1")
	if _, err := a.Authenticate(ctx, testRealm, "principal:bob;role:reader"); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if _, err := a.Authenticate(ctx, testRealm, "principal:alice;role:reader"); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	entries, err := f.auditor.GetRecent(0)
	if err != nil {
		t.Fatalf("GetRecent() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d audit entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Action != core.ActionAuthSecretsMissing || e.Principal != "bob" || e.Realm != testRealm || e.ID != "req-1" {
		t.Errorf("unexpected audit entry %+v", e)
	}
}

func TestInlineAuthenticator_RealmIsolation(t *testing.T) {
	f := newFixture(t)
	a := NewInlineAuthenticator(f.emf, nil)

	got, err := a.Authenticate(context.Background(), "realm-b", "principal:alice;role:admin")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got.HasIntegrationID() {
		t.Errorf("alice of realm-a resolved in realm-b: %+v", got)
	}
}

func TestInlineAuthenticator_InfrastructureError(t *testing.T) {
	a := NewInlineAuthenticator(failingEntityManagers{}, nil)

	got, err := a.Authenticate(context.Background(), testRealm, "principal:alice;role:admin")
	if !errors.Is(err, core.ErrInfrastructure) {
		t.Errorf("Authenticate() error = %v, want ErrInfrastructure", err)
	}
	if errors.Is(err, core.ErrPrincipalSecretsNotFound) {
		t.Errorf("infrastructure error reported as not found: %v", err)
	}
	if got != nil {
		t.Errorf("Authenticate() = %+v, want nil", got)
	}
}

func TestBearerAuthenticator(t *testing.T) {
	f := newFixture(t)
	a := NewBearerAuthenticator(f.brokers)

	tests := []struct {
		name        string
		credentials string
		want        *core.AuthenticatedPrincipal
		wantErr     error
	}{
		{
			name:        "Valid token",
			credentials: f.issue(t, "alice", "admin"),
			want: &core.AuthenticatedPrincipal{
				Subject:       "alice",
				Scope:         "admin",
				IntegrationID: f.alice.PrincipalID,
				Realm:         testRealm,
				Authenticator: BearerName,
			},
		},
		{
			name:        "Unknown principal",
			credentials: f.issue(t, "bob", "reader"),
			wantErr:     core.ErrUnknownPrincipal,
		},
		{
			name:        "Garbage",
			credentials: "not-a-jwt",
			wantErr:     core.ErrInvalidToken,
		},
		{
			name:        "Structured",
			credentials: "principal:alice;role:admin",
			wantErr:     core.ErrNoPrincipal,
		},
		{
			name:        "Empty",
			credentials: "  ",
			wantErr:     core.ErrNoPrincipal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Authenticate(context.Background(), testRealm, tt.credentials)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Authenticate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Authenticate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestChain(t *testing.T) {
	f := newFixture(t)
	chain := NewChain(NewInlineAuthenticator(f.emf, nil), NewBearerAuthenticator(f.brokers))

	tests := []struct {
		name              string
		credentials       string
		wantAuthenticator string
		wantErr           error
	}{
		{name: "Inline", credentials: "principal:bob;role:reader", wantAuthenticator: InlineName},
		{name: "Opaque falls to bearer", credentials: f.issue(t, "alice", "admin"), wantAuthenticator: BearerName},
		{name: "Bearer failure is terminal", credentials: "not-a-jwt", wantErr: core.ErrInvalidToken},
		{name: "Nobody recognizes it", credentials: "role:admin", wantErr: core.ErrNoPrincipal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := chain.Authenticate(context.Background(), testRealm, tt.credentials)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Authenticate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if got.Authenticator != tt.wantAuthenticator {
				t.Errorf("Authenticator = %q, want %q", got.Authenticator, tt.wantAuthenticator)
			}
		})
	}

	if got := chain.Name(); got != "chain(inline,bearer)" {
		t.Errorf("Name() = %q", got)
	}
}

func TestChain_InfrastructureErrorStops(t *testing.T) {
	f := newFixture(t)
	chain := NewChain(NewInlineAuthenticator(failingEntityManagers{}, nil), NewBearerAuthenticator(f.brokers))

	_, err := chain.Authenticate(context.Background(), testRealm, "principal:alice;role:admin")
	if !errors.Is(err, core.ErrInfrastructure) {
		t.Errorf("Authenticate() error = %v, want ErrInfrastructure", err)
	}
}

func TestBuild(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name          string
		typ           string
		acceptsInline bool
		wantErr       bool
	}{
		{name: "Default", typ: config.AuthenticatorDefault},
		{name: "Test inline", typ: config.AuthenticatorTestInline, acceptsInline: true},
		{name: "Unknown", typ: "ldap", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Build(config.AuthenticatorConfig{Type: tt.typ}, f.brokers, f.emf, f.auditor)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Build() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			_, err = a.Authenticate(context.Background(), testRealm, "principal:alice;role:admin")
			if (err == nil) != tt.acceptsInline {
				t.Errorf("inline credentials accepted = %v, want %v (err = %v)", err == nil, tt.acceptsInline, err)
			}
			if _, err := a.Authenticate(context.Background(), testRealm, f.issue(t, "alice", "admin")); err != nil {
				t.Errorf("bearer token rejected: %v", err)
			}
		})
	}
}

func TestWithAudit(t *testing.T) {
	f := newFixture(t)
	auditor := audit.NewInMemoryAuditor(10)
	a := WithAudit(NewBearerAuthenticator(f.brokers), auditor)

	_, _ = a.Authenticate(context.Background(), testRealm, f.issue(t, "alice", "admin"))
	_, _ = a.Authenticate(context.Background(), testRealm, "not-a-jwt")

	entries, err := auditor.GetRecent(0)
	if err != nil {
		t.Fatalf("GetRecent() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if e := entries[0]; e.Action != core.ActionAuthSuccess || !e.Granted || e.Principal != "alice" {
		t.Errorf("unexpected success entry %+v", e)
	}
	if e := entries[1]; e.Action != core.ActionAuthRejected || e.Granted || e.Error == "" {
		t.Errorf("unexpected rejection entry %+v", e)
	}
}
