package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/uptrace/bun"

	"github.com/darmiel/realmbroker/internal/config"
	"github.com/darmiel/realmbroker/internal/core"
)

func setupBunDB(t *testing.T) *bun.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := OpenSQLite("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func factories(t *testing.T) map[string]core.EntityManagerFactory {
	t.Helper()
	bunFactory, err := NewBunEntityManagerFactory(context.Background(), setupBunDB(t))
	if err != nil {
		t.Fatalf("NewBunEntityManagerFactory() error = %v", err)
	}
	return map[string]core.EntityManagerFactory{
		"memory": NewInMemoryEntityManagerFactory(),
		"bun":    bunFactory,
	}
}

func TestPrincipalStore_Lifecycle(t *testing.T) {
	for name, factory := range factories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			ps, err := PrincipalStoreFor(ctx, factory, "acme")
			if err != nil {
				t.Fatalf("PrincipalStoreFor() error = %v", err)
			}

			if _, err := ps.LoadPrincipalSecrets(ctx, "alice"); !errors.Is(err, core.ErrPrincipalSecretsNotFound) {
				t.Fatalf("LoadPrincipalSecrets() error = %v, want ErrPrincipalSecretsNotFound", err)
			}

			created, plain, err := ps.CreatePrincipal(ctx, "alice", "")
			if err != nil {
				t.Fatalf("CreatePrincipal() error = %v", err)
			}
			if plain == "" || created.PrincipalID == "" {
				t.Fatalf("CreatePrincipal() returned empty secret or id: %+v", created)
			}
			if _, _, err := ps.CreatePrincipal(ctx, "alice", ""); !errors.Is(err, core.ErrPrincipalExists) {
				t.Fatalf("second CreatePrincipal() error = %v, want ErrPrincipalExists", err)
			}

			loaded, err := ps.LoadPrincipalSecrets(ctx, "alice")
			if err != nil {
				t.Fatalf("LoadPrincipalSecrets() error = %v", err)
			}
			if loaded.PrincipalID != created.PrincipalID {
				t.Errorf("PrincipalID = %q, want %q", loaded.PrincipalID, created.PrincipalID)
			}
			if !MatchesClientSecret(loaded, plain) {
				t.Errorf("stored hash does not match the returned secret")
			}

			_, rotated, err := ps.RotatePrincipalSecrets(ctx, "alice")
			if err != nil {
				t.Fatalf("RotatePrincipalSecrets() error = %v", err)
			}
			loaded, err = ps.LoadPrincipalSecrets(ctx, "alice")
			if err != nil {
				t.Fatalf("LoadPrincipalSecrets() error = %v", err)
			}
			if !MatchesClientSecret(loaded, rotated) || !MatchesClientSecret(loaded, plain) {
				t.Errorf("both the rotated and the previous secret should match")
			}
			if MatchesClientSecret(loaded, "wrong") {
				t.Errorf("wrong secret should not match")
			}

			list, err := ps.ListPrincipals(ctx)
			if err != nil {
				t.Fatalf("ListPrincipals() error = %v", err)
			}
			if len(list) != 1 || list[0].PrincipalName != "alice" {
				t.Errorf("ListPrincipals() = %+v, want [alice]", list)
			}

			if err := ps.DeletePrincipal(ctx, "alice"); err != nil {
				t.Fatalf("DeletePrincipal() error = %v", err)
			}
			if err := ps.DeletePrincipal(ctx, "alice"); !errors.Is(err, core.ErrPrincipalSecretsNotFound) {
				t.Errorf("second DeletePrincipal() error = %v, want ErrPrincipalSecretsNotFound", err)
			}
		})
	}
}

func TestEntityManagerFactory_RealmIsolation(t *testing.T) {
	for name, factory := range factories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first, err := factory.GetOrCreateEntityManager(ctx, "a")
			if err != nil {
				t.Fatalf("GetOrCreateEntityManager() error = %v", err)
			}
			again, _ := factory.GetOrCreateEntityManager(ctx, "a")
			if first != again {
				t.Errorf("handle for the same realm should be reused")
			}
			if first.Realm() != "a" {
				t.Errorf("Realm() = %q, want a", first.Realm())
			}

			psA, _ := PrincipalStoreFor(ctx, factory, "a")
			psB, _ := PrincipalStoreFor(ctx, factory, "b")
			if _, _, err := psA.CreatePrincipal(ctx, "root", "pw"); err != nil {
				t.Fatalf("CreatePrincipal() error = %v", err)
			}
			if _, err := psB.LoadPrincipalSecrets(ctx, "root"); !errors.Is(err, core.ErrPrincipalSecretsNotFound) {
				t.Errorf("principal leaked into realm b: %v", err)
			}
			if _, _, err := psB.CreatePrincipal(ctx, "root", "pw"); err != nil {
				t.Errorf("same name in another realm should be allowed: %v", err)
			}
		})
	}
}

func TestBunMetaStore_InfrastructureError(t *testing.T) {
	db := setupBunDB(t)
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	ms := NewBunMetaStore(db, "acme")
	_ = db.Close()

	_, err := ms.LoadPrincipalSecrets(context.Background(), "alice")
	if !errors.Is(err, core.ErrInfrastructure) {
		t.Fatalf("LoadPrincipalSecrets() error = %v, want ErrInfrastructure", err)
	}
	if errors.Is(err, core.ErrPrincipalSecretsNotFound) {
		t.Errorf("infrastructure failure must not look like not-found")
	}
}

func TestBunMetaStore_DuplicateInsert(t *testing.T) {
	ctx := context.Background()
	db := setupBunDB(t)
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	ms := NewBunMetaStore(db, "acme")
	if _, _, err := ms.CreatePrincipal(ctx, "alice", "pw"); err != nil {
		t.Fatalf("CreatePrincipal() error = %v", err)
	}

	// same principal arriving after the existence check of another writer
	err := ms.insert(ctx, &principalSecretsRecord{
		Realm:          "acme",
		PrincipalName:  "alice",
		PrincipalID:    "another-id",
		MainSecretHash: "hash",
	})
	if !errors.Is(err, core.ErrPrincipalExists) {
		t.Fatalf("insert() error = %v, want ErrPrincipalExists", err)
	}
	if errors.Is(err, core.ErrInfrastructure) {
		t.Errorf("duplicate insert must not look like an infrastructure failure")
	}

	_ = db.Close()
	err = ms.insert(ctx, &principalSecretsRecord{Realm: "acme", PrincipalName: "bob", PrincipalID: "id-b", MainSecretHash: "hash"})
	if !errors.Is(err, core.ErrInfrastructure) {
		t.Errorf("insert() on closed db error = %v, want ErrInfrastructure", err)
	}
}

func TestInMemoryMetaStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewInMemoryMetaStore().LoadPrincipalSecrets(ctx, "alice")
	if !errors.Is(err, core.ErrInfrastructure) {
		t.Errorf("LoadPrincipalSecrets() error = %v, want ErrInfrastructure", err)
	}
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()
	factory := NewInMemoryEntityManagerFactory()
	principals := []config.BootstrapPrincipal{
		{Realm: "acme", Name: "root", ClientSecret: "pw"},
		{Realm: "other", Name: "svc"},
	}

	created, err := Bootstrap(ctx, factory, principals)
	if err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	if len(created) != 2 {
		t.Errorf("Bootstrap() created %v, want 2 principals", created)
	}

	created, err = Bootstrap(ctx, factory, principals)
	if err != nil {
		t.Fatalf("second Bootstrap() error = %v", err)
	}
	if len(created) != 0 {
		t.Errorf("second Bootstrap() created %v, want none", created)
	}

	ps, _ := PrincipalStoreFor(ctx, factory, "acme")
	secrets, err := ps.LoadPrincipalSecrets(ctx, "root")
	if err != nil {
		t.Fatalf("LoadPrincipalSecrets() error = %v", err)
	}
	if !MatchesClientSecret(secrets, "pw") {
		t.Errorf("bootstrapped secret should match the configured one")
	}
}

func TestBuild(t *testing.T) {
	ctx := context.Background()

	f, err := Build(ctx, config.StoreConfig{Type: "memory"})
	if err != nil {
		t.Fatalf("Build(memory) error = %v", err)
	}
	_ = f.Close()

	f, err = Build(ctx, config.StoreConfig{
		Type:   "sqlite",
		Config: map[string]any{"dsn": "file:build_test?mode=memory&cache=shared"},
	})
	if err != nil {
		t.Fatalf("Build(sqlite) error = %v", err)
	}
	if _, err := PrincipalStoreFor(ctx, f, "acme"); err != nil {
		t.Errorf("PrincipalStoreFor() error = %v", err)
	}
	_ = f.Close()

	if _, err := Build(ctx, config.StoreConfig{Type: "cassandra"}); err == nil {
		t.Errorf("Build() expected error for unknown type")
	}
}
