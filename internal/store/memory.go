package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/darmiel/realmbroker/internal/core"
)

var (
	_ core.PrincipalStore       = (*InMemoryMetaStore)(nil)
	_ core.EntityManagerFactory = (*InMemoryEntityManagerFactory)(nil)
)

// InMemoryMetaStore keeps the principals of one realm in memory.
type InMemoryMetaStore struct {
	mu         sync.RWMutex
	principals map[string]core.PrincipalSecrets
}

func NewInMemoryMetaStore() *InMemoryMetaStore {
	return &InMemoryMetaStore{
		principals: make(map[string]core.PrincipalSecrets),
	}
}

func (s *InMemoryMetaStore) LoadPrincipalSecrets(ctx context.Context, principalName string) (*core.PrincipalSecrets, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.Infrastructure("loading principal secrets", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	secrets, ok := s.principals[principalName]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", core.ErrPrincipalSecretsNotFound, principalName)
	}
	return &secrets, nil
}

func (s *InMemoryMetaStore) CreatePrincipal(_ context.Context, principalName, clientSecret string) (*core.PrincipalSecrets, string, error) {
	plain, err := newClientSecret(clientSecret)
	if err != nil {
		return nil, "", err
	}
	hash, err := HashClientSecret(plain)
	if err != nil {
		return nil, "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.principals[principalName]; ok {
		return nil, "", fmt.Errorf("%w: '%s'", core.ErrPrincipalExists, principalName)
	}

	now := time.Now()
	secrets := core.PrincipalSecrets{
		PrincipalName:  principalName,
		PrincipalID:    uuid.NewString(),
		MainSecretHash: hash,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.principals[principalName] = secrets
	return &secrets, plain, nil
}

func (s *InMemoryMetaStore) RotatePrincipalSecrets(_ context.Context, principalName string) (*core.PrincipalSecrets, string, error) {
	plain, err := newClientSecret("")
	if err != nil {
		return nil, "", err
	}
	hash, err := HashClientSecret(plain)
	if err != nil {
		return nil, "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	secrets, ok := s.principals[principalName]
	if !ok {
		return nil, "", fmt.Errorf("%w: '%s'", core.ErrPrincipalSecretsNotFound, principalName)
	}
	secrets.SecondarySecretHash = secrets.MainSecretHash
	secrets.MainSecretHash = hash
	secrets.UpdatedAt = time.Now()
	s.principals[principalName] = secrets
	return &secrets, plain, nil
}

func (s *InMemoryMetaStore) DeletePrincipal(_ context.Context, principalName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.principals[principalName]; !ok {
		return fmt.Errorf("%w: '%s'", core.ErrPrincipalSecretsNotFound, principalName)
	}
	delete(s.principals, principalName)
	return nil
}

func (s *InMemoryMetaStore) ListPrincipals(_ context.Context) ([]core.PrincipalSecrets, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]core.PrincipalSecrets, 0, len(s.principals))
	for _, p := range s.principals {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].PrincipalName < result[j].PrincipalName
	})
	return result, nil
}

// InMemoryEntityManagerFactory hands out one in-memory metastore per realm.
type InMemoryEntityManagerFactory struct {
	mu       sync.Mutex
	managers map[core.RealmContext]*entityManager
}

func NewInMemoryEntityManagerFactory() *InMemoryEntityManagerFactory {
	return &InMemoryEntityManagerFactory{
		managers: make(map[core.RealmContext]*entityManager),
	}
}

func (f *InMemoryEntityManagerFactory) GetOrCreateEntityManager(_ context.Context, realm core.RealmContext) (core.EntityManager, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if em, ok := f.managers[realm]; ok {
		return em, nil
	}
	em := &entityManager{realm: realm, metaStore: NewInMemoryMetaStore()}
	f.managers[realm] = em
	return em, nil
}

func (f *InMemoryEntityManagerFactory) Close() error {
	return nil
}

// entityManager is the realm handle shared by the store implementations.
type entityManager struct {
	realm     core.RealmContext
	metaStore core.PrincipalStore
}

func (e *entityManager) Realm() core.RealmContext {
	return e.realm
}

func (e *entityManager) MetaStore() core.MetaStore {
	return e.metaStore
}
