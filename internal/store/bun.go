package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/darmiel/realmbroker/internal/core"
)

var (
	_ core.PrincipalStore       = (*BunMetaStore)(nil)
	_ core.EntityManagerFactory = (*BunEntityManagerFactory)(nil)
)

type principalSecretsRecord struct {
	bun.BaseModel `bun:"table:principal_secrets"`

	ID                  int64     `bun:",pk,autoincrement"`
	Realm               string    `bun:",notnull,unique:realm_principal"`
	PrincipalName       string    `bun:",notnull,unique:realm_principal"`
	PrincipalID         string    `bun:",notnull,unique"`
	MainSecretHash      string    `bun:",notnull"`
	SecondarySecretHash string    `bun:",nullzero"`
	CreatedAt           time.Time `bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt           time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

func (r principalSecretsRecord) toSecrets() *core.PrincipalSecrets {
	return &core.PrincipalSecrets{
		PrincipalName:       r.PrincipalName,
		PrincipalID:         r.PrincipalID,
		MainSecretHash:      r.MainSecretHash,
		SecondarySecretHash: r.SecondarySecretHash,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

// OpenSQLite opens a SQLite database through bun.
func OpenSQLite(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// Migrate creates the tables used by the bun store.
func Migrate(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*principalSecretsRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("creating principal_secrets table: %w", err)
	}
	return nil
}

// BunMetaStore is the metastore of one realm backed by a bun database.
// All realms share one table and are separated by the realm column.
type BunMetaStore struct {
	db    *bun.DB
	realm core.RealmContext
}

func NewBunMetaStore(db *bun.DB, realm core.RealmContext) *BunMetaStore {
	return &BunMetaStore{db: db, realm: realm}
}

func (s *BunMetaStore) find(ctx context.Context, db bun.IDB, principalName string) (*principalSecretsRecord, error) {
	var rec principalSecretsRecord
	err := db.NewSelect().
		Model(&rec).
		Where("realm = ? AND principal_name = ?", s.realm.ID(), principalName).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: '%s'", core.ErrPrincipalSecretsNotFound, principalName)
		}
		return nil, core.Infrastructure("loading principal secrets", err)
	}
	return &rec, nil
}

func (s *BunMetaStore) LoadPrincipalSecrets(ctx context.Context, principalName string) (*core.PrincipalSecrets, error) {
	rec, err := s.find(ctx, s.db, principalName)
	if err != nil {
		return nil, err
	}
	return rec.toSecrets(), nil
}

func (s *BunMetaStore) CreatePrincipal(ctx context.Context, principalName, clientSecret string) (*core.PrincipalSecrets, string, error) {
	plain, err := newClientSecret(clientSecret)
	if err != nil {
		return nil, "", err
	}
	hash, err := HashClientSecret(plain)
	if err != nil {
		return nil, "", err
	}

	exists, err := s.db.NewSelect().
		Model((*principalSecretsRecord)(nil)).
		Where("realm = ? AND principal_name = ?", s.realm.ID(), principalName).
		Exists(ctx)
	if err != nil {
		return nil, "", core.Infrastructure("checking principal", err)
	}
	if exists {
		return nil, "", fmt.Errorf("%w: '%s'", core.ErrPrincipalExists, principalName)
	}

	now := time.Now().UTC()
	rec := &principalSecretsRecord{
		Realm:          s.realm.ID(),
		PrincipalName:  principalName,
		PrincipalID:    uuid.NewString(),
		MainSecretHash: hash,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.insert(ctx, rec); err != nil {
		return nil, "", err
	}
	return rec.toSecrets(), plain, nil
}

// insert stores rec. A concurrent insert of the same principal loses on the
// unique index and is reported as ErrPrincipalExists.
func (s *BunMetaStore) insert(ctx context.Context, rec *principalSecretsRecord) error {
	_, err := s.db.NewInsert().Model(rec).Exec(ctx)
	if err == nil {
		return nil
	}
	exists, existsErr := s.db.NewSelect().
		Model((*principalSecretsRecord)(nil)).
		Where("realm = ? AND principal_name = ?", rec.Realm, rec.PrincipalName).
		Exists(ctx)
	if existsErr == nil && exists {
		return fmt.Errorf("%w: '%s'", core.ErrPrincipalExists, rec.PrincipalName)
	}
	return core.Infrastructure("inserting principal", err)
}

func (s *BunMetaStore) RotatePrincipalSecrets(ctx context.Context, principalName string) (*core.PrincipalSecrets, string, error) {
	plain, err := newClientSecret("")
	if err != nil {
		return nil, "", err
	}
	hash, err := HashClientSecret(plain)
	if err != nil {
		return nil, "", err
	}

	var rotated *principalSecretsRecord
	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		rec, err := s.find(ctx, tx, principalName)
		if err != nil {
			return err
		}
		rec.SecondarySecretHash = rec.MainSecretHash
		rec.MainSecretHash = hash
		rec.UpdatedAt = time.Now().UTC()
		_, err = tx.NewUpdate().
			Model(rec).
			Column("main_secret_hash", "secondary_secret_hash", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return core.Infrastructure("rotating principal secrets", err)
		}
		rotated = rec
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return rotated.toSecrets(), plain, nil
}

func (s *BunMetaStore) DeletePrincipal(ctx context.Context, principalName string) error {
	res, err := s.db.NewDelete().
		Model((*principalSecretsRecord)(nil)).
		Where("realm = ? AND principal_name = ?", s.realm.ID(), principalName).
		Exec(ctx)
	if err != nil {
		return core.Infrastructure("deleting principal", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: '%s'", core.ErrPrincipalSecretsNotFound, principalName)
	}
	return nil
}

func (s *BunMetaStore) ListPrincipals(ctx context.Context) ([]core.PrincipalSecrets, error) {
	var recs []principalSecretsRecord
	err := s.db.NewSelect().
		Model(&recs).
		Where("realm = ?", s.realm.ID()).
		OrderExpr("principal_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, core.Infrastructure("listing principals", err)
	}
	result := make([]core.PrincipalSecrets, 0, len(recs))
	for _, r := range recs {
		result = append(result, *r.toSecrets())
	}
	return result, nil
}

// BunEntityManagerFactory hands out one BunMetaStore handle per realm.
type BunEntityManagerFactory struct {
	db *bun.DB

	mu       sync.Mutex
	managers map[core.RealmContext]*entityManager
}

// NewBunEntityManagerFactory migrates the database and returns the factory.
func NewBunEntityManagerFactory(ctx context.Context, db *bun.DB) (*BunEntityManagerFactory, error) {
	if err := Migrate(ctx, db); err != nil {
		return nil, err
	}
	return &BunEntityManagerFactory{
		db:       db,
		managers: make(map[core.RealmContext]*entityManager),
	}, nil
}

func (f *BunEntityManagerFactory) GetOrCreateEntityManager(_ context.Context, realm core.RealmContext) (core.EntityManager, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if em, ok := f.managers[realm]; ok {
		return em, nil
	}
	em := &entityManager{realm: realm, metaStore: NewBunMetaStore(f.db, realm)}
	f.managers[realm] = em
	return em, nil
}

func (f *BunEntityManagerFactory) Close() error {
	return f.db.Close()
}
