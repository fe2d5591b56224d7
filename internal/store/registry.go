package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/darmiel/realmbroker/internal/config"
	"github.com/darmiel/realmbroker/internal/core"
)

// Factory is an EntityManagerFactory that owns resources.
type Factory interface {
	core.EntityManagerFactory
	Close() error
}

// SQLiteConfig holds the options of the "sqlite" store.
type SQLiteConfig struct {
	DSN string `mapstructure:"dsn"`
}

const DefaultSQLiteDSN = "file:realmbroker.db?cache=shared"

// Build creates the entity manager factory described by cfg.
func Build(ctx context.Context, cfg config.StoreConfig) (Factory, error) {
	switch cfg.Type {
	case "memory":
		return NewInMemoryEntityManagerFactory(), nil
	case "sqlite":
		var conf SQLiteConfig
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Metadata: nil,
			Result:   &conf,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create decoder for sqlite store: %w", err)
		}
		if err := decoder.Decode(cfg.Config); err != nil {
			return nil, fmt.Errorf("failed to decode config for sqlite store: %w", err)
		}
		if conf.DSN == "" {
			conf.DSN = DefaultSQLiteDSN
		}
		db, err := OpenSQLite(conf.DSN)
		if err != nil {
			return nil, err
		}
		factory, err := NewBunEntityManagerFactory(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return factory, nil
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}
}

// PrincipalStoreFor returns the principal store of a realm.
func PrincipalStoreFor(ctx context.Context, factory core.EntityManagerFactory, realm core.RealmContext) (core.PrincipalStore, error) {
	em, err := factory.GetOrCreateEntityManager(ctx, realm)
	if err != nil {
		return nil, fmt.Errorf("getting entity manager for realm '%s': %w", realm, err)
	}
	ps, ok := em.MetaStore().(core.PrincipalStore)
	if !ok {
		return nil, fmt.Errorf("metastore of realm '%s' does not support managing principals", realm)
	}
	return ps, nil
}

// Bootstrap creates the configured principals that do not exist yet.
// It returns the names of the principals it created.
func Bootstrap(ctx context.Context, factory core.EntityManagerFactory, principals []config.BootstrapPrincipal) ([]string, error) {
	var created []string
	for _, p := range principals {
		ps, err := PrincipalStoreFor(ctx, factory, core.RealmContext(p.Realm))
		if err != nil {
			return created, err
		}
		if _, _, err := ps.CreatePrincipal(ctx, p.Name, p.ClientSecret); err != nil {
			if errors.Is(err, core.ErrPrincipalExists) {
				continue
			}
			return created, fmt.Errorf("bootstrapping principal '%s' in realm '%s': %w", p.Name, p.Realm, err)
		}
		created = append(created, p.Realm+"/"+p.Name)
	}
	return created, nil
}
