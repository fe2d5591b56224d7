package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/darmiel/realmbroker/internal/config"
	"github.com/darmiel/realmbroker/internal/core"
	"github.com/darmiel/realmbroker/internal/secret"
)

const (
	SymmetricKeyType = "symmetric-key"

	DefaultMaxTokenGenerationInSeconds = 3600
)

var _ core.TokenBrokerFactory = (*SymmetricKeyFactory)(nil)

// SymmetricKeyConfig holds the options of the "symmetric-key" token broker.
// Exactly one of File and Secret should be set; Secret wins if both are.
type SymmetricKeyConfig struct {
	MaxTokenGenerationInSeconds int    `mapstructure:"max_token_generation_in_seconds"`
	File                        string `mapstructure:"file"`
	Secret                      string `mapstructure:"secret"`
}

// SymmetricKeyFactory builds SymmetricKeyBrokers bound to a realm.
type SymmetricKeyFactory struct {
	entityManagers core.EntityManagerFactory
	maxLifetime    time.Duration
	source         secret.Source
	now            func() time.Time
}

type FactoryOption func(f *SymmetricKeyFactory)

// WithClock replaces the time source of built brokers.
func WithClock(now func() time.Time) FactoryOption {
	return func(f *SymmetricKeyFactory) {
		f.now = now
	}
}

// NewSymmetricKeyFactory validates cfg and returns the factory.
// Misconfiguration is reported here, not on first use.
func NewSymmetricKeyFactory(
	cfg SymmetricKeyConfig,
	entityManagers core.EntityManagerFactory,
	opts ...FactoryOption,
) (*SymmetricKeyFactory, error) {
	if entityManagers == nil {
		return nil, fmt.Errorf("%w: no entity manager factory", core.ErrConfiguration)
	}
	src, err := secret.New(cfg.Secret, cfg.File)
	if err != nil {
		return nil, err
	}

	seconds := cfg.MaxTokenGenerationInSeconds
	switch {
	case seconds == 0:
		seconds = DefaultMaxTokenGenerationInSeconds
	case seconds < 0:
		return nil, fmt.Errorf("%w: max_token_generation_in_seconds must not be negative, got %d",
			core.ErrConfiguration, seconds)
	}

	f := &SymmetricKeyFactory{
		entityManagers: entityManagers,
		maxLifetime:    time.Duration(seconds) * time.Second,
		source:         src,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// NewFromConfig decodes the inline options of cfg into a SymmetricKeyConfig.
func NewFromConfig(
	cfg config.TokenBrokerConfig,
	entityManagers core.EntityManagerFactory,
	opts ...FactoryOption,
) (*SymmetricKeyFactory, error) {
	var conf SymmetricKeyConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           &conf,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder for %s token broker: %w", cfg.Type, err)
	}
	if err := decoder.Decode(cfg.Config); err != nil {
		return nil, fmt.Errorf("%w: failed to decode config for %s token broker: %w",
			core.ErrConfiguration, cfg.Type, err)
	}
	return NewSymmetricKeyFactory(conf, entityManagers, opts...)
}

// Build binds a broker to the realm's metastore.
// It is safe to call repeatedly; no secret is read.
func (f *SymmetricKeyFactory) Build(ctx context.Context, realm core.RealmContext) (core.TokenBroker, error) {
	em, err := f.entityManagers.GetOrCreateEntityManager(ctx, realm)
	if err != nil {
		return nil, fmt.Errorf("getting entity manager for realm '%s': %w", realm, err)
	}
	return NewSymmetricKeyBroker(realm, em.MetaStore(), f.maxLifetime, f.source, f.now), nil
}

// Source returns the secret source the factory was configured with.
func (f *SymmetricKeyFactory) Source() secret.Source {
	return f.source
}

// MaxLifetime is the upper bound of token lifetimes of built brokers.
func (f *SymmetricKeyFactory) MaxLifetime() time.Duration {
	return f.maxLifetime
}

// BuildFactory creates the token broker factory described by cfg.
func BuildFactory(
	cfg config.TokenBrokerConfig,
	entityManagers core.EntityManagerFactory,
	opts ...FactoryOption,
) (core.TokenBrokerFactory, error) {
	switch cfg.Type {
	case SymmetricKeyType, "":
		f, err := NewFromConfig(cfg, entityManagers, opts...)
		if err != nil {
			return nil, fmt.Errorf("building %s token broker: %w", SymmetricKeyType, err)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("%w: unknown token broker type %q", core.ErrConfiguration, cfg.Type)
	}
}
