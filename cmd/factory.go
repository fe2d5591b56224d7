package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/realmbroker/internal/audit"
	"github.com/darmiel/realmbroker/internal/authenticator"
	"github.com/darmiel/realmbroker/internal/broker"
	"github.com/darmiel/realmbroker/internal/config"
	"github.com/darmiel/realmbroker/internal/core"
	"github.com/darmiel/realmbroker/internal/engine"
	"github.com/darmiel/realmbroker/internal/store"
)

// Components are the wired parts of a broker built from a config file.
type Components struct {
	Config        *config.Config
	Store         store.Factory
	Brokers       core.TokenBrokerFactory
	Auditor       core.Auditor
	Authenticator core.Authenticator
	ScopePolicy   *engine.Engine
}

// buildComponents wires the broker described by the config file.
// The caller must Close the result.
func buildComponents(ctx context.Context) (*Components, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log.Debug().Str("type", cfg.Store.Type).Msg("initializing store")
	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c := &Components{Config: cfg, Store: st}

	log.Debug().Str("type", cfg.TokenBroker.Type).Msg("initializing token broker")
	if c.Brokers, err = broker.BuildFactory(cfg.TokenBroker, st); err != nil {
		_ = c.Close()
		return nil, err
	}

	if c.Auditor, err = audit.Build(cfg.Audit, log.Logger); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("building auditor: %w", err)
	}

	log.Debug().Int("rules", len(cfg.ScopeRules)).Msg("compiling scope rules")
	if c.ScopePolicy, err = engine.New(cfg.ScopeRules); err != nil {
		_ = c.Close()
		return nil, err
	}

	log.Debug().Str("type", cfg.Authenticator.Type).Msg("initializing authenticator")
	if c.Authenticator, err = authenticator.Build(cfg.Authenticator, c.Brokers, st, c.Auditor); err != nil {
		_ = c.Close()
		return nil, err
	}
	if cfg.Authenticator.Type == config.AuthenticatorTestInline {
		log.Warn().Msg("inline test credentials are accepted, do not use this configuration in production")
	}
	return c, nil
}

func (c *Components) Close() error {
	var errs []error
	if c.Auditor != nil {
		errs = append(errs, c.Auditor.Close())
	}
	if c.Store != nil {
		errs = append(errs, c.Store.Close())
	}
	return errors.Join(errs...)
}

// principalStore returns the principal store of the selected realm.
func (c *Components) principalStore(ctx context.Context) (core.PrincipalStore, core.RealmContext, error) {
	realm := realmFor(c.Config)
	ps, err := store.PrincipalStoreFor(ctx, c.Store, realm)
	return ps, realm, err
}
