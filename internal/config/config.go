package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/darmiel/realmbroker/internal/core"
)

const (
	DefaultAddr              = ":8181"
	DefaultRealmHeader       = "Realm"
	DefaultTokenBrokerType   = "symmetric-key"
	DefaultStoreType         = "memory"
	DefaultAuthenticatorType = AuthenticatorDefault

	// AuthenticatorDefault accepts broker-issued bearer tokens only.
	AuthenticatorDefault = "default"
	// AuthenticatorTestInline also accepts inline "principal:<name>;role:<role>"
	// credentials, including principals without a secrets record.
	// Never enable this outside of test and bootstrap setups.
	AuthenticatorTestInline = "test-inline"
)

type Config struct {
	Server        ServerConfig         `yaml:"server"`
	TokenBroker   TokenBrokerConfig    `yaml:"token_broker"`
	Store         StoreConfig          `yaml:"store"`
	Authenticator AuthenticatorConfig  `yaml:"authenticator"`
	Audit         AuditConfig          `yaml:"audit"`
	Tasks         TasksConfig          `yaml:"tasks"`
	ScopeRules    []ScopeRule          `yaml:"scope_rules"`
	Bootstrap     []BootstrapPrincipal `yaml:"bootstrap"`
}

// ServerConfig holds configuration for the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`

	// RealmHeader is the request header carrying the realm.
	RealmHeader string `yaml:"realm_header"`

	// DefaultRealm is used when a request carries no realm header.
	DefaultRealm string `yaml:"default_realm"`

	// Realms restricts the accepted realms. Empty accepts any realm.
	Realms []string `yaml:"realms"`
}

// AllowsRealm reports whether the realm may be served.
func (s ServerConfig) AllowsRealm(realm core.RealmContext) bool {
	if len(s.Realms) == 0 {
		return true
	}
	for _, r := range s.Realms {
		if r == realm.ID() {
			return true
		}
	}
	return false
}

// TokenBrokerConfig selects and configures the token broker factory.
type TokenBrokerConfig struct {
	Type   string         `yaml:"type"`    // e.g., "symmetric-key"
	Config map[string]any `yaml:",inline"` // Capture remaining fields
}

// StoreConfig selects the metastore backing principals and their secrets.
type StoreConfig struct {
	Type   string         `yaml:"type"`    // e.g., "memory", "sqlite"
	Config map[string]any `yaml:",inline"` // Capture remaining fields
}

// AuthenticatorConfig selects how bearer credentials are authenticated.
type AuthenticatorConfig struct {
	Type string `yaml:"type"` // "default" or "test-inline"
}

// AuditConfig holds configuration for auditing.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Type    string `yaml:"type"` // e.g., "file", "memory", "log"
	Path    string `yaml:"path"`

	// MaxEntries bounds the memory auditor.
	MaxEntries int `yaml:"max_entries"`
}

// ScopeRule allows principals to request scopes at the token endpoint.
// If no rule is configured, every scope is granted.
type ScopeRule struct {
	Name string `yaml:"name"`

	// Realm and Principal restrict the rule. Empty matches any.
	Realm     string `yaml:"realm"`
	Principal string `yaml:"principal"`

	// Scopes are the allowed scope patterns (path.Match syntax, e.g. "PRINCIPAL_ROLE:*").
	Scopes []string `yaml:"scopes"`

	// Expr is an optional boolean expression over realm, principal and scope.
	Expr string `yaml:"expr"`
}

// TasksConfig holds the intervals of background maintenance tasks.
type TasksConfig struct {
	// SecretCheckIntervalInSeconds schedules the signing secret check.
	// Zero registers the check without a schedule; it can still be triggered.
	SecretCheckIntervalInSeconds int `yaml:"secret_check_interval_in_seconds"`
}

// BootstrapPrincipal is created on startup if it does not exist yet.
type BootstrapPrincipal struct {
	Realm        string `yaml:"realm"`
	Name         string `yaml:"name"`
	ClientSecret string `yaml:"client_secret"`
}

// Load reads and parses the configuration file at the given path.
// It returns a Config struct or an error if loading/parsing/validation fails.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates a YAML configuration document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}
	return &cfg, nil
}

// ApplyDefaults fills in every option left empty.
func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.RealmHeader == "" {
		c.Server.RealmHeader = DefaultRealmHeader
	}
	if c.Server.DefaultRealm == "" {
		c.Server.DefaultRealm = core.DefaultRealm.ID()
	}
	if c.TokenBroker.Type == "" {
		c.TokenBroker.Type = DefaultTokenBrokerType
	}
	if c.Store.Type == "" {
		c.Store.Type = DefaultStoreType
	}
	if c.Authenticator.Type == "" {
		c.Authenticator.Type = DefaultAuthenticatorType
	}
	if c.Audit.Type == "" {
		c.Audit.Type = "log"
	}
	for i := range c.Bootstrap {
		if c.Bootstrap[i].Realm == "" {
			c.Bootstrap[i].Realm = c.Server.DefaultRealm
		}
	}
}

func (c *Config) Validate() error {
	if !c.Server.AllowsRealm(core.RealmContext(c.Server.DefaultRealm)) {
		return fmt.Errorf("default realm '%s' is not in the list of accepted realms", c.Server.DefaultRealm)
	}

	switch c.Authenticator.Type {
	case AuthenticatorDefault, AuthenticatorTestInline:
	default:
		return fmt.Errorf("unknown authenticator type '%s'", c.Authenticator.Type)
	}

	if c.Audit.Enabled {
		switch c.Audit.Type {
		case "file":
			if c.Audit.Path == "" {
				return fmt.Errorf("audit type 'file' requires a path")
			}
		case "memory", "log":
		default:
			return fmt.Errorf("unknown audit type '%s'", c.Audit.Type)
		}
	}

	if c.Tasks.SecretCheckIntervalInSeconds < 0 {
		return fmt.Errorf("tasks.secret_check_interval_in_seconds must not be negative")
	}

	ruleNames := make(map[string]struct{})
	for idx, r := range c.ScopeRules {
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("scope rule at index %d has empty name", idx)
		}
		if _, ok := ruleNames[r.Name]; ok {
			return fmt.Errorf("scope rule '%s' is defined twice", r.Name)
		}
		ruleNames[r.Name] = struct{}{}
		if len(r.Scopes) == 0 {
			return fmt.Errorf("scope rule '%s' allows no scopes", r.Name)
		}
	}

	seen := make(map[string]struct{})
	for idx, b := range c.Bootstrap {
		if strings.TrimSpace(b.Name) == "" {
			return fmt.Errorf("bootstrap principal at index %d has empty name", idx)
		}
		if !c.Server.AllowsRealm(core.RealmContext(b.Realm)) {
			return fmt.Errorf("bootstrap principal '%s' uses realm '%s' which is not accepted", b.Name, b.Realm)
		}
		key := b.Realm + "/" + b.Name
		if _, ok := seen[key]; ok {
			return fmt.Errorf("bootstrap principal '%s' is defined twice in realm '%s'", b.Name, b.Realm)
		}
		seen[key] = struct{}{}
	}

	return nil
}
