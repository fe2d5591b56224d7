package core

import "time"

// Audit actions emitted by the broker.
const (
	ActionAuthSuccess        = "auth.success"
	ActionAuthRejected       = "auth.rejected"
	ActionAuthSecretsMissing = "auth.secrets_missing"
	ActionTokenIssue         = "token.issue"
	ActionTokenRefresh       = "token.refresh"
)

type AuditEntry struct {
	// ID is the unique request ID (X-Correlation-ID)
	ID string `json:"id"`

	// Time is the timestamp of the event
	Time time.Time `json:"time"`

	// Action describing what happened (e.g. "token.issue", "auth.success")
	Action string `json:"action"`

	// Realm the event happened in
	Realm RealmContext `json:"realm"`

	// Principal names who made the request. It may be a claimed, unverified name.
	Principal string `json:"principal,omitempty"`

	// Scope that was requested or granted
	Scope string `json:"scope,omitempty"`

	// Authenticator that handled the credentials
	Authenticator string `json:"authenticator,omitempty"`

	Granted bool   `json:"granted"`
	Error   string `json:"error,omitempty"`

	// TokenFingerprint identifies the issued token without exposing it
	TokenFingerprint string `json:"token_fingerprint,omitempty"`

	// Metadata contains additional details
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Auditor receives structured events. It is the observability hook of the
// broker; implementations decide where events end up.
type Auditor interface {
	Log(entry AuditEntry) error
	Close() error
}

// AuditReader is implemented by auditors that keep entries around.
type AuditReader interface {
	GetRecent(limit int) ([]AuditEntry, error)
	Find(filter func(entry AuditEntry) bool, limit int) ([]AuditEntry, error)
}
