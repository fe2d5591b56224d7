package audit

import (
	"github.com/rs/zerolog"

	"github.com/darmiel/realmbroker/internal/core"
)

var _ core.Auditor = (*LogAuditor)(nil)

// LogAuditor forwards audit entries to a zerolog logger.
// Denied or degraded events are logged at warn level, the rest at info.
type LogAuditor struct {
	logger zerolog.Logger
}

func NewLogAuditor(logger zerolog.Logger) *LogAuditor {
	return &LogAuditor{
		logger: logger.With().Str("component", "audit").Logger(),
	}
}

func (l *LogAuditor) Log(entry core.AuditEntry) error {
	ev := l.logger.Info()
	if !entry.Granted || entry.Action == core.ActionAuthSecretsMissing {
		ev = l.logger.Warn()
	}
	ev = ev.
		Str("correlation_id", entry.ID).
		Str("realm", entry.Realm.ID()).
		Str("principal", entry.Principal).
		Bool("granted", entry.Granted)
	if entry.Scope != "" {
		ev = ev.Str("scope", entry.Scope)
	}
	if entry.Authenticator != "" {
		ev = ev.Str("authenticator", entry.Authenticator)
	}
	if entry.TokenFingerprint != "" {
		ev = ev.Str("token_fingerprint", entry.TokenFingerprint)
	}
	if entry.Error != "" {
		ev = ev.Str("error", entry.Error)
	}
	if len(entry.Metadata) > 0 {
		ev = ev.Fields(entry.Metadata)
	}
	ev.Msg(entry.Action)
	return nil
}

func (l *LogAuditor) Close() error {
	return nil
}
