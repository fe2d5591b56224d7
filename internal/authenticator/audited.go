package authenticator

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/realmbroker/internal/audit"
	"github.com/darmiel/realmbroker/internal/core"
)

var _ core.Authenticator = (*Audited)(nil)

// Audited records the outcome of every authentication attempt.
type Audited struct {
	next    core.Authenticator
	auditor core.Auditor
}

func WithAudit(next core.Authenticator, auditor core.Auditor) *Audited {
	if auditor == nil {
		auditor = audit.NewNoopAuditor()
	}
	return &Audited{next: next, auditor: auditor}
}

func (a *Audited) Name() string {
	return a.next.Name()
}

func (a *Audited) Authenticate(
	ctx context.Context,
	realm core.RealmContext,
	creds string,
) (principal *core.AuthenticatedPrincipal, err error) {
	entry := core.AuditEntry{
		ID:            core.CorrelationID(ctx),
		Time:          time.Now(),
		Action:        core.ActionAuthSuccess,
		Realm:         realm,
		Authenticator: a.next.Name(),
	}
	defer func() {
		if logErr := a.auditor.Log(entry); logErr != nil {
			log.Ctx(ctx).Error().Err(logErr).Msg("failed to write audit log entry for authentication")
		}
	}()

	principal, err = a.next.Authenticate(ctx, realm, creds)
	if err != nil {
		entry.Action = core.ActionAuthRejected
		entry.Error = err.Error()
		return nil, err
	}

	entry.Granted = true
	entry.Principal = principal.Subject
	entry.Scope = principal.Scope
	entry.Authenticator = principal.Authenticator
	if !principal.HasIntegrationID() {
		entry.Metadata = map[string]any{"integration_id": false}
	}
	return principal, nil
}
