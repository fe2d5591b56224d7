package client

import (
	"context"

	"github.com/darmiel/realmbroker/internal/api"
	"github.com/darmiel/realmbroker/internal/core"
)

type ListAuditsOpts struct {
	Limit uint

	CorrelationID string
	Principal     string
	Action        string
	Fingerprint   string
}

// ListAudits retrieves the latest audit entries of the client's realm.
// It requires the admin scope.
func (c *Client) ListAudits(ctx context.Context, opts ListAuditsOpts) ([]core.AuditEntry, string, error) {
	ub := c.url().setPath(api.RecentAuditsRoute)
	if opts.Limit > 0 {
		ub = ub.addQueryParam("limit", opts.Limit)
	}
	if opts.CorrelationID != "" {
		ub = ub.addQueryParam("correlation_id", opts.CorrelationID)
	}
	if opts.Principal != "" {
		ub = ub.addQueryParam("principal", opts.Principal)
	}
	if opts.Action != "" {
		ub = ub.addQueryParam("action", opts.Action)
	}
	if opts.Fingerprint != "" {
		ub = ub.addQueryParam("fingerprint", opts.Fingerprint)
	}
	var resp []core.AuditEntry
	correlation, err := c.get(ctx, ub.build(), &resp)
	return resp, correlation, err
}
