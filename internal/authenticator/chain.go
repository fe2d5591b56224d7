package authenticator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/darmiel/realmbroker/internal/core"
)

var _ core.Authenticator = (*Chain)(nil)

// Chain tries its authenticators in order. An authenticator that does not
// recognize the credentials (ErrNoPrincipal) hands over to the next one; any
// other error ends the chain.
type Chain struct {
	authenticators []core.Authenticator
}

func NewChain(authenticators ...core.Authenticator) *Chain {
	return &Chain{authenticators: authenticators}
}

func (c *Chain) Name() string {
	names := make([]string, 0, len(c.authenticators))
	for _, a := range c.authenticators {
		names = append(names, a.Name())
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

func (c *Chain) Authenticate(
	ctx context.Context,
	realm core.RealmContext,
	creds string,
) (*core.AuthenticatedPrincipal, error) {
	var rejections []error
	for _, a := range c.authenticators {
		principal, err := a.Authenticate(ctx, realm, creds)
		if err == nil {
			return principal, nil
		}
		if !errors.Is(err, core.ErrNoPrincipal) {
			return nil, fmt.Errorf("%s: %w", a.Name(), err)
		}
		rejections = append(rejections, fmt.Errorf("%s: %w", a.Name(), err))
	}
	if len(rejections) == 0 {
		return nil, fmt.Errorf("%w: no authenticators configured", core.ErrNoPrincipal)
	}
	return nil, errors.Join(rejections...)
}
