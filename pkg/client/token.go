package client

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/darmiel/realmbroker/internal/api"
	"github.com/darmiel/realmbroker/internal/core"
)

// ClientCredentials identifies a principal at the token endpoint.
type ClientCredentials struct {
	ClientID     string
	ClientSecret string

	// Scope is optional. The server grants its default scope if empty.
	Scope string

	// Lifetime is optional and capped by the server.
	Lifetime time.Duration
}

func lifetimeForm(form url.Values, lifetime time.Duration) {
	if lifetime > 0 {
		form.Set("expires_in", strconv.FormatInt(int64(lifetime/time.Second), 10))
	}
}

// Token exchanges client credentials for a bearer token.
func (c *Client) Token(ctx context.Context, creds ClientCredentials) (*api.TokenResponse, string, error) {
	form := url.Values{
		"grant_type":    {api.GrantTypeClientCredentials},
		"client_id":     {creds.ClientID},
		"client_secret": {creds.ClientSecret},
	}
	if creds.Scope != "" {
		form.Set("scope", creds.Scope)
	}
	lifetimeForm(form, creds.Lifetime)

	var resp api.TokenResponse
	correlation, err := c.postForm(ctx, c.url().setPath(api.TokenRoute).build(), form, &resp)
	if err != nil {
		return nil, correlation, err
	}
	return &resp, correlation, nil
}

// Refresh requests a fresh token for the authenticated caller.
func (c *Client) Refresh(ctx context.Context, lifetime time.Duration) (*api.TokenResponse, string, error) {
	form := url.Values{}
	lifetimeForm(form, lifetime)

	var resp api.TokenResponse
	correlation, err := c.postForm(ctx, c.url().setPath(api.RefreshTokenRoute).build(), form, &resp)
	if err != nil {
		return nil, correlation, err
	}
	return &resp, correlation, nil
}

// WhoAmI returns the principal the client is authenticated as.
func (c *Client) WhoAmI(ctx context.Context) (*core.AuthenticatedPrincipal, string, error) {
	var p core.AuthenticatedPrincipal
	correlation, err := c.get(ctx, c.url().setPath(api.PrincipalRoute).build(), &p)
	if err != nil {
		return nil, correlation, err
	}
	return &p, correlation, nil
}
