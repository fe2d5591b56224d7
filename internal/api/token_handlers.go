package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/realmbroker/internal/api/middleware"
	"github.com/darmiel/realmbroker/internal/api/presenter"
	"github.com/darmiel/realmbroker/internal/core"
	"github.com/darmiel/realmbroker/internal/service"
)

const GrantTypeClientCredentials = "client_credentials"

// TokenResponse is the OAuth2 token endpoint response.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}

func newTokenResponse(artifact *core.TokenArtifact) TokenResponse {
	return TokenResponse{
		AccessToken: artifact.Value,
		TokenType:   artifact.TokenType,
		ExpiresIn:   artifact.ExpiresIn(),
		Scope:       artifact.Scope,
	}
}

// maxLifetimeSeconds is the largest expires_in that fits a time.Duration.
const maxLifetimeSeconds = math.MaxInt64 / int64(time.Second)

// lifetimeParam reads the optional "expires_in" form value in seconds.
// Values beyond what a Duration can hold mean "as long as allowed" and
// leave the cap to the broker.
func lifetimeParam(r *http.Request) (time.Duration, error) {
	v := r.PostFormValue("expires_in")
	if v == "" {
		return 0, nil
	}
	seconds, err := strconv.ParseInt(v, 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	if seconds < 0 {
		return 0, fmt.Errorf("negative expires_in %q", v)
	}
	if seconds > maxLifetimeSeconds {
		return 0, nil
	}
	return time.Duration(seconds) * time.Second, nil
}

// handleToken exchanges client credentials for a bearer token.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	if err := r.ParseForm(); err != nil {
		logger.Warn().Err(err).Msg("failed to parse token request form")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}
	if grantType := r.PostFormValue("grant_type"); grantType != GrantTypeClientCredentials {
		logger.Warn().Str("grant_type", grantType).Msg("unsupported grant type")
		presenter.Error(w, r, "unsupported grant type", http.StatusBadRequest)
		return
	}
	lifetime, err := lifetimeParam(r)
	if err != nil {
		presenter.Error(w, r, "invalid expires_in parameter", http.StatusBadRequest)
		return
	}

	clientID, clientSecret := r.PostFormValue("client_id"), r.PostFormValue("client_secret")
	if basicID, basicSecret, ok := r.BasicAuth(); ok {
		clientID, clientSecret = basicID, basicSecret
	}

	result, err := s.tokenService.ExchangeClientCredentials(ctx, service.ClientCredentialsRequest{
		Realm:        middleware.RealmCtx(ctx),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scope:        r.PostFormValue("scope"),
		Lifetime:     lifetime,
	})
	if err != nil {
		logger.Warn().Err(err).Str("client_id", clientID).Msg("client credentials exchange failed")
		presenter.Err(w, r, err, "token request failed")
		return
	}

	logger.Info().
		Str("sub", result.Principal.Subject).
		Str("fingerprint", result.Artifact.Fingerprint).
		Msg("token issued successfully")

	w.Header().Set("Cache-Control", "no-store")
	presenter.JSON(w, r, newTokenResponse(result.Artifact), http.StatusOK)
}

// handleRefresh issues a fresh token for the authenticated caller.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	lifetime, err := lifetimeParam(r)
	if err != nil {
		presenter.Error(w, r, "invalid expires_in parameter", http.StatusBadRequest)
		return
	}

	result, err := s.tokenService.Refresh(ctx, service.RefreshRequest{
		Principal: middleware.PrincipalCtx(ctx),
		Lifetime:  lifetime,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("token refresh failed")
		presenter.Err(w, r, err, "token refresh failed")
		return
	}

	logger.Info().
		Str("fingerprint", result.Artifact.Fingerprint).
		Msg("token refreshed successfully")

	w.Header().Set("Cache-Control", "no-store")
	presenter.JSON(w, r, newTokenResponse(result.Artifact), http.StatusOK)
}

// handlePrincipal returns the principal the request was authenticated as.
func (s *Server) handlePrincipal(w http.ResponseWriter, r *http.Request) {
	presenter.JSON(w, r, middleware.PrincipalCtx(r.Context()), http.StatusOK)
}
