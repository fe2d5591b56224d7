package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/realmbroker/internal/api/presenter"
	"github.com/darmiel/realmbroker/internal/core"
)

type principalKey struct{}

// PrincipalCtx returns the authenticated principal of the request, or nil.
func PrincipalCtx(ctx context.Context) *core.AuthenticatedPrincipal {
	p, _ := ctx.Value(principalKey{}).(*core.AuthenticatedPrincipal)
	return p
}

// BearerToken extracts the credentials of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Authenticate resolves the bearer credentials of a request into a principal
// of the request's realm. Requests without valid credentials get a 401.
func Authenticate(authenticator core.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := log.Ctx(ctx)

			creds := BearerToken(r)
			if creds == "" {
				presenter.Error(w, r, "login required", http.StatusUnauthorized)
				return
			}

			principal, err := authenticator.Authenticate(ctx, RealmCtx(ctx), creds)
			if err != nil {
				logger.Warn().Err(err).Msg("authentication failed")
				presenter.Err(w, r, err, "authentication failed")
				return
			}

			logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("sub", principal.Subject)
			})
			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, principalKey{}, principal)))
		})
	}
}

// RequireScope only lets principals with the given scope through.
func RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalCtx(r.Context())
			if principal == nil {
				presenter.Error(w, r, "login required", http.StatusUnauthorized)
				return
			}
			if principal.Scope != scope {
				presenter.Error(w, r, "insufficient privileges", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
