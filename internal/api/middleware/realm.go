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

type realmKey struct{}

// RealmCtx returns the realm resolved for the request.
func RealmCtx(ctx context.Context) core.RealmContext {
	realm, ok := ctx.Value(realmKey{}).(core.RealmContext)
	if !ok {
		return core.DefaultRealm
	}
	return realm
}

// Realm resolves the realm of a request from the given header, falling back to
// defaultRealm. Realms rejected by allowed are answered with 404.
func Realm(
	header string,
	defaultRealm core.RealmContext,
	allowed func(core.RealmContext) bool,
) func(http.Handler) http.Handler {
	if defaultRealm == "" {
		defaultRealm = core.DefaultRealm
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			realm := defaultRealm
			if v := strings.TrimSpace(r.Header.Get(header)); v != "" {
				realm = core.RealmContext(v)
			}
			if allowed != nil && !allowed(realm) {
				log.Ctx(r.Context()).Warn().Str("realm", realm.ID()).Msg("rejected unknown realm")
				presenter.Error(w, r, "unknown realm", http.StatusNotFound)
				return
			}

			log.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("realm", realm.ID())
			})
			ctx := context.WithValue(r.Context(), realmKey{}, realm)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
