package broker

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/darmiel/realmbroker/internal/secret"
	"github.com/darmiel/realmbroker/internal/tasks"
)

// SecretCheckTask is the name the signing secret check is registered under.
const SecretCheckTask = "signing-secret-check"

// SecretCheck returns a task that resolves src and fails if the secret is
// unavailable. File-backed secrets are read on every request, so a check
// reports a broken file before the next token request does.
func SecretCheck(src secret.Source) tasks.TaskFunc {
	return func(ctx context.Context, logger zerolog.Logger) error {
		if _, err := src.Resolve(ctx); err != nil {
			return err
		}
		ev := logger.Info().Str("kind", src.Kind())
		if f, ok := src.(secret.File); ok {
			ev = ev.Str("path", f.Path())
		}
		ev.Msg("signing secret is available")
		return nil
	}
}
