// Package secret resolves the signing secret of a token broker.
//
// A Source is configured once and resolved lazily, only when a token is
// signed or verified.
package secret

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/darmiel/realmbroker/internal/core"
)

// Source produces the signing secret on demand.
type Source interface {
	Resolve(ctx context.Context) (string, error)

	// Kind returns "inline" or "file".
	Kind() string
}

var (
	_ Source = Inline("")
	_ Source = File("")
)

// Inline is a secret held in configuration.
type Inline string

func (s Inline) Resolve(_ context.Context) (string, error) {
	if s == "" {
		return "", &core.SecretUnavailableError{Err: errors.New("secret is empty")}
	}
	return string(s), nil
}

func (s Inline) Kind() string {
	return "inline"
}

// File is a secret read from the named file.
// The file is read on every call so a rotated secret is picked up without restart.
type File string

func (f File) Resolve(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &core.SecretUnavailableError{Path: string(f), Err: err}
	}
	data, err := os.ReadFile(string(f))
	if err != nil {
		return "", &core.SecretUnavailableError{Path: string(f), Err: err}
	}
	if len(data) == 0 {
		return "", &core.SecretUnavailableError{Path: string(f), Err: errors.New("file is empty")}
	}
	return string(data), nil
}

func (f File) Kind() string {
	return "file"
}

// Path returns the file the secret is read from.
func (f File) Path() string {
	return string(f)
}

// New picks the source for the given options.
// An inline secret takes precedence over a file; the file is then never read.
func New(inline, path string) (Source, error) {
	switch {
	case inline != "":
		return Inline(inline), nil
	case path != "":
		return File(path), nil
	default:
		return nil, fmt.Errorf("%w: either file or secret must be set", core.ErrConfiguration)
	}
}
