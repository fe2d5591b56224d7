package secret

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/darmiel/realmbroker/internal/core"
)

func writeSecret(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing secret file: %v", err)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		inline   string
		path     string
		wantKind string
		wantErr  error
	}{
		{name: "Inline Only", inline: "s", wantKind: "inline"},
		{name: "File Only", path: "/tmp/secret", wantKind: "file"},
		{name: "Both Prefers Inline", inline: "s", path: "/does/not/exist", wantKind: "inline"},
		{name: "Neither", wantErr: core.ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := New(tt.inline, tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() unexpected error: %v", err)
			}
			if src.Kind() != tt.wantKind {
				t.Errorf("Kind() = %q, want %q", src.Kind(), tt.wantKind)
			}
		})
	}
}

func TestInline_Resolve(t *testing.T) {
	src := Inline("s")
	for i := 0; i < 3; i++ {
		got, err := src.Resolve(context.Background())
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if got != "s" {
			t.Fatalf("Resolve() = %q, want %q", got, "s")
		}
	}
}

func TestBothConfigured_NeverReadsFile(t *testing.T) {
	src, err := New("inline-secret", filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	got, err := src.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "inline-secret" {
		t.Errorf("Resolve() = %q, want inline secret", got)
	}
}

func TestFile_ResolveRereadsOnEveryCall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret")
	writeSecret(t, path, "first")

	src := File(path)
	got, err := src.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "first" {
		t.Fatalf("Resolve() = %q, want %q", got, "first")
	}

	writeSecret(t, path, "second")
	got, err = src.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "second" {
		t.Errorf("Resolve() after rotation = %q, want %q", got, "second")
	}
}

func TestFile_ResolveVerbatim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret")
	writeSecret(t, path, "with-newline\n")

	got, err := File(path).Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "with-newline\n" {
		t.Errorf("Resolve() = %q, want contents verbatim", got)
	}
}

func TestFile_ResolveErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	writeSecret(t, empty, "")

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		ctx  context.Context
		path string
	}{
		{name: "Missing File", ctx: context.Background(), path: filepath.Join(dir, "missing")},
		{name: "Directory", ctx: context.Background(), path: dir},
		{name: "Empty File", ctx: context.Background(), path: empty},
		{name: "Cancelled Context", ctx: cancelled, path: empty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := File(tt.path).Resolve(tt.ctx)
			if !errors.Is(err, core.ErrSecretUnavailable) {
				t.Fatalf("Resolve() error = %v, want ErrSecretUnavailable", err)
			}
			var unavailable *core.SecretUnavailableError
			if !errors.As(err, &unavailable) {
				t.Fatalf("Resolve() error is %T, want *core.SecretUnavailableError", err)
			}
			if unavailable.Path != tt.path {
				t.Errorf("Path = %q, want %q", unavailable.Path, tt.path)
			}
		})
	}
}

func TestFile_MissingFileKeepsCause(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "missing")).Resolve(context.Background())
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Resolve() error = %v, want wrapped os.ErrNotExist", err)
	}
}
