package cliconfig

import (
	"errors"
	"testing"
	"time"
)

func TestSaveAndLoad(t *testing.T) {
	t.Setenv(ConfigDirEnv, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() of missing file error = %v", err)
	}
	if _, err := cfg.GetCredential("http://localhost:8181"); !errors.Is(err, ErrCredentialNotFound) {
		t.Errorf("GetCredential() error = %v, want ErrCredentialNotFound", err)
	}

	if err := cfg.SetCredential("http://localhost:8181", &Credential{Token: "t", Realm: "r"}); err != nil {
		t.Fatalf("SetCredential() error = %v", err)
	}
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cred, err := loaded.GetCredential("http://localhost:8181/some/path")
	if err != nil {
		t.Fatalf("GetCredential() error = %v", err)
	}
	if cred.Token != "t" || cred.Realm != "r" {
		t.Errorf("GetCredential() = %+v", cred)
	}
}

func TestSetCredential_InvalidServer(t *testing.T) {
	cfg := &CLIConfig{}
	if err := cfg.SetCredential("localhost", &Credential{}); err == nil {
		t.Error("SetCredential() without scheme should fail")
	}
}

func TestCredential_Expired(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		cred Credential
		want bool
	}{
		{name: "Unknown expiry", cred: Credential{}, want: false},
		{name: "Future", cred: Credential{ExpiresAt: now.Add(time.Minute)}, want: false},
		{name: "Past", cred: Credential{ExpiresAt: now.Add(-time.Minute)}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cred.Expired(now); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}
