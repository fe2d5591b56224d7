package engine

import (
	"errors"
	"testing"

	"github.com/darmiel/realmbroker/internal/config"
	"github.com/darmiel/realmbroker/internal/core"
)

func TestEngine_Allow(t *testing.T) {
	eng, err := New([]config.ScopeRule{
		{
			Name:      "root-admin",
			Principal: "root",
			Scopes:    []string{"admin", "PRINCIPAL_ROLE:*"},
		},
		{
			Name:   "tenant-b-roles",
			Realm:  "tenant-b",
			Scopes: []string{"PRINCIPAL_ROLE:*"},
		},
		{
			Name:   "service-accounts",
			Scopes: []string{"PRINCIPAL_ROLE:ALL"},
			Expr:   `principal startsWith "svc-" && realm != "tenant-b"`,
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name      string
		realm     core.RealmContext
		principal string
		scope     string
		wantRule  string
		wantErr   bool
	}{
		{
			name:      "Principal rule",
			realm:     core.DefaultRealm,
			principal: "root",
			scope:     "admin",
			wantRule:  "root-admin",
		},
		{
			name:      "Glob pattern",
			realm:     core.DefaultRealm,
			principal: "root",
			scope:     "PRINCIPAL_ROLE:ALL",
			wantRule:  "root-admin",
		},
		{
			name:      "Realm rule",
			realm:     "tenant-b",
			principal: "alice",
			scope:     "PRINCIPAL_ROLE:reader",
			wantRule:  "tenant-b-roles",
		},
		{
			name:      "Expression rule",
			realm:     core.DefaultRealm,
			principal: "svc-ci",
			scope:     "PRINCIPAL_ROLE:ALL",
			wantRule:  "service-accounts",
		},
		{
			name:      "Expression false",
			realm:     core.DefaultRealm,
			principal: "alice",
			scope:     "PRINCIPAL_ROLE:ALL",
			wantErr:   true,
		},
		{
			name:      "Scope not listed",
			realm:     "tenant-b",
			principal: "alice",
			scope:     "admin",
			wantErr:   true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := eng.Allow(tc.realm, tc.principal, tc.scope)
			if tc.wantErr {
				if !errors.Is(err, core.ErrScopeNotAllowed) {
					t.Errorf("Allow() error = %v, want ErrScopeNotAllowed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Allow() unexpected error = %v", err)
			}
			if got != tc.wantRule {
				t.Errorf("Allow() rule = %q, want %q", got, tc.wantRule)
			}
		})
	}
}

func TestEngine_NoRulesAllowsEverything(t *testing.T) {
	eng, err := New(nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := eng.Allow("any", "anyone", "admin"); err != nil {
		t.Errorf("Allow() error = %v, want nil", err)
	}
}

func TestNew_InvalidExpression(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{name: "Syntax", expr: `principal ==`},
		{name: "Not Boolean", expr: `principal + "x"`},
		{name: "Unknown Variable", expr: `team == "x"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New([]config.ScopeRule{{Name: "broken", Scopes: []string{"*"}, Expr: tc.expr}})
			if !errors.Is(err, core.ErrConfiguration) {
				t.Errorf("New() error = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestEngine_Explain(t *testing.T) {
	eng, err := New([]config.ScopeRule{
		{Name: "tenant-b", Realm: "tenant-b", Principal: "alice", Scopes: []string{"reader"}},
		{Name: "any-reader", Scopes: []string{"reader"}},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	results := eng.Explain(core.DefaultRealm, "bob", "reader")
	if len(results) != 2 {
		t.Fatalf("Explain() len = %d, want 2", len(results))
	}

	first := results[0]
	if first.Matched {
		t.Errorf("rule %q should not match", first.Rule)
	}
	failed := 0
	for _, c := range first.Conditions {
		if !c.Matched {
			failed++
			if c.Reason == "" {
				t.Errorf("failed condition %q has no reason", c.Expression)
			}
		}
	}
	if failed != 2 {
		t.Errorf("failed conditions = %d, want 2 (realm and principal)", failed)
	}

	if !results[1].Matched {
		t.Errorf("rule %q should match: %+v", results[1].Rule, results[1].Conditions)
	}
}
