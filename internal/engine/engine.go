// Package engine decides which scopes a principal may request.
package engine

import (
	"fmt"
	"path"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/realmbroker/internal/config"
	"github.com/darmiel/realmbroker/internal/core"
)

// Request is the input of a scope decision.
type Request struct {
	Realm     string `expr:"realm"`
	Principal string `expr:"principal"`
	Scope     string `expr:"scope"`
}

type rule struct {
	config.ScopeRule
	program *vm.Program
}

// Engine holds the compiled scope rules and evaluates them in order.
type Engine struct {
	rules []rule
}

// New compiles the expressions of rules.
func New(rules []config.ScopeRule) (*Engine, error) {
	e := &Engine{rules: make([]rule, 0, len(rules))}
	for _, r := range rules {
		for _, pattern := range r.Scopes {
			if _, err := path.Match(pattern, ""); err != nil {
				return nil, fmt.Errorf("%w: scope rule '%s': invalid scope pattern '%s': %w",
					core.ErrConfiguration, r.Name, pattern, err)
			}
		}
		compiled := rule{ScopeRule: r}
		if r.Expr != "" {
			program, err := expr.Compile(r.Expr, expr.Env(Request{}), expr.AsBool())
			if err != nil {
				return nil, fmt.Errorf("%w: scope rule '%s': compiling expression: %w", core.ErrConfiguration, r.Name, err)
			}
			compiled.program = program
		}
		e.rules = append(e.rules, compiled)
	}
	return e, nil
}

// Len returns the number of rules.
func (e *Engine) Len() int {
	return len(e.rules)
}

// Allow returns the name of the first rule that grants the request.
// Without rules every request is granted and the name is empty.
func (e *Engine) Allow(realm core.RealmContext, principal, scope string) (string, error) {
	if len(e.rules) == 0 {
		return "", nil
	}
	req := Request{Realm: realm.ID(), Principal: principal, Scope: scope}
	for _, r := range e.rules {
		if checkRule(r, req).Matched {
			return r.Name, nil
		}
	}
	return "", fmt.Errorf("%w: '%s' for principal '%s' in realm '%s'", core.ErrScopeNotAllowed, scope, principal, realm)
}

func matchesScope(patterns []string, scope string) bool {
	for _, pattern := range patterns {
		if ok, _ := path.Match(pattern, scope); ok {
			return true
		}
	}
	return false
}

func run(r rule, req Request) (bool, error) {
	out, err := expr.Run(r.program, req)
	if err != nil {
		log.Warn().Err(err).Msgf("error evaluating expression of scope rule '%s'", r.Name)
		return false, err
	}
	b, _ := out.(bool)
	return b, nil
}
