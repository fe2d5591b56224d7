package engine

import (
	"fmt"

	"github.com/darmiel/realmbroker/internal/core"
)

// ConditionResult is the outcome of one condition of a rule.
type ConditionResult struct {
	Expression string `json:"expression"`
	Matched    bool   `json:"matched"`
	Reason     string `json:"reason,omitempty"`
}

// RuleResult explains why a rule did or did not grant a request.
type RuleResult struct {
	Rule       string            `json:"rule"`
	Matched    bool              `json:"matched"`
	Conditions []ConditionResult `json:"conditions"`
}

// Explain evaluates every rule against the request.
func (e *Engine) Explain(realm core.RealmContext, principal, scope string) []RuleResult {
	req := Request{Realm: realm.ID(), Principal: principal, Scope: scope}
	results := make([]RuleResult, 0, len(e.rules))
	for _, r := range e.rules {
		results = append(results, checkRule(r, req))
	}
	return results
}

// checkRule evaluates a single rule. Every condition is evaluated, so the
// result lists all mismatches.
func checkRule(r rule, req Request) RuleResult {
	result := RuleResult{
		Rule:    r.Name,
		Matched: true, // fail on any mismatch
	}

	addResult := func(expression string, passed bool, reason string) {
		result.Conditions = append(result.Conditions, ConditionResult{
			Expression: expression,
			Matched:    passed,
			Reason:     reason,
		})
		if !passed {
			result.Matched = false
		}
	}

	if r.Realm != "" {
		expression := fmt.Sprintf("realm == '%s'", r.Realm)
		if r.Realm != req.Realm {
			addResult(expression, false, fmt.Sprintf("realm mismatch: got '%s'", req.Realm))
		} else {
			addResult(expression, true, "")
		}
	}

	if r.Principal != "" {
		expression := fmt.Sprintf("principal == '%s'", r.Principal)
		if r.Principal != req.Principal {
			addResult(expression, false, fmt.Sprintf("principal mismatch: got '%s'", req.Principal))
		} else {
			addResult(expression, true, "")
		}
	}

	scopeExpr := fmt.Sprintf("scope matches %v", r.Scopes)
	if !matchesScope(r.Scopes, req.Scope) {
		addResult(scopeExpr, false, fmt.Sprintf("scope '%s' is not allowed", req.Scope))
	} else {
		addResult(scopeExpr, true, "")
	}

	if r.program != nil {
		ok, err := run(r, req)
		switch {
		case err != nil:
			addResult(r.Expr, false, fmt.Sprintf("error evaluating expression: %v", err))
		case !ok:
			addResult(r.Expr, false, "expression evaluated to false")
		default:
			addResult(r.Expr, true, "")
		}
	}

	return result
}
