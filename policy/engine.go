// Package policy evaluates role-based tool authorization through OPA.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"
)

// Decision is the outcome of evaluating the tool policy for one invocation.
type Decision struct {
	Allow       bool
	MinimumRole string
}

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a policy engine with the given rego module.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.store_authz.decision"),
		rego.Module("store_authz.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate checks whether a role may invoke a tool.
func (e *Engine) Evaluate(ctx context.Context, toolName, role string) (Decision, error) {
	input := map[string]any{
		"tool_name": toolName,
		"role":      role,
	}

	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return Decision{}, fmt.Errorf("failed to evaluate policy: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return Decision{}, fmt.Errorf("policy returned no decision for tool %s", toolName)
	}

	obj, ok := results[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return Decision{}, fmt.Errorf("unexpected policy result type %T", results[0].Expressions[0].Value)
	}

	dec := Decision{}
	if allow, ok := obj["allow"].(bool); ok {
		dec.Allow = allow
	}
	if min, ok := obj["minimum_role"].(string); ok {
		dec.MinimumRole = min
	}
	return dec, nil
}

// DefaultPolicy encodes the tool access matrix: user management is
// super_admin only, inventory mutation and reporting need admin, everything
// else needs an authenticated user.
const DefaultPolicy = `
package store_authz

admin_tools := {
	"add_product",
	"update_product_stock",
	"get_daily_sales",
	"get_profit_loss_report",
	"get_all_users",
}

super_admin_tools := {
	"create_user",
	"delete_user",
}

rank := {"user": 0, "admin": 1, "super_admin": 2}

default minimum_role := "user"

minimum_role := "admin" if input.tool_name in admin_tools

minimum_role := "super_admin" if input.tool_name in super_admin_tools

default allow := false

allow if rank[input.role] >= rank[minimum_role]

decision := {"allow": allow, "minimum_role": minimum_role}
`
