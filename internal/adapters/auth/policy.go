// internal/adapters/auth/policy.go
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/cel-go/cel"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/core/ports"
)

const (
	purchaseFamily = `kind in ["purchase", "purchase_return"]`
	saleFamily     = `kind in ["sale", "sale_return"]`
	everyone       = `position in ["manager", "purchaser", "warehouse", "sales", "finance"]`
)

// DefaultPolicies grants each position the actions of its permission group.
// Expressions see two strings: position and kind ("" when no order is involved).
var DefaultPolicies = map[ports.Action]string{
	ports.ActionOrderView: `position in ["manager", "finance", "warehouse"]` +
		` || (position == "purchaser" && ` + purchaseFamily + `)` +
		` || (position == "sales" && ` + saleFamily + `)`,
	ports.ActionOrderEdit: `position == "manager"` +
		` || (position == "purchaser" && ` + purchaseFamily + `)` +
		` || (position == "sales" && ` + saleFamily + `)`,
	ports.ActionOrderApprove: `position == "manager"` +
		` || (position == "purchaser" && kind == "purchase_return")` +
		` || (position == "sales" && kind == "sale_return")`,
	ports.ActionInventoryView:   everyone,
	ports.ActionInventoryManage: `position in ["manager", "warehouse"]`,
	ports.ActionCatalogView:     everyone,
	ports.ActionCatalogManage:   `position in ["manager", "purchaser", "sales"]`,
	ports.ActionEmployeeManage:  `position == "manager"`,
}

// PolicyAuthorizer evaluates one compiled CEL program per action
type PolicyAuthorizer struct {
	programs map[ports.Action]cel.Program
	logger   *slog.Logger
}

// Statically assert that *PolicyAuthorizer implements the Authorizer interface.
var _ ports.Authorizer = (*PolicyAuthorizer)(nil)

// NewPolicyAuthorizer compiles DefaultPolicies with overrides applied on top.
// An override that does not compile to a bool expression is an error.
func NewPolicyAuthorizer(overrides map[string]string, logger *slog.Logger) (*PolicyAuthorizer, error) {
	env, err := cel.NewEnv(
		cel.Variable("position", cel.StringType),
		cel.Variable("kind", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create policy environment: %w", err)
	}

	policies := make(map[ports.Action]string, len(DefaultPolicies))
	for action, expr := range DefaultPolicies {
		policies[action] = expr
	}
	for action, expr := range overrides {
		if _, known := DefaultPolicies[ports.Action(action)]; !known {
			return nil, fmt.Errorf("policy override for unknown action %q", action)
		}
		policies[ports.Action(action)] = expr
	}

	a := &PolicyAuthorizer{
		programs: make(map[ports.Action]cel.Program, len(policies)),
		logger:   logger.With(slog.String("component", "authorizer")),
	}
	for action, expr := range policies {
		prg, err := compile(env, expr)
		if err != nil {
			return nil, fmt.Errorf("policy %s: %w", action, err)
		}
		a.programs[action] = prg
	}

	actions := make([]string, 0, len(overrides))
	for action := range overrides {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	a.logger.Info("authorization policies loaded",
		slog.Int("policies", len(a.programs)),
		slog.Any("overridden", actions))

	return a, nil
}

func compile(env *cel.Env, expr string) (cel.Program, error) {
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("expression must evaluate to bool, got %s", ast.OutputType())
	}
	return env.Program(ast)
}

// IsAuthorized evaluates the action's policy. Unknown actions and evaluation
// errors deny.
func (a *PolicyAuthorizer) IsAuthorized(ctx context.Context, principal domain.Principal, action ports.Action, kind domain.OrderKind) bool {
	prg, ok := a.programs[action]
	if !ok {
		a.logger.WarnContext(ctx, "no policy for action", slog.String("action", string(action)))
		return false
	}

	out, _, err := prg.ContextEval(ctx, map[string]any{
		"position": string(principal.Position),
		"kind":     string(kind),
	})
	if err != nil {
		a.logger.WarnContext(ctx, "policy evaluation failed",
			slog.String("action", string(action)),
			slog.String("error", err.Error()))
		return false
	}

	allowed, _ := out.Value().(bool)
	if !allowed {
		a.logger.DebugContext(ctx, "action denied",
			slog.String("action", string(action)),
			slog.String("position", string(principal.Position)),
			slog.String("kind", string(kind)))
	}
	return allowed
}
