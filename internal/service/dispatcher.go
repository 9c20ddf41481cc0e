package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/storekeep/storekeep/internal/domain"
)

// ExecuteTool authorizes and runs one tool invocation against domain
// state: catalog lookup, schema validation, role check, then the handler.
// Every failure, including a handler panic, comes back as a ToolResult —
// nothing escapes as a transport fault.
func (s *Service) ExecuteTool(ctx context.Context, name domain.ToolName, args map[string]any, actor *domain.User) (result domain.ToolResult) {
	def, ok := toolIndex[name]
	if !ok {
		return domain.Fail(domain.ErrKindUnknownTool, "Unknown tool: %s", name)
	}

	if fail, ok := validateArgs(def, args); !ok {
		return fail
	}

	decision, err := s.policy.Evaluate(ctx, string(name), string(actor.Role))
	if err != nil {
		log.Error().Err(err).Str("tool", string(name)).Msg("policy evaluation failed")
		return domain.Fail(domain.ErrKindInternal, "authorization check failed: %v", err)
	}
	if !decision.Allow {
		return domain.Fail(domain.ErrKindAuthorization,
			"You don't have permission to use %s. %s access required.", name, roleLabel(decision.MinimumRole))
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("tool", string(name)).Interface("panic", r).Msg("tool handler panicked")
			result = domain.Fail(domain.ErrKindInternal, "internal error: %v", r)
		}
	}()

	log.Info().Str("tool", string(name)).Str("actor", actor.Username).Msg("executing tool")

	switch name {
	case domain.ToolCreateBill:
		return s.toolCreateBill(ctx, args, actor)
	case domain.ToolCheckStock:
		return s.toolCheckStock(ctx, args)
	case domain.ToolGetPrice:
		return s.toolGetPrice(ctx, args)
	case domain.ToolListProducts:
		return s.toolListProducts(ctx)
	case domain.ToolAddProduct:
		return s.toolAddProduct(ctx, args)
	case domain.ToolUpdateStock:
		return s.toolUpdateStock(ctx, args)
	case domain.ToolDailySales:
		return s.toolDailySales(ctx, args)
	case domain.ToolLowStock:
		return s.toolLowStock(ctx, args)
	case domain.ToolProfitLossReport:
		return s.toolProfitLoss(ctx, args)
	case domain.ToolGetAllUsers:
		return s.toolGetAllUsers(ctx)
	case domain.ToolCreateUser:
		return s.toolCreateUser(ctx, args)
	case domain.ToolDeleteUser:
		return s.toolDeleteUser(ctx, args, actor)
	default:
		return domain.Fail(domain.ErrKindUnknownTool, "Unknown tool: %s", name)
	}
}

func roleLabel(role string) string {
	switch domain.Role(role) {
	case domain.RoleSuperAdmin:
		return "Super Admin"
	case domain.RoleAdmin:
		return "Admin"
	default:
		return "User"
	}
}

// validateArgs checks args against the tool's parameter schema. The second
// return is false when validation failed and the first carries the failure.
func validateArgs(def domain.ToolDefinition, args map[string]any) (domain.ToolResult, bool) {
	for _, p := range def.Params {
		val, present := args[p.Name]
		if !present || val == nil {
			if p.Required {
				return domain.Fail(domain.ErrKindValidation, "Missing required field: %s", p.Name), false
			}
			continue
		}
		if err := checkParamType(p, val); err != nil {
			return domain.Fail(domain.ErrKindValidation, "Invalid field %s: %v", p.Name, err), false
		}
	}
	return domain.ToolResult{}, true
}

func checkParamType(p domain.Param, val any) error {
	switch p.Type {
	case domain.ParamString:
		if _, ok := val.(string); !ok {
			return fmt.Errorf("expected a string")
		}
	case domain.ParamInteger:
		if _, ok := asInt(val); !ok {
			return fmt.Errorf("expected an integer")
		}
	case domain.ParamNumber:
		if _, ok := asFloat(val); !ok {
			return fmt.Errorf("expected a number")
		}
	case domain.ParamArray:
		items, ok := val.([]any)
		if !ok {
			return fmt.Errorf("expected an array")
		}
		if len(items) == 0 {
			return fmt.Errorf("must not be empty")
		}
		for i, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				return fmt.Errorf("element %d is not an object", i)
			}
			for _, field := range p.Items {
				fv, present := obj[field.Name]
				if !present || fv == nil {
					if field.Required {
						return fmt.Errorf("element %d is missing %s", i, field.Name)
					}
					continue
				}
				if err := checkParamType(field, fv); err != nil {
					return fmt.Errorf("element %d: %s: %v", i, field.Name, err)
				}
			}
		}
	}
	return nil
}

// asInt accepts the numeric shapes JSON decoding produces.
func asInt(val any) (int, bool) {
	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	default:
		return 0, false
	}
}

func asFloat(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func stringArg(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return s
}

func intArg(args map[string]any, name string, fallback int) int {
	if v, ok := asInt(args[name]); ok {
		return v
	}
	return fallback
}

func floatArg(args map[string]any, name string) float64 {
	v, _ := asFloat(args[name])
	return v
}
