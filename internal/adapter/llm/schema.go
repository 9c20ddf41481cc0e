package llm

import "github.com/storekeep/storekeep/internal/domain"

// SchemaJSON renders a tool definition's parameters as a JSON Schema
// object, the shape function-calling APIs expect.
func SchemaJSON(def domain.ToolDefinition) map[string]any {
	return objectSchema(def.Params)
}

func objectSchema(params []domain.Param) map[string]any {
	props := make(map[string]any, len(params))
	required := []string{}
	for _, p := range params {
		props[p.Name] = paramSchema(p)
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func paramSchema(p domain.Param) map[string]any {
	schema := map[string]any{
		"type":        string(p.Type),
		"description": p.Description,
	}
	if p.Type == domain.ParamArray {
		schema["items"] = objectSchema(p.Items)
	}
	return schema
}
