package pipeline

import (
	"encoding/json"
	"slices"

	"github.com/mcpjungle/toolgate/internal/config"
	"github.com/mcpjungle/toolgate/pkg/types"
	"github.com/spf13/cast"
)

// FilterCatalog derives the catalog advertised to the client from the raw tools.
//
// Deprecated tools and restricted tools are dropped. Deprecated parameters are removed
// from the remaining input schemas. For external clients, the output schema, required scopes
// and credit cost are removed as well. The order of the surviving tools is preserved.
//
// FilterCatalog never modifies raw; the returned descriptors are new values.
// Filtering an already filtered catalog returns an equal catalog.
func FilterCatalog(raw []types.Tool, cfg config.Pipeline) []types.Tool {
	out := make([]types.Tool, 0, len(raw))
	for _, t := range raw {
		if visible, ok := filterTool(t, cfg); ok {
			out = append(out, visible)
		}
	}
	return out
}

// filterTool returns the client-facing form of t, or false if t must be hidden.
func filterTool(t types.Tool, cfg config.Pipeline) (types.Tool, bool) {
	if t.Deprecated || cfg.IsRestricted(t.Name) {
		return types.Tool{}, false
	}

	t.InputSchema = withoutDeprecatedParams(t.InputSchema)
	if cfg.ExternalClient {
		t.OutputSchema = nil
		t.RequiredScopes = nil
		t.CreditCost = nil
	}
	return t, true
}

// withoutDeprecatedParams returns a copy of s without the parameters marked deprecated.
// Removed parameters are also dropped from the required list.
func withoutDeprecatedParams(s types.ToolInputSchema) types.ToolInputSchema {
	if s.Properties == nil {
		s.Required = slices.Clone(s.Required)
		return s
	}

	props := types.NewToolProperties()
	var dropped []string
	for p := s.Properties.Oldest(); p != nil; p = p.Next() {
		if isDeprecatedParam(p.Value) {
			dropped = append(dropped, p.Key)
			continue
		}
		props.Set(p.Key, p.Value)
	}
	s.Properties = props

	if len(dropped) == 0 {
		s.Required = slices.Clone(s.Required)
		return s
	}
	var required []string
	for _, name := range s.Required {
		if !slices.Contains(dropped, name) {
			required = append(required, name)
		}
	}
	s.Required = required
	return s
}

// isDeprecatedParam reports whether a parameter schema is marked with
// "deprecated": true, or with the older "is_deprecated": true.
// Schemas that are not JSON objects are never deprecated.
func isDeprecatedParam(raw json.RawMessage) bool {
	var schema map[string]any
	if err := json.Unmarshal(raw, &schema); err != nil {
		return false
	}
	return cast.ToBool(schema["deprecated"]) || cast.ToBool(schema["is_deprecated"])
}
