// Package mcpconv converts between toolgate's tool descriptors and the wire types of mcp-go.
//
// toolgate-specific descriptor fields travel in a tool's "_meta" object on the MCP wire:
//
//	{"name": "...", "_meta": {"requiredScopes": ["repo"], "creditCost": 2, "deprecated": true}}
//
// The output schema uses the standard "outputSchema" field.
package mcpconv

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mcpjungle/toolgate/pkg/types"
	"github.com/spf13/cast"
)

// Keys of the tool "_meta" object understood by toolgate.
const (
	MetaRequiredScopes = "requiredScopes"
	MetaCreditCost     = "creditCost"
	MetaDeprecated     = "deprecated"

	// MetaLegacyDeprecated is an older spelling of MetaDeprecated, still accepted on input.
	MetaLegacyDeprecated = "is_deprecated"
)

// ToolFromMCP builds a toolgate descriptor from an mcp-go tool.
// The returned value shares no mutable state with t.
func ToolFromMCP(t mcp.Tool) (types.Tool, error) {
	out := types.Tool{
		Name:        t.Name,
		Description: t.Description,
		Enabled:     true,
	}

	rawInput := t.RawInputSchema
	if len(rawInput) == 0 {
		var err error
		if rawInput, err = json.Marshal(t.InputSchema); err != nil {
			return types.Tool{}, fmt.Errorf("failed to marshal input schema of tool %s: %w", t.Name, err)
		}
	}
	if err := json.Unmarshal(rawInput, &out.InputSchema); err != nil {
		return types.Tool{}, fmt.Errorf("failed to unmarshal input schema of tool %s: %w", t.Name, err)
	}

	switch {
	case len(t.RawOutputSchema) > 0:
		out.OutputSchema = append(json.RawMessage(nil), t.RawOutputSchema...)
	case t.OutputSchema.Type != "":
		raw, err := json.Marshal(t.OutputSchema)
		if err != nil {
			return types.Tool{}, fmt.Errorf("failed to marshal output schema of tool %s: %w", t.Name, err)
		}
		out.OutputSchema = raw
	}

	if t.Meta != nil {
		if err := applyMeta(&out, t.Meta.AdditionalFields); err != nil {
			return types.Tool{}, fmt.Errorf("invalid _meta for tool %s: %w", t.Name, err)
		}
	}

	annotations, err := annotationsToMap(t.Annotations)
	if err != nil {
		return types.Tool{}, fmt.Errorf("failed to convert annotations of tool %s: %w", t.Name, err)
	}
	out.Annotations = annotations

	return out, nil
}

func applyMeta(out *types.Tool, fields map[string]any) error {
	for _, key := range []string{MetaDeprecated, MetaLegacyDeprecated} {
		v, ok := fields[key]
		if !ok {
			continue
		}
		b, err := cast.ToBoolE(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		out.Deprecated = out.Deprecated || b
	}

	if v, ok := fields[MetaRequiredScopes]; ok && v != nil {
		scopes, err := cast.ToStringSliceE(v)
		if err != nil {
			return fmt.Errorf("%s: %w", MetaRequiredScopes, err)
		}
		out.RequiredScopes = scopes
	}

	if v, ok := fields[MetaCreditCost]; ok && v != nil {
		cost, err := cast.ToIntE(v)
		if err != nil {
			return fmt.Errorf("%s: %w", MetaCreditCost, err)
		}
		out.CreditCost = &cost
	}
	return nil
}

func annotationsToMap(a mcp.ToolAnnotation) (map[string]any, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, nil
	}
	return m, nil
}

// ToolToMCP builds the mcp-go form of a toolgate descriptor.
// Optional fields that are unset in t are absent from the result.
func ToolToMCP(t types.Tool) (mcp.Tool, error) {
	rawInput, err := json.Marshal(t.InputSchema)
	if err != nil {
		return mcp.Tool{}, fmt.Errorf("failed to marshal input schema of tool %s: %w", t.Name, err)
	}

	out := mcp.Tool{
		Name:           t.Name,
		Description:    t.Description,
		RawInputSchema: rawInput,
	}
	if len(t.OutputSchema) > 0 {
		out.RawOutputSchema = append(json.RawMessage(nil), t.OutputSchema...)
	}

	fields := map[string]any{}
	if t.RequiredScopes != nil {
		fields[MetaRequiredScopes] = append([]string(nil), t.RequiredScopes...)
	}
	if t.CreditCost != nil {
		fields[MetaCreditCost] = *t.CreditCost
	}
	if t.Deprecated {
		fields[MetaDeprecated] = true
	}
	if len(fields) > 0 {
		out.Meta = &mcp.Meta{AdditionalFields: fields}
	}

	if len(t.Annotations) > 0 {
		raw, err := json.Marshal(t.Annotations)
		if err != nil {
			return mcp.Tool{}, fmt.Errorf("failed to marshal annotations of tool %s: %w", t.Name, err)
		}
		if err := json.Unmarshal(raw, &out.Annotations); err != nil {
			return mcp.Tool{}, fmt.Errorf("failed to unmarshal annotations of tool %s: %w", t.Name, err)
		}
	}

	return out, nil
}

// ContentToMaps converts tool result content into plain JSON objects, as returned by the HTTP API.
func ContentToMaps(content []mcp.Content) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(content))
	for i, item := range content {
		serialized, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal content item %d: %w", i, err)
		}
		var m map[string]any
		if err := json.Unmarshal(serialized, &m); err != nil {
			return nil, fmt.Errorf("failed to unmarshal content item %d: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// TextOf returns the text of a text content item, which may be held by value or by pointer.
func TextOf(c mcp.Content) (string, bool) {
	switch v := c.(type) {
	case mcp.TextContent:
		return v.Text, true
	case *mcp.TextContent:
		if v == nil {
			return "", false
		}
		return v.Text, true
	default:
		return "", false
	}
}
