package registry

import (
	"encoding/json"
	"fmt"

	"github.com/mcpjungle/toolgate/internal/model"
	"github.com/mcpjungle/toolgate/pkg/types"
	"go.uber.org/zap"
)

// toolModelFromType builds the DB record of a tool provided by the server with the given ID.
// t.Name must be the tool's name on the upstream server, not its canonical name.
func toolModelFromType(serverID uint, t types.Tool) (*model.Tool, error) {
	inputSchema, err := json.Marshal(t.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal input schema: %w", err)
	}
	m := &model.Tool{
		ServerID:    serverID,
		Name:        t.Name,
		Enabled:     true,
		Description: t.Description,
		InputSchema: inputSchema,
		CreditCost:  t.CreditCost,
		Deprecated:  t.Deprecated,
	}
	if len(t.OutputSchema) > 0 {
		m.OutputSchema = []byte(t.OutputSchema)
	}
	if t.RequiredScopes != nil {
		if m.RequiredScopes, err = json.Marshal(t.RequiredScopes); err != nil {
			return nil, fmt.Errorf("failed to marshal required scopes: %w", err)
		}
	}
	if len(t.Annotations) > 0 {
		if m.Annotations, err = json.Marshal(t.Annotations); err != nil {
			return nil, fmt.Errorf("failed to marshal annotations: %w", err)
		}
	}
	return m, nil
}

// toolTypeFromModel builds a fresh descriptor from a DB record, named canonicalName.
// Annotations are optional: if they cannot be decoded they are logged and left out.
func toolTypeFromModel(m *model.Tool, canonicalName string, logger *zap.Logger) (types.Tool, error) {
	t := types.Tool{
		Name:        canonicalName,
		Enabled:     m.Enabled,
		Description: m.Description,
		Deprecated:  m.Deprecated,
	}
	if err := json.Unmarshal(m.InputSchema, &t.InputSchema); err != nil {
		return types.Tool{}, fmt.Errorf(
			"failed to unmarshal input schema %s for tool %s: %w", m.InputSchema, canonicalName, err,
		)
	}
	if len(m.OutputSchema) > 0 && string(m.OutputSchema) != "null" {
		t.OutputSchema = json.RawMessage(append([]byte(nil), m.OutputSchema...))
	}
	if len(m.RequiredScopes) > 0 {
		if err := json.Unmarshal(m.RequiredScopes, &t.RequiredScopes); err != nil {
			return types.Tool{}, fmt.Errorf("failed to unmarshal required scopes for tool %s: %w", canonicalName, err)
		}
	}
	if m.CreditCost != nil {
		cost := *m.CreditCost
		t.CreditCost = &cost
	}
	if len(m.Annotations) > 0 {
		if err := json.Unmarshal(m.Annotations, &t.Annotations); err != nil {
			logger.Warn("failed to unmarshal tool annotations",
				zap.String("tool", canonicalName), zap.Error(err))
			t.Annotations = nil
		}
	}
	return t, nil
}

// cloneTool returns a deep copy of t, so that callers may keep or modify it freely.
func cloneTool(t types.Tool) types.Tool {
	out := t
	if t.InputSchema.Properties != nil {
		props := types.NewToolProperties()
		for p := t.InputSchema.Properties.Oldest(); p != nil; p = p.Next() {
			props.Set(p.Key, append(json.RawMessage(nil), p.Value...))
		}
		out.InputSchema.Properties = props
	}
	out.InputSchema.Required = cloneSlice(t.InputSchema.Required)
	out.OutputSchema = cloneSlice(t.OutputSchema)
	out.RequiredScopes = cloneSlice(t.RequiredScopes)
	if t.CreditCost != nil {
		cost := *t.CreditCost
		out.CreditCost = &cost
	}
	// Annotations, Defs and AdditionalProperties are never modified after a tool is indexed
	return out
}

func cloneSlice[S ~[]E, E any](s S) S {
	if s == nil {
		return nil
	}
	return append(S(nil), s...)
}
