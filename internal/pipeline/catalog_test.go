package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/mcpjungle/toolgate/internal/config"
	"github.com/mcpjungle/toolgate/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func schema(t *testing.T, raw string) types.ToolInputSchema {
	t.Helper()
	var s types.ToolInputSchema
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	return s
}

func names(tools []types.Tool) []string {
	out := make([]string, len(tools))
	for i, t := range tools {
		out[i] = t.Name
	}
	return out
}

func sampleCatalog(t *testing.T) []types.Tool {
	cost := 10
	return []types.Tool{
		{Name: "active", Description: "Active", InputSchema: schema(t, `{"type":"object","properties":{}}`)},
		{Name: "old", Description: "Old", Deprecated: true, InputSchema: schema(t, `{"type":"object"}`)},
		{Name: "blocked", Description: "Blocked", InputSchema: schema(t, `{"type":"object"}`)},
		{
			Name:        "rich",
			Description: "Rich",
			InputSchema: schema(t, `{"type":"object","properties":{
				"active_param":{"type":"string"},
				"old_param":{"type":"string","deprecated":true},
				"legacy_param":{"type":"string","is_deprecated":true},
				"last":{"type":"integer","deprecated":false}
			},"required":["active_param","old_param"]}`),
			OutputSchema:   json.RawMessage(`{"type":"object"}`),
			RequiredScopes: []string{"read"},
			CreditCost:     &cost,
		},
	}
}

func TestFilterCatalogDropsDeprecatedTools(t *testing.T) {
	got := FilterCatalog(sampleCatalog(t), config.Pipeline{})
	assert.Equal(t, []string{"active", "blocked", "rich"}, names(got))
}

func TestFilterCatalogDropsRestrictedTools(t *testing.T) {
	got := FilterCatalog(sampleCatalog(t), config.Pipeline{RestrictedTools: []string{"blocked"}})
	assert.Equal(t, []string{"active", "rich"}, names(got))
}

func TestFilterCatalogNoRestrictionsAllowsAll(t *testing.T) {
	raw := []types.Tool{
		{Name: "tool1", InputSchema: schema(t, `{"type":"object","properties":{}}`)},
		{Name: "tool2", InputSchema: schema(t, `{"type":"object","properties":{}}`)},
	}
	assert.Equal(t, []string{"tool1", "tool2"}, names(FilterCatalog(raw, config.Pipeline{})))
}

func TestFilterCatalogDropsDeprecatedParams(t *testing.T) {
	got := FilterCatalog(sampleCatalog(t), config.Pipeline{})
	rich := got[2]

	assert.Equal(t, []string{"active_param", "last"}, rich.InputSchema.PropertyNames())
	assert.Equal(t, []string{"active_param"}, rich.InputSchema.Required)

	out, err := json.Marshal(rich.InputSchema)
	require.NoError(t, err)
	assert.Equal(t,
		`{"type":"object","properties":{"active_param":{"type":"string"},"last":{"type":"integer","deprecated":false}},"required":["active_param"]}`,
		string(out),
	)
}

func TestFilterCatalogExternalClientRemovesInternalFields(t *testing.T) {
	got := FilterCatalog(sampleCatalog(t), config.Pipeline{ExternalClient: true})
	require.Len(t, got, 3)

	for _, tool := range got {
		assert.Nil(t, tool.OutputSchema)
		assert.Nil(t, tool.RequiredScopes)
		assert.Nil(t, tool.CreditCost)

		out, err := json.Marshal(tool)
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, json.Unmarshal(out, &m))
		for _, key := range []string{"output_schema", "required_scopes", "credit_cost"} {
			assert.NotContains(t, m, key)
		}
	}
}

func TestFilterCatalogKeepsInternalFieldsForFirstPartyClients(t *testing.T) {
	got := FilterCatalog(sampleCatalog(t), config.Pipeline{})
	rich := got[2]
	assert.JSONEq(t, `{"type":"object"}`, string(rich.OutputSchema))
	assert.Equal(t, []string{"read"}, rich.RequiredScopes)
	require.NotNil(t, rich.CreditCost)
	assert.Equal(t, 10, *rich.CreditCost)
}

func TestFilterCatalogDoesNotModifyInput(t *testing.T) {
	raw := sampleCatalog(t)
	before, err := json.Marshal(raw)
	require.NoError(t, err)

	_ = FilterCatalog(raw, config.Pipeline{ExternalClient: true, RestrictedTools: []string{"blocked"}})

	after, err := json.Marshal(raw)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
	assert.Equal(t, []string{"active_param", "old_param", "legacy_param", "last"}, raw[3].InputSchema.PropertyNames())
}

func TestFilterCatalogIsIdempotent(t *testing.T) {
	configs := []config.Pipeline{
		{},
		{ExternalClient: true},
		{RestrictedTools: []string{"blocked", "rich"}},
	}
	for _, cfg := range configs {
		once := FilterCatalog(sampleCatalog(t), cfg)
		twice := FilterCatalog(once, cfg)

		a, err := json.Marshal(once)
		require.NoError(t, err)
		b, err := json.Marshal(twice)
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b))
	}
}

func TestFilterCatalogEmpty(t *testing.T) {
	got := FilterCatalog(nil, config.Pipeline{})
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got = FilterCatalog(sampleCatalog(t), config.Pipeline{RestrictedTools: []string{"active", "blocked", "rich"}})
	assert.Empty(t, got)
}

func TestIsDeprecatedParam(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{`{"type":"string"}`, false},
		{`{"type":"string","deprecated":true}`, true},
		{`{"type":"string","is_deprecated":true}`, true},
		{`{"type":"string","deprecated":false}`, false},
		{`true`, false},
		{`not json`, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isDeprecatedParam(json.RawMessage(tt.raw)), tt.raw)
	}
}
