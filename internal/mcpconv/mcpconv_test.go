package mcpconv

import (
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mcpjungle/toolgate/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolFromMCPReadsMeta(t *testing.T) {
	tool := mcp.Tool{
		Name:           "commit",
		Description:    "Create a commit",
		RawInputSchema: json.RawMessage(`{"type":"object","properties":{"msg":{"type":"string"},"amend":{"type":"boolean"}},"required":["msg"]}`),
		RawOutputSchema: json.RawMessage(`{"type":"object"}`),
		Meta: &mcp.Meta{AdditionalFields: map[string]any{
			MetaRequiredScopes: []any{"repo", "write"},
			MetaCreditCost:     float64(3),
		}},
	}

	got, err := ToolFromMCP(tool)
	require.NoError(t, err)

	assert.Equal(t, "commit", got.Name)
	assert.True(t, got.Enabled)
	assert.Equal(t, []string{"msg", "amend"}, got.InputSchema.PropertyNames())
	assert.Equal(t, []string{"msg"}, got.InputSchema.Required)
	assert.JSONEq(t, `{"type":"object"}`, string(got.OutputSchema))
	assert.Equal(t, []string{"repo", "write"}, got.RequiredScopes)
	require.NotNil(t, got.CreditCost)
	assert.Equal(t, 3, *got.CreditCost)
	assert.False(t, got.Deprecated)
}

func TestToolFromMCPDeprecatedSpellings(t *testing.T) {
	for _, key := range []string{MetaDeprecated, MetaLegacyDeprecated} {
		t.Run(key, func(t *testing.T) {
			tool := mcp.NewTool("old")
			tool.Meta = &mcp.Meta{AdditionalFields: map[string]any{key: true}}

			got, err := ToolFromMCP(tool)
			require.NoError(t, err)
			assert.True(t, got.Deprecated)
		})
	}
}

func TestToolFromMCPInvalidMeta(t *testing.T) {
	tool := mcp.NewTool("bad")
	tool.Meta = &mcp.Meta{AdditionalFields: map[string]any{MetaCreditCost: "lots"}}

	_, err := ToolFromMCP(tool)
	assert.ErrorContains(t, err, "creditCost")
}

func TestToolToMCPOmitsUnsetFields(t *testing.T) {
	props := types.NewToolProperties()
	props.Set("b", json.RawMessage(`{"type":"string"}`))
	props.Set("a", json.RawMessage(`{"type":"string"}`))

	got, err := ToolToMCP(types.Tool{
		Name:        "search",
		Description: "Search",
		InputSchema: types.ToolInputSchema{Type: "object", Properties: props},
	})
	require.NoError(t, err)
	assert.Nil(t, got.Meta)
	assert.Empty(t, got.RawOutputSchema)
	assert.Equal(t, `{"type":"object","properties":{"b":{"type":"string"},"a":{"type":"string"}}}`, string(got.RawInputSchema))
}

func TestToolRoundTrip(t *testing.T) {
	cost := 5
	in := types.Tool{
		Name:           "deploy",
		Enabled:        true,
		Description:    "Deploy",
		InputSchema:    types.ToolInputSchema{Type: "object"},
		OutputSchema:   json.RawMessage(`{"type":"object","properties":{"id":{"type":"string"}}}`),
		RequiredScopes: []string{"deploy"},
		CreditCost:     &cost,
		Deprecated:     true,
		Annotations:    map[string]any{"title": "Deploy", "destructiveHint": true},
	}

	m, err := ToolToMCP(in)
	require.NoError(t, err)
	assert.Equal(t, "Deploy", m.Annotations.Title)
	require.NotNil(t, m.Annotations.DestructiveHint)
	assert.True(t, *m.Annotations.DestructiveHint)

	out, err := ToolFromMCP(m)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestContentToMaps(t *testing.T) {
	got, err := ContentToMaps([]mcp.Content{
		mcp.NewTextContent("hello"),
		mcp.NewImageContent("aGk=", "image/png"),
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "text", got[0]["type"])
	assert.Equal(t, "hello", got[0]["text"])
	assert.Equal(t, "image", got[1]["type"])
	assert.Equal(t, "image/png", got[1]["mimeType"])

	empty, err := ContentToMaps(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestTextOf(t *testing.T) {
	text, ok := TextOf(mcp.NewTextContent("by value"))
	assert.True(t, ok)
	assert.Equal(t, "by value", text)

	text, ok = TextOf(&mcp.TextContent{Type: "text", Text: "by pointer"})
	assert.True(t, ok)
	assert.Equal(t, "by pointer", text)

	_, ok = TextOf(mcp.NewImageContent("aGk=", "image/png"))
	assert.False(t, ok)
}
