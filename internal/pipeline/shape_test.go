package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mcpjungle/toolgate/internal/config"
	"github.com/mcpjungle/toolgate/internal/logging"
	"github.com/mcpjungle/toolgate/internal/telemetry"
	"github.com/mcpjungle/toolgate/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(t *testing.T, content []mcp.Content) []string {
	t.Helper()
	out := make([]string, 0, len(content))
	for _, c := range content {
		tc, ok := c.(mcp.TextContent)
		require.True(t, ok, "expected text content, got %T", c)
		out = append(out, tc.Text)
	}
	return out
}

func twoItems() []mcp.Content {
	return []mcp.Content{mcp.NewTextContent("Result 1"), mcp.NewTextContent("Result 2")}
}

func TestNewOutcome(t *testing.T) {
	content := twoItems()
	o := NewOutcome(content, nil)
	assert.Equal(t, OutcomeSuccess, o.Kind)
	assert.Equal(t, content, o.Content)

	authErr := types.NewAuthError("credentials_not_found", "Auth required", "svc", 401)
	o = NewOutcome(nil, fmt.Errorf("calling tool: %w", authErr))
	assert.Equal(t, OutcomeAuthFailure, o.Kind)
	assert.Equal(t, authErr.Details, o.Auth)

	boom := errors.New("Something went wrong")
	o = NewOutcome(content, boom)
	assert.Equal(t, OutcomeFailure, o.Kind)
	assert.Equal(t, boom, o.Err)
	assert.Nil(t, o.Content)
}

func TestShapeResultAuthFailureIsData(t *testing.T) {
	err := types.NewAuthError("credentials_not_found", "Auth required", "svc", 401)
	res := ShapeResult(NewOutcome(nil, err), config.Pipeline{AggregateToolCallResults: true}, nil)

	assert.False(t, res.IsError)
	body := texts(t, res.Content)
	require.Len(t, body, 1)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(body[0]), &parsed))
	assert.Equal(t, map[string]any{
		"error":        "credentials_not_found",
		"message":      "Auth required",
		"service":      "svc",
		"error_status": float64(401),
	}, parsed)
}

func TestShapeResultFailureIsError(t *testing.T) {
	res := ShapeResult(NewOutcome(nil, errors.New("Something went wrong")), config.Pipeline{}, nil)
	assert.True(t, res.IsError)
	assert.Equal(t, []string{"Something went wrong"}, texts(t, res.Content))
}

func TestShapeResultSuccess(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Pipeline
		content []mcp.Content
		want    []string
		policy  telemetry.Policy
		asJSON  bool
	}{
		{
			name:    "no options keeps items separate",
			cfg:     config.Pipeline{},
			content: twoItems(),
			want:    []string{"Result 1", "Result 2"},
		},
		{
			name:    "aggregation combines items",
			cfg:     config.Pipeline{AggregateToolCallResults: true},
			content: twoItems(),
			want:    []string{`[{"type":"text","text":"Result 1"},{"type":"text","text":"Result 2"}]`},
			policy:  telemetry.PolicyAggregated,
			asJSON:  true,
		},
		{
			name:    "aggregation leaves a single item alone",
			cfg:     config.Pipeline{AggregateToolCallResults: true},
			content: []mcp.Content{mcp.NewTextContent("only")},
			want:    []string{"only"},
		},
		{
			name:    "aggregation leaves empty content alone",
			cfg:     config.Pipeline{AggregateToolCallResults: true},
			content: nil,
			want:    []string{},
		},
		{
			name:    "external client with gummie id gets a default result",
			cfg:     config.Pipeline{ExternalClient: true, GummieID: "123"},
			content: nil,
			want:    []string{`{"message": "No result found"}`},
			policy:  telemetry.PolicyDefaultResponse,
		},
		{
			name:    "external client without gummie id gets empty content",
			cfg:     config.Pipeline{ExternalClient: true},
			content: []mcp.Content{},
			want:    []string{},
		},
		{
			name:    "gummie id without external client gets empty content",
			cfg:     config.Pipeline{GummieID: "123"},
			content: nil,
			want:    []string{},
		},
		{
			name:    "external client content passes the filter",
			cfg:     config.Pipeline{ExternalClient: true},
			content: []mcp.Content{mcp.NewTextContent("result")},
			want:    []string{"result"},
		},
	}
	filter := &ExternalContentFilter{Redactor: logging.NewRedactor(config.DefaultRedactDomain)}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, policy := shapeResult(NewOutcome(tt.content, nil), tt.cfg, filter)
			assert.False(t, res.IsError)
			assert.NotNil(t, res.Content)
			got := texts(t, res.Content)
			if tt.asJSON {
				require.Len(t, got, len(tt.want))
				for i := range got {
					assert.JSONEq(t, tt.want[i], got[i])
				}
			} else {
				assert.Equal(t, tt.want, got)
			}
			assert.Equal(t, tt.policy, policy)
		})
	}
}

func TestShapeResultAggregatedRoundTrip(t *testing.T) {
	res := ShapeResult(NewOutcome(twoItems(), nil), config.Pipeline{AggregateToolCallResults: true}, nil)
	body := texts(t, res.Content)
	require.Len(t, body, 1)

	var parsed []map[string]any
	require.NoError(t, json.Unmarshal([]byte(body[0]), &parsed))
	require.Len(t, parsed, 2)
	assert.Equal(t, "Result 1", parsed[0]["text"])
	assert.Equal(t, "Result 2", parsed[1]["text"])
}

func TestShapeResultFiltersBeforeDefaulting(t *testing.T) {
	dropAll := ContentFilterFunc(func([]mcp.Content) []mcp.Content { return nil })
	cfg := config.Pipeline{ExternalClient: true, GummieID: "g-1", AggregateToolCallResults: true}

	res := ShapeResult(NewOutcome(twoItems(), nil), cfg, dropAll)
	assert.Equal(t, []string{NoResultFoundText}, texts(t, res.Content))
}

func TestShapeResultFilterOnlyForExternalClients(t *testing.T) {
	called := false
	spy := ContentFilterFunc(func(c []mcp.Content) []mcp.Content {
		called = true
		return c
	})

	ShapeResult(NewOutcome(twoItems(), nil), config.Pipeline{}, spy)
	assert.False(t, called)

	ShapeResult(NewOutcome(twoItems(), nil), config.Pipeline{ExternalClient: true}, spy)
	assert.True(t, called)
}
