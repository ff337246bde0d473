package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolInputSchemaPreservesPropertyOrder(t *testing.T) {
	t.Parallel()

	raw := `{"type":"object","properties":{"zeta":{"type":"string"},"alpha":{"type":"integer"},"mid":{"type":"boolean"}},"required":["zeta"]}`

	var schema ToolInputSchema
	require.NoError(t, json.Unmarshal([]byte(raw), &schema))
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, schema.PropertyNames())

	out, err := json.Marshal(schema)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
	assert.Less(t, strings.Index(string(out), `"zeta"`), strings.Index(string(out), `"alpha"`))
	assert.Less(t, strings.Index(string(out), `"alpha"`), strings.Index(string(out), `"mid"`))
}

func TestToolInputSchemaWithoutProperties(t *testing.T) {
	t.Parallel()

	var schema ToolInputSchema
	require.NoError(t, json.Unmarshal([]byte(`{"type":"object"}`), &schema))
	assert.Nil(t, schema.PropertyNames())

	out, err := json.Marshal(schema)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"object"}`, string(out))
}

func TestToolOptionalFieldsAreOmitted(t *testing.T) {
	t.Parallel()

	tool := Tool{Name: "t", Description: "d", InputSchema: ToolInputSchema{Type: "object"}}
	out, err := json.Marshal(tool)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	for _, key := range []string{"output_schema", "required_scopes", "credit_cost", "deprecated"} {
		_, present := m[key]
		assert.False(t, present, "expected %s to be absent", key)
	}

	cost := 0
	tool.CreditCost = &cost
	out, err = json.Marshal(tool)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"credit_cost":0`)
}

func TestAuthError(t *testing.T) {
	t.Parallel()

	err := NewAuthError("credentials_not_found", "Auth required", "svc", 401)
	assert.Equal(t, "Auth required", err.Error())

	wrapped := fmt.Errorf("tool failed: %w", err)
	var authErr *AuthError
	require.True(t, errors.As(wrapped, &authErr))

	out, jerr := json.Marshal(authErr.Details)
	require.NoError(t, jerr)
	assert.Equal(t,
		`{"error":"credentials_not_found","message":"Auth required","service":"svc","error_status":401}`,
		string(out),
	)
}

func TestValidateTransport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    McpServerTransport
		wantErr bool
	}{
		{"streamable_http", TransportStreamableHTTP, false},
		{"stdio", TransportStdio, false},
		{"sse", TransportSSE, false},
		{"", "", true},
		{"grpc", "", true},
	}
	for _, tt := range tests {
		got, err := ValidateTransport(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		assert.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got)
	}
}
