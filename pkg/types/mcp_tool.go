package types

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ToolProperties holds the parameter entries of an input schema in their declared order.
// Each value is the raw JSON schema of a single parameter.
type ToolProperties = orderedmap.OrderedMap[string, json.RawMessage]

// NewToolProperties returns an empty, ordered parameter set.
func NewToolProperties() *ToolProperties {
	return orderedmap.New[string, json.RawMessage]()
}

// ToolInputSchema defines the schema for the input parameters of a tool
type ToolInputSchema struct {
	Type       string          `json:"type"`
	Properties *ToolProperties `json:"properties,omitempty"`
	Required   []string        `json:"required,omitempty"`

	Defs                 map[string]any `json:"$defs,omitempty"`
	AdditionalProperties any            `json:"additionalProperties,omitempty"`
}

// PropertyNames returns the names of the schema's parameters in declaration order.
func (s ToolInputSchema) PropertyNames() []string {
	if s.Properties == nil {
		return nil
	}
	names := make([]string, 0, s.Properties.Len())
	for p := s.Properties.Oldest(); p != nil; p = p.Next() {
		names = append(names, p.Key)
	}
	return names
}

// Tool represents a tool exposed by toolgate, either proxied from an upstream MCP server or native.
//
// OutputSchema, RequiredScopes and CreditCost are optional.
// When they are unset they are omitted from the serialized descriptor entirely, because
// clients test for the presence of these fields rather than for empty values.
type Tool struct {
	Name        string          `json:"name"`
	Enabled     bool            `json:"enabled"`
	Description string          `json:"description"`
	InputSchema ToolInputSchema `json:"input_schema"`

	OutputSchema   json.RawMessage `json:"output_schema,omitempty"`
	RequiredScopes []string        `json:"required_scopes,omitempty"`
	CreditCost     *int            `json:"credit_cost,omitempty"`

	// Deprecated tools are hidden from tool discovery.
	Deprecated bool `json:"deprecated,omitempty"`

	Annotations map[string]any `json:"annotations,omitempty"`
}

// ToolInvokeRequest is the body of a tool invocation request made to the HTTP API.
type ToolInvokeRequest struct {
	Name  string         `json:"name"`
	Input map[string]any `json:"input,omitempty"`
}

// ToolInvokeResult represents the result of a Tool call.
// It is designed to be passed down to the end user.
type ToolInvokeResult struct {
	Meta    map[string]any `json:"_meta,omitempty"`
	IsError bool           `json:"isError,omitempty"`

	Content           []map[string]any `json:"content"`
	StructuredContent any              `json:"structuredContent,omitempty"`
}

// AuthErrorData describes an authentication or authorization failure that occurred inside a tool.
// It is delivered to the caller as ordinary tool output so that the caller can branch on Error
// (a machine-readable code) and ErrorStatus.
type AuthErrorData struct {
	Error       string `json:"error"`
	Message     string `json:"message"`
	Service     string `json:"service"`
	ErrorStatus int    `json:"error_status"`
}

// AuthError is returned by a tool when it cannot act on behalf of the caller
// because credentials are missing, expired or insufficient.
type AuthError struct {
	Details AuthErrorData
}

// NewAuthError creates an AuthError with the given details.
func NewAuthError(code, message, service string, status int) *AuthError {
	return &AuthError{
		Details: AuthErrorData{
			Error:       code,
			Message:     message,
			Service:     service,
			ErrorStatus: status,
		},
	}
}

func (e *AuthError) Error() string {
	return e.Details.Message
}
