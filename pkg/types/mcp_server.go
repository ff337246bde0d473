package types

import "fmt"

// McpServerTransport represents the transport protocol used by an upstream MCP server.
// All transport types supported by toolgate are defined in this file with this type.
type McpServerTransport string

const (
	TransportStdio          McpServerTransport = "stdio"
	TransportStreamableHTTP McpServerTransport = "streamable_http"
	TransportSSE            McpServerTransport = "sse"
)

// McpServer represents an upstream MCP server registered in toolgate.
type McpServer struct {
	Name        string `json:"name"`
	Transport   string `json:"transport"`
	Description string `json:"description"`

	URL string `json:"url,omitempty"`

	Command string   `json:"command,omitempty"`
	Args    []string `json:"args,omitempty"`
}

// RegisterServerInput is the input structure for registering a new upstream MCP server with toolgate.
// It is also the basis for the JSON configuration file accepted by `toolgate register`.
type RegisterServerInput struct {
	// Name (mandatory) is the unique name of the upstream MCP server
	Name string `json:"name"`

	// Transport (mandatory) is the transport protocol used by the MCP server.
	// valid values are "stdio", "streamable_http", and "sse".
	Transport string `json:"transport"`

	Description string `json:"description"`

	// URL is mandatory when transport is streamable_http or sse.
	URL string `json:"url,omitempty"`

	// BearerToken is an optional static token sent to remote MCP servers.
	// It is ignored for stdio servers.
	BearerToken string `json:"bearer_token,omitempty"`

	// Headers are forwarded to streamable_http servers.
	// A custom Authorization header takes precedence over BearerToken.
	Headers map[string]string `json:"headers,omitempty"`

	// Command, Args and Env describe how to run a stdio MCP server.
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// ServerMetadata represents the server metadata response
type ServerMetadata struct {
	Version string `json:"version"`
}

// EnableDisableToolsInput is the body of the tool enable/disable endpoints.
// Entity is either a canonical tool name or a server name.
type EnableDisableToolsInput struct {
	Entity string `json:"entity"`
}

// EnableDisableToolsResult lists the canonical names of the tools whose state was changed.
type EnableDisableToolsResult struct {
	ToolsAffected []string `json:"tools_affected"`
}

// ValidateTransport validates the input string and returns the corresponding McpServerTransport.
// It returns an error if the input is invalid or empty.
func ValidateTransport(input string) (McpServerTransport, error) {
	errMsgExt := fmt.Sprintf(
		"(acceptable values: '%s', '%s', '%s')", TransportStreamableHTTP, TransportStdio, TransportSSE,
	)

	switch input {
	case string(TransportStreamableHTTP):
		return TransportStreamableHTTP, nil
	case string(TransportStdio):
		return TransportStdio, nil
	case string(TransportSSE):
		return TransportSSE, nil
	case "":
		return "", fmt.Errorf("transport is required %s", errMsgExt)
	default:
		return "", fmt.Errorf("unsupported transport type: %s %s", input, errMsgExt)
	}
}
