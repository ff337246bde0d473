package model

import (
	"encoding/json"
	"errors"

	"github.com/mcpjungle/toolgate/pkg/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StreamableHTTPConfig is the connection configuration of a streamable HTTP upstream.
type StreamableHTTPConfig struct {
	// URL must be a valid http/https URL.
	URL string `json:"url"`

	// BearerToken, if present, is sent in the Authorization header of every request.
	BearerToken string `json:"bearer_token,omitempty"`

	// Headers are optional custom HTTP headers forwarded to the MCP server.
	Headers map[string]string `json:"headers,omitempty"`
}

// StdioConfig is the configuration of an upstream that runs as a local sub-process.
type StdioConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// SSEConfig is the connection configuration of an SSE upstream.
type SSEConfig struct {
	URL         string `json:"url"`
	BearerToken string `json:"bearer_token,omitempty"`
}

// McpServer represents an upstream MCP server registered in toolgate
type McpServer struct {
	gorm.Model

	Name      string                   `json:"name" gorm:"uniqueIndex;not null"`
	Transport types.McpServerTransport `json:"transport" gorm:"type:varchar(30);not null"`

	Description string `json:"description"`

	// Config holds the JSON form of StreamableHTTPConfig, StdioConfig or SSEConfig,
	// depending on Transport.
	Config datatypes.JSON `json:"config" gorm:"type:jsonb;not null"`
}

func newServer(name, description string, transport types.McpServerTransport, config any) (*McpServer, error) {
	configJSON, err := json.Marshal(config)
	if err != nil {
		return nil, err
	}
	return &McpServer{
		Name:        name,
		Description: description,
		Transport:   transport,
		Config:      configJSON,
	}, nil
}

// NewStreamableHTTPServer creates a new MCP server with streamable HTTP transport configuration.
func NewStreamableHTTPServer(name, description, url, bearerToken string, headers map[string]string) (*McpServer, error) {
	if url == "" {
		return nil, errors.New("url is required for streamable HTTP transport")
	}
	return newServer(name, description, types.TransportStreamableHTTP, StreamableHTTPConfig{
		URL:         url,
		BearerToken: bearerToken,
		Headers:     headers,
	})
}

// NewStdioServer creates a new MCP server with stdio transport configuration.
func NewStdioServer(name, description, command string, args []string, env map[string]string) (*McpServer, error) {
	if command == "" {
		return nil, errors.New("command is required for stdio transport")
	}
	return newServer(name, description, types.TransportStdio, StdioConfig{
		Command: command,
		Args:    args,
		Env:     env,
	})
}

// NewSSEServer creates a new MCP server with SSE transport configuration.
func NewSSEServer(name, description, url, bearerToken string) (*McpServer, error) {
	if url == "" {
		return nil, errors.New("url is required for SSE transport")
	}
	return newServer(name, description, types.TransportSSE, SSEConfig{
		URL:         url,
		BearerToken: bearerToken,
	})
}

// NewServerFromInput builds a server model from an API registration request.
func NewServerFromInput(input *types.RegisterServerInput) (*McpServer, error) {
	transport, err := types.ValidateTransport(input.Transport)
	if err != nil {
		return nil, err
	}
	switch transport {
	case types.TransportStreamableHTTP:
		return NewStreamableHTTPServer(input.Name, input.Description, input.URL, input.BearerToken, input.Headers)
	case types.TransportStdio:
		return NewStdioServer(input.Name, input.Description, input.Command, input.Args, input.Env)
	default:
		return NewSSEServer(input.Name, input.Description, input.URL, input.BearerToken)
	}
}

// GetStreamableHTTPConfig returns the configuration if this is a streamable HTTP server
func (s *McpServer) GetStreamableHTTPConfig() (*StreamableHTTPConfig, error) {
	if s.Transport != types.TransportStreamableHTTP {
		return nil, errors.New("server is not a streamable HTTP transport type")
	}
	var config StreamableHTTPConfig
	if err := json.Unmarshal(s.Config, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

// GetStdioConfig returns the configuration if this is a stdio server
func (s *McpServer) GetStdioConfig() (*StdioConfig, error) {
	if s.Transport != types.TransportStdio {
		return nil, errors.New("server is not a stdio transport type")
	}
	var config StdioConfig
	if err := json.Unmarshal(s.Config, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

// GetSSEConfig returns the configuration if this is an SSE server
func (s *McpServer) GetSSEConfig() (*SSEConfig, error) {
	if s.Transport != types.TransportSSE {
		return nil, errors.New("server is not a SSE transport type")
	}
	var config SSEConfig
	if err := json.Unmarshal(s.Config, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

// ToType converts the model into its API representation. Secrets are never included.
func (s *McpServer) ToType() (*types.McpServer, error) {
	out := &types.McpServer{
		Name:        s.Name,
		Transport:   string(s.Transport),
		Description: s.Description,
	}
	switch s.Transport {
	case types.TransportStreamableHTTP:
		conf, err := s.GetStreamableHTTPConfig()
		if err != nil {
			return nil, err
		}
		out.URL = conf.URL
	case types.TransportSSE:
		conf, err := s.GetSSEConfig()
		if err != nil {
			return nil, err
		}
		out.URL = conf.URL
	case types.TransportStdio:
		conf, err := s.GetStdioConfig()
		if err != nil {
			return nil, err
		}
		out.Command = conf.Command
		out.Args = conf.Args
	}
	return out, nil
}
