package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mcpjungle/toolgate/internal/model"
	"github.com/mcpjungle/toolgate/pkg/types"
	"github.com/mcpjungle/toolgate/pkg/version"
	"go.uber.org/zap"
)

// upstreamDialer opens an initialized client session with an upstream MCP server.
type upstreamDialer func(ctx context.Context, s *model.McpServer) (*client.Client, error)

func clientInfo(suffix string) mcp.Implementation {
	return mcp.Implementation{
		Name:    "toolgate client for " + suffix,
		Version: version.GetVersion(),
	}
}

// prepareSHTTPClientOptions prepares the http headers for a streamable HTTP client.
// A custom Authorization header takes precedence over the bearer token.
func (r *Registry) prepareSHTTPClientOptions(serverName string, conf *model.StreamableHTTPConfig) []transport.StreamableHTTPCOption {
	headers := make(map[string]string, len(conf.Headers)+1)
	for k, v := range conf.Headers {
		headers[k] = v
	}
	if conf.BearerToken != "" {
		if _, ok := headers["Authorization"]; ok {
			r.logger.Info("custom Authorization header will be used, bearer_token ignored",
				zap.String("server", serverName))
		} else {
			headers["Authorization"] = "Bearer " + conf.BearerToken
		}
	}
	if len(headers) == 0 {
		return nil
	}
	return []transport.StreamableHTTPCOption{transport.WithHTTPHeaders(headers)}
}

func (r *Registry) initialize(ctx context.Context, c *client.Client, info mcp.Implementation) error {
	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = info
	req.Params.Capabilities = mcp.ClientCapabilities{}

	initCtx, cancel := context.WithTimeout(ctx, r.initReqTimeout)
	defer cancel()

	_, err := c.Initialize(initCtx, req)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("initialization request to MCP server timed out after %s", r.initReqTimeout)
	}
	return err
}

func (r *Registry) connectStreamableHTTP(ctx context.Context, s *model.McpServer) (*client.Client, error) {
	conf, err := s.GetStreamableHTTPConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get streamable HTTP config for MCP server %s: %w", s.Name, err)
	}

	c, err := client.NewStreamableHttpClient(conf.URL, r.prepareSHTTPClientOptions(s.Name, conf)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create streamable HTTP client for MCP server: %w", err)
	}

	if err := r.initialize(ctx, c, clientInfo(conf.URL)); err != nil {
		_ = c.Close()
		if errors.Is(err, syscall.ECONNREFUSED) && isLoopbackURL(conf.URL) {
			return nil, fmt.Errorf(
				"connection to the MCP server %s was refused. "+
					"If toolgate is running inside Docker, use 'host.docker.internal' as your MCP server's hostname",
				conf.URL,
			)
		}
		return nil, fmt.Errorf("failed to initialize connection with MCP server: %w", err)
	}
	return c, nil
}

// captureStdioServerStderr copies the stderr output of a stdio MCP server into the toolgate log.
func (r *Registry) captureStdioServerStderr(name string, c *client.Client) {
	stdio, ok := c.GetTransport().(*transport.Stdio)
	if !ok {
		return
	}
	logger := r.logger.With(zap.String("server", name))

	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := stdio.Stderr().Read(buf)
			if n > 0 {
				logger.Info("upstream stderr", zap.ByteString("output", buf[:n]))
			}
			if err != nil {
				if err == io.EOF || errors.Is(err, os.ErrClosed) {
					logger.Debug("upstream process has exited")
				} else {
					logger.Warn("failed to read upstream stderr", zap.Error(err))
				}
				return
			}
		}
	}()
}

// connectStdio spawns the stdio server as a sub-process.
func (r *Registry) connectStdio(ctx context.Context, s *model.McpServer) (*client.Client, error) {
	conf, err := s.GetStdioConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdio config for MCP server %s: %w", s.Name, err)
	}

	env := make([]string, 0, len(conf.Env))
	for k, v := range conf.Env {
		env = append(env, k+"="+v)
	}

	c, err := client.NewStdioMCPClient(conf.Command, env, conf.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create stdio client for MCP server: %w", err)
	}
	r.captureStdioServerStderr(s.Name, c)

	if err := r.initialize(ctx, c, clientInfo("stdio")); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize connection with MCP server: %w", err)
	}
	return c, nil
}

func (r *Registry) connectSSE(ctx context.Context, s *model.McpServer) (*client.Client, error) {
	conf, err := s.GetSSEConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get SSE transport config for MCP server %s: %w", s.Name, err)
	}

	var opts []transport.ClientOption
	if conf.BearerToken != "" {
		opts = append(opts, transport.WithHeaders(map[string]string{
			"Authorization": "Bearer " + conf.BearerToken,
		}))
	}

	c, err := client.NewSSEMCPClient(conf.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSE client for MCP server: %w", err)
	}
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start SSE transport for MCP server: %w", err)
	}
	if err := r.initialize(ctx, c, clientInfo(conf.URL)); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("client failed to initialize connection with SSE MCP server: %w", err)
	}
	return c, nil
}

// dialUpstream opens a new session with the upstream server.
// Stdio servers get a new sub-process per session.
func (r *Registry) dialUpstream(ctx context.Context, s *model.McpServer) (*client.Client, error) {
	var (
		c   *client.Client
		err error
	)
	switch s.Transport {
	case types.TransportStreamableHTTP:
		c, err = r.connectStreamableHTTP(ctx, s)
	case types.TransportSSE:
		c, err = r.connectSSE(ctx, s)
	case types.TransportStdio:
		c, err = r.connectStdio(ctx, s)
	default:
		return nil, fmt.Errorf("unsupported transport %q for MCP server %s", s.Transport, s.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s MCP server %s: %w", s.Transport, s.Name, err)
	}
	return c, nil
}

// defaultInitReqTimeout bounds the initialization handshake with an upstream server.
const defaultInitReqTimeout = 10 * time.Second
