package pipeline

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mcpjungle/toolgate/internal/mcpconv"
	"github.com/mcpjungle/toolgate/pkg/types"
	"go.uber.org/zap"
)

// NewMCPServer creates an MCP server whose tool listings and tool calls go through p.
// Tools must be added to it with Attach.
func NewMCPServer(p *Pipeline, name, version string, opts ...server.ServerOption) *server.MCPServer {
	base := []server.ServerOption{
		server.WithToolCapabilities(true),
		server.WithToolFilter(p.filterMCPTools),
		// the pipeline middleware is the outermost one, so it also shapes recovered panics
		server.WithToolHandlerMiddleware(p.ToolHandlerMiddleware),
		server.WithRecovery(),
	}
	return server.NewMCPServer(name, version, append(base, opts...)...)
}

// filterMCPTools is the mcp-go form of FilterCatalog, applied to every tools/list request.
func (p *Pipeline) filterMCPTools(ctx context.Context, tools []mcp.Tool) []mcp.Tool {
	raw := make([]types.Tool, 0, len(tools))
	for _, t := range tools {
		d, err := mcpconv.ToolFromMCP(t)
		if err != nil {
			p.logger.Error("hiding tool with an unreadable descriptor", zap.String("tool", t.Name), zap.Error(err))
			continue
		}
		raw = append(raw, d)
	}

	filtered := p.filterCatalog(ctx, raw)
	out := make([]mcp.Tool, 0, len(filtered))
	for _, d := range filtered {
		t, err := mcpconv.ToolToMCP(d)
		if err != nil {
			p.logger.Error("hiding tool that cannot be encoded", zap.String("tool", d.Name), zap.Error(err))
			continue
		}
		out = append(out, t)
	}
	return out
}

// ToolSync mirrors the registry's tools into the tool table of an MCP server.
// Its methods match the registry's tool addition and deletion callbacks.
type ToolSync struct {
	p      *Pipeline
	server *server.MCPServer
}

// Attach adds every tool of the registry to s and returns a ToolSync that keeps s up to date.
// The raw descriptors are registered; catalog filtering happens per request.
func (p *Pipeline) Attach(ctx context.Context, s *server.MCPServer) (*ToolSync, error) {
	tools, err := p.registry.ListRegisteredTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list registered tools: %w", err)
	}
	ts := &ToolSync{p: p, server: s}
	for _, t := range tools {
		if err := ts.Add(t); err != nil {
			p.logger.Error("failed to add tool to the MCP server", zap.String("tool", t.Name), zap.Error(err))
		}
	}
	return ts, nil
}

// Add adds or replaces a tool in the MCP server.
func (ts *ToolSync) Add(tool types.Tool) error {
	t, err := mcpconv.ToolToMCP(tool)
	if err != nil {
		return err
	}
	ts.server.AddTool(t, ts.p.invoke)
	return nil
}

// Delete removes tools from the MCP server.
func (ts *ToolSync) Delete(names ...string) {
	ts.server.DeleteTools(names...)
}
