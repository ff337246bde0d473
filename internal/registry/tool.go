package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mcpjungle/toolgate/internal/mcpconv"
	"github.com/mcpjungle/toolgate/internal/model"
	"github.com/mcpjungle/toolgate/internal/telemetry"
	"github.com/mcpjungle/toolgate/pkg/types"
	"go.uber.org/zap"
)

// ToolAdditionCallback is called whenever a tool becomes available (registered or re-enabled).
type ToolAdditionCallback func(tool types.Tool) error

// ToolDeletionCallback is called whenever one or more tools stop being available
// (deregistered or disabled). It receives the canonical tool names.
type ToolDeletionCallback func(toolNames ...string)

// ToolError reports a tool call that completed but whose result was flagged as an error
// by the upstream server. Its message is the text the server returned.
type ToolError struct {
	Message string
}

func (e *ToolError) Error() string {
	return e.Message
}

func newToolError(content []mcp.Content) *ToolError {
	var parts []string
	for _, c := range content {
		if text, ok := mcpconv.TextOf(c); ok && text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return &ToolError{Message: "tool call failed without an error message"}
	}
	return &ToolError{Message: strings.Join(parts, "\n")}
}

// SetToolAdditionCallback registers the function called when a tool is added.
func (r *Registry) SetToolAdditionCallback(callback ToolAdditionCallback) {
	r.toolAdditionCallback = callback
}

// SetToolDeletionCallback registers the function called when tools are removed.
func (r *Registry) SetToolDeletionCallback(callback ToolDeletionCallback) {
	r.toolDeletionCallback = callback
}

// ListRegisteredTools returns every available tool: the enabled upstream tools under their
// canonical names followed by the native tools, sorted by name.
// Each call returns freshly built values that the caller may keep or modify.
func (r *Registry) ListRegisteredTools(_ context.Context) ([]types.Tool, error) {
	r.mu.RLock()
	tools := make([]types.Tool, 0, len(r.tools)+len(r.native))
	for _, t := range r.tools {
		tools = append(tools, cloneTool(t))
	}
	for _, n := range r.native {
		tools = append(tools, cloneTool(n.tool))
	}
	r.mu.RUnlock()

	slices.SortFunc(tools, func(a, b types.Tool) int {
		return strings.Compare(a.Name, b.Name)
	})
	return tools, nil
}

// GetTool returns an available tool by its canonical name.
func (r *Registry) GetTool(name string) (types.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.tools[name]; ok {
		return cloneTool(t), true
	}
	if n, ok := r.native[name]; ok {
		return cloneTool(n.tool), true
	}
	return types.Tool{}, false
}

// InvokeTool calls a tool and returns the content it produced.
// A result flagged as an error by the upstream server is returned as a *ToolError.
// Native tools may return a *types.AuthError.
func (r *Registry) InvokeTool(ctx context.Context, name string, args map[string]any) ([]mcp.Content, error) {
	started := time.Now()
	outcome := telemetry.ToolCallOutcomeError

	serverName, toolName, upstream := splitServerToolName(name)
	if !upstream {
		serverName, toolName = NativeServerName, name
	}
	defer func() {
		r.metrics.RecordToolCall(ctx, serverName, toolName, outcome, time.Since(started))
	}()

	var (
		content []mcp.Content
		err     error
	)
	if upstream {
		content, err = r.invokeUpstream(ctx, name, serverName, toolName, args)
	} else {
		content, err = r.invokeNative(ctx, name, args)
	}

	var authErr *types.AuthError
	switch {
	case err == nil:
		outcome = telemetry.ToolCallOutcomeSuccess
	case errors.As(err, &authErr):
		outcome = telemetry.ToolCallOutcomeAuthError
	}
	return content, err
}

func (r *Registry) invokeUpstream(
	ctx context.Context, name, serverName, toolName string, args map[string]any,
) ([]mcp.Content, error) {
	if _, ok := r.GetTool(name); !ok {
		return nil, fmt.Errorf("tool %s not found", name)
	}

	s, err := r.GetServer(serverName)
	if err != nil {
		return nil, fmt.Errorf("failed to get details about MCP server %s: %w", serverName, err)
	}

	c, err := r.dial(ctx, s)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	req := mcp.CallToolRequest{}
	req.Params.Name = toolName
	req.Params.Arguments = args

	resp, err := c.CallTool(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to call tool %s on MCP server %s: %w", toolName, serverName, err)
	}
	if resp.IsError {
		return nil, newToolError(resp.Content)
	}
	return resp.Content, nil
}

// EnableTools enables one or more tools.
// If the entity is a canonical tool name, only that tool is enabled.
// If the entity is a server name, all tools of that server are enabled.
// It returns the canonical names of the tools that are now enabled.
func (r *Registry) EnableTools(entity string) ([]string, error) {
	return r.setToolsEnabled(entity, true)
}

// DisableTools disables one or more tools, the same way EnableTools enables them.
func (r *Registry) DisableTools(entity string) ([]string, error) {
	return r.setToolsEnabled(entity, false)
}

func (r *Registry) setToolsEnabled(entity string, enabled bool) ([]string, error) {
	serverName, toolName, isTool := splitServerToolName(entity)
	if !isTool {
		serverName = entity
	}

	s, err := r.GetServer(serverName)
	if err != nil {
		return nil, err
	}

	query := r.db.Where("server_id = ?", s.ID)
	if isTool {
		query = query.Where("name = ?", toolName)
	}
	var tools []model.Tool
	if err := query.Find(&tools).Error; err != nil {
		return nil, fmt.Errorf("failed to get tools for %s: %w", entity, err)
	}
	if isTool && len(tools) == 0 {
		return nil, fmt.Errorf("tool %s not found", entity)
	}

	var affected []string
	for i := range tools {
		canonical := mergeServerToolNames(s.Name, tools[i].Name)
		if tools[i].Enabled == enabled {
			if isTool {
				// no change needed
				affected = append(affected, canonical)
			}
			continue
		}

		tools[i].Enabled = enabled
		if err := r.db.Save(&tools[i]).Error; err != nil {
			return nil, fmt.Errorf("failed to set tool %s enabled=%t: %w", canonical, enabled, err)
		}

		if enabled {
			t, err := toolTypeFromModel(&tools[i], canonical, r.logger)
			if err != nil {
				return nil, fmt.Errorf("failed to load tool %s: %w", canonical, err)
			}
			r.addTool(t)
		} else {
			r.removeTools(canonical)
		}
		affected = append(affected, canonical)
	}
	return affected, nil
}

// registerServerTools fetches all tools from an MCP server and stores them.
// A tool that cannot be converted or persisted is logged and skipped.
func (r *Registry) registerServerTools(ctx context.Context, s *model.McpServer, c *client.Client) error {
	resp, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return fmt.Errorf("failed to fetch tools from MCP server %s: %w", s.Name, err)
	}

	for _, tool := range resp.Tools {
		canonical := mergeServerToolNames(s.Name, tool.GetName())
		logger := r.logger.With(zap.String("tool", canonical))

		t, err := mcpconv.ToolFromMCP(tool)
		if err != nil {
			logger.Error("failed to read tool descriptor", zap.Error(err))
			continue
		}
		m, err := toolModelFromType(s.ID, t)
		if err != nil {
			logger.Error("failed to prepare tool for storage", zap.Error(err))
			continue
		}
		if err := r.db.Create(m).Error; err != nil {
			logger.Error("failed to register tool in DB", zap.Error(err))
			continue
		}

		t.Name = canonical
		r.addTool(t)
	}
	return nil
}

// deregisterServerTools deletes all tools of an MCP server from the DB and the index.
func (r *Registry) deregisterServerTools(s *model.McpServer) error {
	var tools []model.Tool
	if err := r.db.Where("server_id = ?", s.ID).Find(&tools).Error; err != nil {
		return fmt.Errorf("failed to list tools for server %s: %w", s.Name, err)
	}
	if err := r.db.Unscoped().Where("server_id = ?", s.ID).Delete(&model.Tool{}).Error; err != nil {
		return fmt.Errorf("failed to delete tools for server %s: %w", s.Name, err)
	}

	names := make([]string, 0, len(tools))
	for _, t := range tools {
		if t.Enabled {
			names = append(names, mergeServerToolNames(s.Name, t.Name))
		}
	}
	r.removeTools(names...)
	return nil
}

// addTool indexes an upstream tool and notifies the addition callback.
// The callback is best-effort: a failure is logged, the tool stays registered.
func (r *Registry) addTool(t types.Tool) {
	r.mu.Lock()
	r.tools[t.Name] = t
	r.mu.Unlock()

	if err := r.toolAdditionCallback(cloneTool(t)); err != nil {
		r.logger.Error("tool addition callback failed", zap.String("tool", t.Name), zap.Error(err))
	}
}

// removeTools drops upstream tools from the index and notifies the deletion callback.
func (r *Registry) removeTools(names ...string) {
	if len(names) == 0 {
		return
	}
	r.mu.Lock()
	for _, name := range names {
		delete(r.tools, name)
	}
	r.mu.Unlock()

	r.toolDeletionCallback(names...)
}
