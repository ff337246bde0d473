package registry

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mcpjungle/toolgate/pkg/types"
	"go.uber.org/zap"
)

// NativeServerName labels native tools in metrics and logs.
const NativeServerName = "toolgate"

// NativeToolFunc implements an in-process tool.
// It may return a *types.AuthError when it cannot act for the caller.
type NativeToolFunc func(ctx context.Context, args map[string]any) ([]mcp.Content, error)

type nativeTool struct {
	tool    types.Tool
	handler NativeToolFunc
}

// RegisterNativeTool makes an in-process tool available under tool.Name.
// Native tool names must not contain the server/tool separator.
func (r *Registry) RegisterNativeTool(tool types.Tool, handler NativeToolFunc) error {
	if err := validateNativeToolName(tool.Name); err != nil {
		return err
	}
	if handler == nil {
		return fmt.Errorf("native tool %s has no handler", tool.Name)
	}
	if tool.InputSchema.Type == "" {
		tool.InputSchema.Type = "object"
	}
	tool.Enabled = true
	tool = cloneTool(tool)

	r.mu.Lock()
	if _, exists := r.native[tool.Name]; exists {
		r.mu.Unlock()
		return fmt.Errorf("native tool %s is already registered", tool.Name)
	}
	r.native[tool.Name] = nativeTool{tool: tool, handler: handler}
	r.mu.Unlock()

	if err := r.toolAdditionCallback(cloneTool(tool)); err != nil {
		r.logger.Error("tool addition callback failed", zap.String("tool", tool.Name), zap.Error(err))
	}
	return nil
}

// DeregisterNativeTool removes an in-process tool.
func (r *Registry) DeregisterNativeTool(name string) error {
	r.mu.Lock()
	if _, exists := r.native[name]; !exists {
		r.mu.Unlock()
		return fmt.Errorf("native tool %s not found", name)
	}
	delete(r.native, name)
	r.mu.Unlock()

	r.toolDeletionCallback(name)
	return nil
}

func (r *Registry) invokeNative(ctx context.Context, name string, args map[string]any) ([]mcp.Content, error) {
	r.mu.RLock()
	n, ok := r.native[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("tool %s not found", name)
	}
	return n.handler(ctx, args)
}
