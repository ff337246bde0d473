// Package pipeline applies toolgate's client-facing tool policies.
//
// Every tool listing and tool call that crosses the gateway goes through a Pipeline:
//
//	list:  registry tools -> FilterCatalog -> client
//	call:  AuthorizeCall -> registry invocation -> NewOutcome -> ShapeResult -> client
//
// The stages are pure functions of their input and the pipeline configuration, which is
// fixed when the Pipeline is created.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mcpjungle/toolgate/internal/config"
	"github.com/mcpjungle/toolgate/internal/logging"
	"github.com/mcpjungle/toolgate/internal/mcpconv"
	"github.com/mcpjungle/toolgate/internal/telemetry"
	"github.com/mcpjungle/toolgate/pkg/types"
	"go.uber.org/zap"
)

// Registry is the source of raw tools and raw tool invocations.
type Registry interface {
	// ListRegisteredTools returns freshly built descriptors of all available tools.
	ListRegisteredTools(ctx context.Context) ([]types.Tool, error)

	// InvokeTool calls a tool. A *types.AuthError (possibly wrapped) reports an auth failure.
	InvokeTool(ctx context.Context, name string, args map[string]any) ([]mcp.Content, error)
}

// Options configures a Pipeline.
type Options struct {
	Config config.Pipeline

	// ContentFilter is applied to results sent to external clients.
	// Defaults to an ExternalContentFilter for config.DefaultRedactDomain.
	ContentFilter ContentFilter

	Logger  *zap.Logger
	Metrics telemetry.CustomMetrics
}

// Pipeline coordinates the policy stages around a Registry.
// It holds no mutable state and is safe for concurrent use.
type Pipeline struct {
	registry Registry
	cfg      config.Pipeline
	filter   ContentFilter
	logger   *zap.Logger
	metrics  telemetry.CustomMetrics
}

// New validates the configuration and creates a Pipeline.
func New(registry Registry, opts Options) (*Pipeline, error) {
	if registry == nil {
		return nil, errors.New("pipeline requires a tool registry")
	}
	cfg := opts.Config.Clone()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline configuration: %w", err)
	}

	p := &Pipeline{
		registry: registry,
		cfg:      cfg,
		filter:   opts.ContentFilter,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
	}
	if p.filter == nil {
		p.filter = &ExternalContentFilter{Redactor: logging.NewRedactor(config.DefaultRedactDomain)}
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.metrics == nil {
		p.metrics = telemetry.NewNoopCustomMetrics()
	}
	return p, nil
}

// Config returns a copy of the pipeline configuration in effect.
func (p *Pipeline) Config() config.Pipeline {
	return p.cfg.Clone()
}

// ListTools returns the tool catalog as advertised to the client.
func (p *Pipeline) ListTools(ctx context.Context) ([]types.Tool, error) {
	raw, err := p.registry.ListRegisteredTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list registered tools: %w", err)
	}
	return p.filterCatalog(ctx, raw), nil
}

// GetTool returns the client-facing descriptor of a single tool.
// It returns false if the tool does not exist or is hidden from the client.
func (p *Pipeline) GetTool(ctx context.Context, name string) (types.Tool, bool, error) {
	tools, err := p.ListTools(ctx)
	if err != nil {
		return types.Tool{}, false, err
	}
	for _, t := range tools {
		if t.Name == name {
			return t, true, nil
		}
	}
	return types.Tool{}, false, nil
}

// CallTool invokes a tool through the guard and the result shaper.
// It always returns a result: failures are reported inside it.
func (p *Pipeline) CallTool(ctx context.Context, name string, args map[string]any) *mcp.CallToolResult {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, _ := p.ToolHandlerMiddleware(p.invoke)(ctx, req)
	return res
}

// ToolHandlerMiddleware wraps a tool handler with the invocation guard and the result shaper.
// The wrapped handler never returns an error.
func (p *Pipeline) ToolHandlerMiddleware(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := req.Params.Name
		if err := AuthorizeCall(name, p.cfg); err != nil {
			p.logger.Info("rejected call to a restricted tool", zap.String("tool", name))
			p.metrics.RecordPolicyDecision(ctx, telemetry.PolicyRestrictedCall, name)
			return errorResult(err.Error()), nil
		}

		res, err := next(ctx, req)
		var content []mcp.Content
		if res != nil {
			content = res.Content
			if res.IsError && err == nil {
				err = errorFromResult(res)
			}
		}

		outcome := NewOutcome(content, err)
		switch outcome.Kind {
		case OutcomeAuthFailure:
			p.logger.Info("tool reported an auth failure",
				zap.String("tool", name), zap.String("service", outcome.Auth.Service))
		case OutcomeFailure:
			p.logger.Warn("tool call failed", zap.String("tool", name), zap.Error(outcome.Err))
		}

		shaped, policy := shapeResult(outcome, p.cfg, p.filter)
		if policy != "" {
			p.metrics.RecordPolicyDecision(ctx, policy, name)
		}
		return shaped, nil
	}
}

// invoke is the tool handler that forwards a call to the registry.
func (p *Pipeline) invoke(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := p.registry.InvokeTool(ctx, req.Params.Name, req.GetArguments())
	if err != nil {
		return nil, err
	}
	return &mcp.CallToolResult{Content: content}, nil
}

// errorFromResult converts a result flagged as an error into a Go error carrying its first text.
func errorFromResult(res *mcp.CallToolResult) error {
	for _, c := range res.Content {
		if text, ok := mcpconv.TextOf(c); ok {
			return errors.New(text)
		}
	}
	return errors.New("tool call failed without an error message")
}

// filterCatalog applies FilterCatalog and counts the tools it hid.
func (p *Pipeline) filterCatalog(ctx context.Context, raw []types.Tool) []types.Tool {
	filtered := FilterCatalog(raw, p.cfg)
	if len(filtered) == len(raw) {
		return filtered
	}
	visible := make(map[string]struct{}, len(filtered))
	for _, t := range filtered {
		visible[t.Name] = struct{}{}
	}
	for _, t := range raw {
		if _, ok := visible[t.Name]; !ok {
			p.metrics.RecordPolicyDecision(ctx, telemetry.PolicyHiddenTool, t.Name)
		}
	}
	return filtered
}
