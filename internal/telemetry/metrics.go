package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ToolCallOutcome describes how a tool call ended.
type ToolCallOutcome string

const (
	ToolCallOutcomeSuccess   ToolCallOutcome = "success"
	ToolCallOutcomeError     ToolCallOutcome = "error"
	ToolCallOutcomeAuthError ToolCallOutcome = "auth_error"
)

// Policy names a pipeline policy whose decisions are counted.
type Policy string

const (
	PolicyRestrictedCall  Policy = "restricted_call"
	PolicyHiddenTool      Policy = "hidden_tool"
	PolicyAggregated      Policy = "aggregated_result"
	PolicyDefaultResponse Policy = "default_result"
)

// CustomMetrics records toolgate's application metrics.
type CustomMetrics interface {
	// RecordToolCall records the outcome and latency of a call made to a tool.
	RecordToolCall(ctx context.Context, serverName, toolName string, outcome ToolCallOutcome, elapsed time.Duration)

	// RecordPolicyDecision counts a pipeline policy taking effect on a tool.
	RecordPolicyDecision(ctx context.Context, policy Policy, toolName string)
}

type noopCustomMetrics struct{}

// NewNoopCustomMetrics returns a CustomMetrics that discards everything.
// It is used when telemetry is disabled.
func NewNoopCustomMetrics() CustomMetrics {
	return noopCustomMetrics{}
}

func (noopCustomMetrics) RecordToolCall(context.Context, string, string, ToolCallOutcome, time.Duration) {
}

func (noopCustomMetrics) RecordPolicyDecision(context.Context, Policy, string) {}

type otelCustomMetrics struct {
	toolCalls       metric.Int64Counter
	toolCallLatency metric.Float64Histogram
	policyDecisions metric.Int64Counter
}

// NewOtelCustomMetrics creates the instruments on the given meter.
func NewOtelCustomMetrics(meter metric.Meter) (CustomMetrics, error) {
	toolCalls, err := meter.Int64Counter(
		"toolgate_tool_calls_total",
		metric.WithDescription("Number of tool calls made through toolgate"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool calls counter: %w", err)
	}

	latency, err := meter.Float64Histogram(
		"toolgate_tool_call_duration_seconds",
		metric.WithDescription("Latency of tool calls made through toolgate"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool call latency histogram: %w", err)
	}

	decisions, err := meter.Int64Counter(
		"toolgate_policy_decisions_total",
		metric.WithDescription("Number of times a pipeline policy changed a catalog or a result"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create policy decisions counter: %w", err)
	}

	return &otelCustomMetrics{
		toolCalls:       toolCalls,
		toolCallLatency: latency,
		policyDecisions: decisions,
	}, nil
}

func (m *otelCustomMetrics) RecordToolCall(
	ctx context.Context, serverName, toolName string, outcome ToolCallOutcome, elapsed time.Duration,
) {
	attrs := metric.WithAttributes(
		attribute.String("server", serverName),
		attribute.String("tool", toolName),
		attribute.String("outcome", string(outcome)),
	)
	m.toolCalls.Add(ctx, 1, attrs)
	m.toolCallLatency.Record(ctx, elapsed.Seconds(), attrs)
}

func (m *otelCustomMetrics) RecordPolicyDecision(ctx context.Context, policy Policy, toolName string) {
	m.policyDecisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("policy", string(policy)),
		attribute.String("tool", toolName),
	))
}
