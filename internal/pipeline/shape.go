package pipeline

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mcpjungle/toolgate/internal/config"
	"github.com/mcpjungle/toolgate/internal/telemetry"
)

// NoResultFoundText replaces an empty result for identified external clients.
const NoResultFoundText = `{"message": "No result found"}`

// ShapeResult turns the outcome of a tool invocation into the result sent to the client.
//
// Auth failures become a single text item holding the JSON of the failure details, with
// IsError unset. Other failures become a single text item holding the error message, with
// IsError set. Successful content is passed through filter for external clients, replaced by
// NoResultFoundText when it is empty and the external client carries a gummie_id, and
// combined into a single JSON array text item when aggregation is on and there are at
// least two items.
func ShapeResult(o Outcome, cfg config.Pipeline, filter ContentFilter) *mcp.CallToolResult {
	res, _ := shapeResult(o, cfg, filter)
	return res
}

// shapeResult is ShapeResult that also reports which result policy, if any, took effect.
func shapeResult(o Outcome, cfg config.Pipeline, filter ContentFilter) (*mcp.CallToolResult, telemetry.Policy) {
	switch o.Kind {
	case OutcomeAuthFailure:
		data, err := json.Marshal(o.Auth)
		if err != nil {
			return errorResult(o.Auth.Message), ""
		}
		return &mcp.CallToolResult{Content: []mcp.Content{mcp.NewTextContent(string(data))}}, ""
	case OutcomeFailure:
		return errorResult(o.Err.Error()), ""
	}

	content := o.Content
	if cfg.ExternalClient && filter != nil {
		content = filter.FilterForExternal(content)
	}

	var policy telemetry.Policy
	switch {
	case len(content) == 0 && cfg.ExternalClient && cfg.HasGummieID():
		content = []mcp.Content{mcp.NewTextContent(NoResultFoundText)}
		policy = telemetry.PolicyDefaultResponse
	case cfg.AggregateToolCallResults && len(content) > 1:
		if data, err := json.Marshal(content); err == nil {
			content = []mcp.Content{mcp.NewTextContent(string(data))}
			policy = telemetry.PolicyAggregated
		}
	}

	if content == nil {
		content = []mcp.Content{}
	}
	return &mcp.CallToolResult{Content: content}, policy
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(text)},
		IsError: true,
	}
}
