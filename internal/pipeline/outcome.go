package pipeline

import (
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mcpjungle/toolgate/pkg/types"
)

// OutcomeKind classifies how a tool invocation ended.
type OutcomeKind int

const (
	// OutcomeSuccess means the tool produced content.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeAuthFailure means the tool could not act for the caller.
	// It is reported as data, not as an error.
	OutcomeAuthFailure
	// OutcomeFailure is any other error.
	OutcomeFailure
)

// Outcome is the result of a tool invocation, classified once where the call returns.
// Only the fields of its Kind are set.
type Outcome struct {
	Kind OutcomeKind

	Content []mcp.Content
	Auth    types.AuthErrorData
	Err     error
}

// NewOutcome classifies the return values of a tool invocation.
// An error wrapping a *types.AuthError is an auth failure; any other error is a failure.
func NewOutcome(content []mcp.Content, err error) Outcome {
	if err == nil {
		return Outcome{Kind: OutcomeSuccess, Content: content}
	}
	var authErr *types.AuthError
	if errors.As(err, &authErr) {
		return Outcome{Kind: OutcomeAuthFailure, Auth: authErr.Details}
	}
	return Outcome{Kind: OutcomeFailure, Err: err}
}
