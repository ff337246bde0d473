package pipeline

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mcpjungle/toolgate/internal/logging"
)

// ContentFilter strips tool result content before it is sent to an external client.
type ContentFilter interface {
	FilterForExternal(content []mcp.Content) []mcp.Content
}

// ContentFilterFunc adapts a function to the ContentFilter interface.
type ContentFilterFunc func(content []mcp.Content) []mcp.Content

func (f ContentFilterFunc) FilterForExternal(content []mcp.Content) []mcp.Content {
	return f(content)
}

// ExternalContentFilter is the default ContentFilter.
// Sensitive URLs in text items are reduced to scheme://host and embedded resources
// located on a sensitive domain are removed. All other content passes unchanged.
type ExternalContentFilter struct {
	Redactor *logging.Redactor
}

func (f *ExternalContentFilter) FilterForExternal(content []mcp.Content) []mcp.Content {
	out := make([]mcp.Content, 0, len(content))
	for _, c := range content {
		switch v := c.(type) {
		case mcp.TextContent:
			v.Text = f.Redactor.Redact(v.Text)
			out = append(out, v)
		case *mcp.TextContent:
			if v == nil {
				continue
			}
			redacted := *v
			redacted.Text = f.Redactor.Redact(v.Text)
			out = append(out, redacted)
		case mcp.EmbeddedResource:
			if !f.Redactor.Matches(resourceURI(v.Resource)) {
				out = append(out, v)
			}
		case *mcp.EmbeddedResource:
			if v != nil && !f.Redactor.Matches(resourceURI(v.Resource)) {
				out = append(out, v)
			}
		default:
			out = append(out, c)
		}
	}
	return out
}

func resourceURI(r mcp.ResourceContents) string {
	switch v := r.(type) {
	case mcp.TextResourceContents:
		return v.URI
	case *mcp.TextResourceContents:
		if v != nil {
			return v.URI
		}
	case mcp.BlobResourceContents:
		return v.URI
	case *mcp.BlobResourceContents:
		if v != nil {
			return v.URI
		}
	}
	return ""
}
