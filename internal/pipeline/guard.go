package pipeline

import (
	"fmt"

	"github.com/mcpjungle/toolgate/internal/config"
)

// RestrictedToolError is returned when a call targets a restricted tool.
type RestrictedToolError struct {
	Name string
}

func (e *RestrictedToolError) Error() string {
	return fmt.Sprintf("tool %q is restricted and cannot be called", e.Name)
}

// AuthorizeCall decides whether a tool may be invoked before any work is done.
// It returns a *RestrictedToolError for tools listed in cfg.RestrictedTools.
func AuthorizeCall(name string, cfg config.Pipeline) error {
	if cfg.IsRestricted(name) {
		return &RestrictedToolError{Name: name}
	}
	return nil
}
