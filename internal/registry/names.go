package registry

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
)

// serverToolNameSep joins a server name and a tool name into the canonical tool name,
// which identifies a tool uniquely across toolgate.
const serverToolNameSep = "__"

// Only allow letters, numbers, hyphens, and underscores
var validServerName = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// validateServerName checks if the server name is valid.
// Tools are identified by `<server_name>__<tool_name>` (eg- `github__git_commit`) and
// the text before the first `__` is treated as the server name, so a server name must not
// contain `__` or end with an underscore.
func validateServerName(name string) error {
	if name == "" {
		return fmt.Errorf("invalid server name: '%s' must not be empty", name)
	}
	if !validServerName.MatchString(name) {
		return fmt.Errorf("invalid server name: '%s' must follow the regular expression %s", name, validServerName)
	}
	if strings.Contains(name, serverToolNameSep) {
		return fmt.Errorf("invalid server name: '%s' must not contain multiple consecutive underscores", name)
	}
	if strings.HasSuffix(name, "_") {
		// `aws_` + `ec2_create_sg` -> `aws___ec2_create_sg` would split into `aws` + `_ec2_create_sg`
		return fmt.Errorf("invalid server name: '%s' must not end with an underscore", name)
	}
	return nil
}

// validateNativeToolName checks the name of an in-process tool.
// Native names never contain the separator, so they cannot shadow an upstream tool.
func validateNativeToolName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("invalid tool name: must not be empty")
	}
	if strings.Contains(name, serverToolNameSep) {
		return fmt.Errorf("invalid tool name: '%s' must not contain '%s'", name, serverToolNameSep)
	}
	return nil
}

// mergeServerToolNames combines the server name and tool name into the canonical tool name.
func mergeServerToolNames(s, t string) string {
	return s + serverToolNameSep + t
}

// splitServerToolName splits the canonical tool name into server name and tool name.
func splitServerToolName(name string) (string, string, bool) {
	return strings.Cut(name, serverToolNameSep)
}

// isLoopbackURL returns true if rawURL points at a loopback address.
func isLoopbackURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if host == "" {
		return false
	}
	if strings.EqualFold(host, "localhost") {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}
