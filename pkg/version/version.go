// Package version exposes the toolgate build version.
package version

import "runtime/debug"

// Version is set at build time with
// -ldflags "-X github.com/mcpjungle/toolgate/pkg/version.Version=v1.2.3".
var Version = ""

// GetVersion returns the build version, falling back to the module version
// recorded by the Go toolchain, or "dev".
func GetVersion() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return "dev"
}
