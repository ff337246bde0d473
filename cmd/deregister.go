package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deregisterMCPServerCmd = &cobra.Command{
	Use:   "deregister <name>",
	Short: "Deregister an MCP server",
	Long:  "Remove an MCP server from toolgate. Its tools are no longer listed or callable.",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeregisterMCPServer,
	Annotations: map[string]string{
		"group": string(subCommandGroupBasic),
		"order": "6",
	},
}

func init() {
	rootCmd.AddCommand(deregisterMCPServerCmd)
}

func runDeregisterMCPServer(cmd *cobra.Command, args []string) error {
	if err := apiClient.DeregisterServer(args[0]); err != nil {
		return fmt.Errorf("failed to deregister MCP server %s: %w", args[0], err)
	}
	cmd.Printf("Successfully deregistered MCP server %s\n", args[0])
	return nil
}
