package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var enableToolsCmd = &cobra.Command{
	Use:   "enable <name>",
	Short: "Enable a tool or all tools of an MCP server",
	Long: "Enable a tool (eg: git__commit) or, given a server name, all the tools of that server.\n" +
		"Enabled tools are listed and callable again.",
	Args: cobra.ExactArgs(1),
	RunE: runEnableTools,
	Annotations: map[string]string{
		"group": string(subCommandGroupAdvanced),
		"order": "7",
	},
}

var disableToolsCmd = &cobra.Command{
	Use:   "disable <name>",
	Short: "Disable a tool or all tools of an MCP server",
	Long: "Disable a tool (eg: git__commit) or, given a server name, all the tools of that server.\n" +
		"Disabled tools are neither listed nor callable until they are enabled again.",
	Args: cobra.ExactArgs(1),
	RunE: runDisableTools,
	Annotations: map[string]string{
		"group": string(subCommandGroupAdvanced),
		"order": "8",
	},
}

func init() {
	rootCmd.AddCommand(enableToolsCmd)
	rootCmd.AddCommand(disableToolsCmd)
}

func runEnableTools(cmd *cobra.Command, args []string) error {
	affected, err := apiClient.EnableTools(args[0])
	if err != nil {
		return fmt.Errorf("failed to enable %s: %w", args[0], err)
	}
	printAffectedTools(cmd, "enabled", affected)
	return nil
}

func runDisableTools(cmd *cobra.Command, args []string) error {
	affected, err := apiClient.DisableTools(args[0])
	if err != nil {
		return fmt.Errorf("failed to disable %s: %w", args[0], err)
	}
	printAffectedTools(cmd, "disabled", affected)
	return nil
}

func printAffectedTools(cmd *cobra.Command, state string, tools []string) {
	if len(tools) == 0 {
		cmd.Printf("No tools were %s\n", state)
		return
	}
	cmd.Printf("The following tools are now %s:\n", state)
	for _, t := range tools {
		cmd.Printf("- %s\n", t)
	}
}
