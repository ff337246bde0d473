package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List resources (tools, servers)",
	Annotations: map[string]string{
		"group": string(subCommandGroupBasic),
		"order": "2",
	},
}

var listToolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools exposed to MCP clients",
	Long: "List the tools as toolgate advertises them to MCP clients.\n" +
		"Deprecated, disabled and restricted tools are not listed.",
	RunE: runListTools,
}

var listServersCmd = &cobra.Command{
	Use:   "servers",
	Short: "List registered MCP servers",
	RunE:  runListServers,
}

func init() {
	listCmd.AddCommand(listToolsCmd)
	listCmd.AddCommand(listServersCmd)
	rootCmd.AddCommand(listCmd)
}

func runListTools(cmd *cobra.Command, args []string) error {
	tools, err := apiClient.ListTools()
	if err != nil {
		return fmt.Errorf("failed to list tools: %w", err)
	}

	if len(tools) == 0 {
		cmd.Println("There are no tools available")
		return nil
	}

	for i, t := range tools {
		cmd.Printf("%d. %s\n", i+1, t.Name)
		if t.Description != "" {
			cmd.Println(firstLine(t.Description))
		}
		cmd.Println()
	}

	cmd.Println("Run 'usage <tool name>' to see a tool's usage or 'invoke <tool name>' to call one")
	return nil
}

func runListServers(cmd *cobra.Command, args []string) error {
	servers, err := apiClient.ListServers()
	if err != nil {
		return fmt.Errorf("failed to list servers: %w", err)
	}

	if len(servers) == 0 {
		cmd.Println("There are no MCP servers registered")
		return nil
	}

	for i, s := range servers {
		cmd.Printf("%d. %s (%s)\n", i+1, s.Name, s.Transport)
		if s.Description != "" {
			cmd.Println(s.Description)
		}
		switch {
		case s.URL != "":
			cmd.Println(s.URL)
		case s.Command != "":
			cmd.Println(strings.TrimSpace(s.Command + " " + strings.Join(s.Args, " ")))
		}
		cmd.Println()
	}
	return nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
