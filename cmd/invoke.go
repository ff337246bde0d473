package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/mcpjungle/toolgate/pkg/types"
	"github.com/spf13/cobra"
)

var invokeCmdInput string

var invokeCmd = &cobra.Command{
	Use:   "invoke <name>",
	Short: "Invoke a tool",
	Long: "Invokes a tool through the toolgate pipeline and prints its result.\n" +
		"Tool arguments are supplied as a JSON object, eg:\n" +
		"  toolgate invoke git__commit --input '{\"message\": \"initial commit\"}'",
	Args: cobra.ExactArgs(1),
	RunE: runInvokeTool,
	Annotations: map[string]string{
		"group": string(subCommandGroupBasic),
		"order": "3",
	},
}

func init() {
	invokeCmd.Flags().StringVar(&invokeCmdInput, "input", "{}", "valid JSON payload")
	rootCmd.AddCommand(invokeCmd)
}

func runInvokeTool(cmd *cobra.Command, args []string) error {
	var input map[string]any
	if err := json.Unmarshal([]byte(invokeCmdInput), &input); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}

	result, err := apiClient.InvokeTool(args[0], input)
	if err != nil {
		return fmt.Errorf("failed to invoke tool: %w", err)
	}

	printToolResult(cmd, result)
	if result.IsError {
		return fmt.Errorf("tool %s returned an error", args[0])
	}
	return nil
}

// printToolResult prints text content as is and any other content as indented JSON.
func printToolResult(cmd *cobra.Command, result *types.ToolInvokeResult) {
	if result.IsError {
		cmd.Println("The tool returned an error:")
	} else {
		cmd.Println("Response from tool:")
	}

	for _, item := range result.Content {
		if item["type"] == "text" {
			cmd.Println(item["text"])
			continue
		}
		out, err := json.MarshalIndent(item, "", "  ")
		if err != nil {
			cmd.Println(item)
			continue
		}
		cmd.Println(string(out))
	}

	if result.StructuredContent != nil {
		out, err := json.MarshalIndent(result.StructuredContent, "", "  ")
		if err == nil {
			cmd.Println("Structured content:")
			cmd.Println(string(out))
		}
	}
}
