package cmd

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

var usageCmd = &cobra.Command{
	Use:   "usage <name>",
	Short: "Get usage information for a tool",
	Args:  cobra.ExactArgs(1),
	RunE:  runGetToolUsage,
	Annotations: map[string]string{
		"group": string(subCommandGroupBasic),
		"order": "4",
	},
}

func init() {
	rootCmd.AddCommand(usageCmd)
}

func runGetToolUsage(cmd *cobra.Command, args []string) error {
	t, err := apiClient.GetTool(args[0])
	if err != nil {
		return fmt.Errorf("failed to get tool '%s': %w", args[0], err)
	}

	cmd.Println(t.Name)
	cmd.Println(t.Description)

	if t.CreditCost != nil {
		cmd.Printf("Credit cost: %d\n", *t.CreditCost)
	}
	if len(t.RequiredScopes) > 0 {
		cmd.Printf("Required scopes: %s\n", strings.Join(t.RequiredScopes, ", "))
	}

	if t.InputSchema.Properties == nil || t.InputSchema.Properties.Len() == 0 {
		cmd.Println("This tool does not require any input parameters.")
		return nil
	}

	cmd.Println()
	cmd.Println("Input Parameters:")
	for p := t.InputSchema.Properties.Oldest(); p != nil; p = p.Next() {
		requiredOrOptional := "optional"
		if slices.Contains(t.InputSchema.Required, p.Key) {
			requiredOrOptional = "required"
		}

		boundary := strings.Repeat("=", len(p.Key)+len(requiredOrOptional)+20)

		cmd.Println(boundary)
		cmd.Printf("%s (%s)\n", p.Key, requiredOrOptional)

		var v any
		if err := json.Unmarshal(p.Value, &v); err != nil {
			// Simply print the raw schema if it cannot be decoded
			cmd.Println(string(p.Value))
		} else if j, err := json.MarshalIndent(v, "", "  "); err == nil {
			cmd.Println(string(j))
		}
		cmd.Println(boundary)

		cmd.Println()
	}

	if len(t.Annotations) > 0 {
		cmd.Println()
		cmd.Println("Annotations:")
		keys := make([]string, 0, len(t.Annotations))
		for k := range t.Annotations {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			cmd.Printf("* %s = %v\n", k, t.Annotations[k])
		}
	}

	return nil
}
