package cmd

import (
	"github.com/mcpjungle/toolgate/pkg/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the toolgate version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("toolgate %s\n", version.GetVersion())
	},
	Annotations: map[string]string{
		"group": string(subCommandGroupAdvanced),
		"order": "10",
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
