// Package cmd implements the toolgate command line interface.
package cmd

import (
	"net/http"
	"os"
	"sort"
	"strconv"

	"github.com/mcpjungle/toolgate/client"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type subCommandGroup string

const (
	subCommandGroupBasic    subCommandGroup = "basic"
	subCommandGroupAdvanced subCommandGroup = "advanced"
)

const (
	defaultRegistryServerURL = "http://127.0.0.1:" + BindPortDefault

	// AccessTokenEnvVar holds the token sent to a toolgate server by the API commands.
	AccessTokenEnvVar = "TOOLGATE_ACCESS_TOKEN"
)

var (
	registryServerURL string

	// apiClient is created before every command runs.
	apiClient *client.Client

	// appFS is the filesystem the commands read configuration files from.
	appFS = afero.NewOsFs()
)

var rootCmd = &cobra.Command{
	Use:   "toolgate",
	Short: "Policy gateway for MCP tools",
	Long: "toolgate proxies the tools of upstream MCP servers to MCP clients.\n" +
		"Every tool listing and tool call passes through a policy pipeline that hides\n" +
		"deprecated and restricted tools, strips internal details for external clients,\n" +
		"and shapes tool results.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		apiClient = client.NewClient(registryServerURL, os.Getenv(AccessTokenEnvVar), http.DefaultClient)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&registryServerURL,
		"registry",
		defaultRegistryServerURL,
		"Base URL of the toolgate server",
	)

	rootCmd.AddGroup(
		&cobra.Group{ID: string(subCommandGroupBasic), Title: "Basic Commands:"},
		&cobra.Group{ID: string(subCommandGroupAdvanced), Title: "Advanced Commands:"},
	)
	cobra.EnableCommandSorting = false
}

// Execute runs the root command.
func Execute() error {
	organizeSubCommands(rootCmd)
	return rootCmd.Execute()
}

// organizeSubCommands places each subcommand in the group named by its "group" annotation
// and lists subcommands by their "order" annotation.
func organizeSubCommands(root *cobra.Command) {
	cmds := append([]*cobra.Command(nil), root.Commands()...)
	sort.SliceStable(cmds, func(i, j int) bool {
		return commandOrder(cmds[i]) < commandOrder(cmds[j])
	})

	root.RemoveCommand(cmds...)
	for _, c := range cmds {
		if g, ok := c.Annotations["group"]; ok {
			c.GroupID = g
		}
	}
	root.AddCommand(cmds...)
}

func commandOrder(c *cobra.Command) int {
	order, err := strconv.Atoi(c.Annotations["order"])
	if err != nil {
		return 1 << 30
	}
	return order
}
