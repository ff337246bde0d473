package cmd

import (
	"testing"

	"github.com/mcpjungle/toolgate/pkg/testhelpers"
	"github.com/spf13/cobra"
)

func TestCommandStructure(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		group subCommandGroup
		order string
	}{
		{startServerCmd, "start", subCommandGroupBasic, "1"},
		{listCmd, "list", subCommandGroupBasic, "2"},
		{invokeCmd, "invoke <name>", subCommandGroupBasic, "3"},
		{usageCmd, "usage <name>", subCommandGroupBasic, "4"},
		{registerMCPServerCmd, "register", subCommandGroupBasic, "5"},
		{deregisterMCPServerCmd, "deregister <name>", subCommandGroupBasic, "6"},
		{enableToolsCmd, "enable <name>", subCommandGroupAdvanced, "7"},
		{disableToolsCmd, "disable <name>", subCommandGroupAdvanced, "8"},
		{showConfigCmd, "config", subCommandGroupAdvanced, "9"},
		{versionCmd, "version", subCommandGroupAdvanced, "10"},
	}
	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			testhelpers.AssertEqual(t, tt.use, tt.cmd.Use)
			testhelpers.AssertTrue(t, len(tt.cmd.Short) > 0, "Short description should not be empty")
			testhelpers.TestCommandAnnotations(t, tt.cmd.Annotations, []testhelpers.CommandAnnotationTest{
				{Key: "group", Expected: string(tt.group)},
				{Key: "order", Expected: tt.order},
			})
		})
	}
}

func TestListSubcommands(t *testing.T) {
	testhelpers.AssertEqual(t, 2, len(listCmd.Commands()))
	testhelpers.AssertNotNil(t, listToolsCmd.RunE)
	testhelpers.AssertNotNil(t, listServersCmd.RunE)
}

func TestCommandFlags(t *testing.T) {
	for _, name := range []string{"port", "config", "stdio"} {
		testhelpers.AssertNotNil(t, startServerCmd.Flags().Lookup(name))
	}
	for _, name := range []string{"name", "url", "description", "bearer-token", "conf"} {
		testhelpers.AssertNotNil(t, registerMCPServerCmd.Flags().Lookup(name))
	}

	input := invokeCmd.Flags().Lookup("input")
	testhelpers.AssertNotNil(t, input)
	testhelpers.AssertEqual(t, "{}", input.DefValue)

	registry := rootCmd.PersistentFlags().Lookup("registry")
	testhelpers.AssertNotNil(t, registry)
	testhelpers.AssertEqual(t, defaultRegistryServerURL, registry.DefValue)
}

func TestOrganizeSubCommands(t *testing.T) {
	root := &cobra.Command{Use: "root"}
	root.AddGroup(&cobra.Group{ID: "basic", Title: "Basic"})
	second := &cobra.Command{Use: "second", Annotations: map[string]string{"group": "basic", "order": "2"}}
	first := &cobra.Command{Use: "first", Annotations: map[string]string{"group": "basic", "order": "1"}}
	unordered := &cobra.Command{Use: "unordered"}
	root.AddCommand(unordered, second, first)

	organizeSubCommands(root)

	cmds := root.Commands()
	testhelpers.AssertEqual(t, 3, len(cmds))
	testhelpers.AssertEqual(t, "first", cmds[0].Use)
	testhelpers.AssertEqual(t, "second", cmds[1].Use)
	testhelpers.AssertEqual(t, "unordered", cmds[2].Use)
	testhelpers.AssertEqual(t, "basic", cmds[0].GroupID)
	testhelpers.AssertEqual(t, "", cmds[2].GroupID)
}
