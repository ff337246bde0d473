package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mcpjungle/toolgate/pkg/types"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	registerCmdServerName  string
	registerCmdServerURL   string
	registerCmdServerDesc  string
	registerCmdBearerToken string
	registerCmdConfigPath  string
)

var registerMCPServerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register an MCP server",
	Long: "Register an upstream MCP server with toolgate.\n" +
		"A streamable HTTP server can be registered with flags. For any transport, supply a JSON\n" +
		"configuration file with --conf, eg:\n\n" +
		"  {\"name\": \"filesystem\", \"transport\": \"stdio\", \"command\": \"npx\",\n" +
		"   \"args\": [\"-y\", \"@modelcontextprotocol/server-filesystem\", \".\"]}\n\n" +
		"Tool names are prefixed with the server name, eg: filesystem__read_file",
	RunE: runRegisterMCPServer,
	Annotations: map[string]string{
		"group": string(subCommandGroupBasic),
		"order": "5",
	},
}

func init() {
	registerMCPServerCmd.Flags().StringVar(&registerCmdServerName, "name", "", "MCP server name")
	registerMCPServerCmd.Flags().StringVar(&registerCmdServerURL, "url", "", "URL of the streamable HTTP MCP server")
	registerMCPServerCmd.Flags().StringVar(&registerCmdServerDesc, "description", "", "Server description")
	registerMCPServerCmd.Flags().StringVar(
		&registerCmdBearerToken,
		"bearer-token",
		"",
		"If provided, toolgate will use this token to authenticate with the MCP server for all requests",
	)
	registerMCPServerCmd.Flags().StringVarP(
		&registerCmdConfigPath,
		"conf",
		"c",
		"",
		"JSON config file for the MCP server (overrides all other flags)",
	)

	rootCmd.AddCommand(registerMCPServerCmd)
}

// readRegisterServerInput builds the registration request from --conf if set, otherwise from flags.
func readRegisterServerInput(fs afero.Fs) (*types.RegisterServerInput, error) {
	if registerCmdConfigPath != "" {
		data, err := afero.ReadFile(fs, registerCmdConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", registerCmdConfigPath, err)
		}
		var input types.RegisterServerInput
		if err := json.Unmarshal(data, &input); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", registerCmdConfigPath, err)
		}
		return &input, nil
	}

	if registerCmdServerName == "" || registerCmdServerURL == "" {
		return nil, errors.New("either --conf or both --name and --url must be supplied")
	}
	return &types.RegisterServerInput{
		Name:        registerCmdServerName,
		Transport:   string(types.TransportStreamableHTTP),
		Description: registerCmdServerDesc,
		URL:         registerCmdServerURL,
		BearerToken: registerCmdBearerToken,
	}, nil
}

func runRegisterMCPServer(cmd *cobra.Command, args []string) error {
	input, err := readRegisterServerInput(appFS)
	if err != nil {
		return err
	}

	s, err := apiClient.RegisterServer(input)
	if err != nil {
		return fmt.Errorf("failed to register server: %w", err)
	}
	cmd.Printf("Server %s registered successfully!\n", s.Name)

	tools, err := apiClient.ListTools()
	if err != nil {
		// the registration itself succeeded
		cmd.Printf("Warning: could not list the server's tools: %v\n", err)
		return nil
	}

	prefix := s.Name + "__"
	var provided []string
	for _, t := range tools {
		if strings.HasPrefix(t.Name, prefix) {
			provided = append(provided, t.Name)
		}
	}
	if len(provided) == 0 {
		cmd.Println("This server does not expose any tools to clients")
		return nil
	}
	cmd.Println()
	cmd.Println("The following tools are now available from this server:")
	for i, name := range provided {
		cmd.Printf("%d. %s\n", i+1, name)
	}
	return nil
}
