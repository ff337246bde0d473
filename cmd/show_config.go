package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the pipeline configuration of the server",
	Long: "Print the tool pipeline configuration the toolgate server is running with, in the YAML\n" +
		"format accepted by 'toolgate start --config'.",
	Args: cobra.NoArgs,
	RunE: runShowConfig,
	Annotations: map[string]string{
		"group": string(subCommandGroupAdvanced),
		"order": "9",
	},
}

func init() {
	rootCmd.AddCommand(showConfigCmd)
}

// pipelineConfigFile mirrors the pipeline section of the configuration file.
type pipelineConfigFile struct {
	Pipeline struct {
		AggregateToolCallResults bool     `yaml:"aggregate_tool_call_results"`
		ExternalClient           bool     `yaml:"external_client"`
		GummieID                 string   `yaml:"gummie_id,omitempty"`
		RestrictedTools          []string `yaml:"restricted_tools,omitempty"`
	} `yaml:"pipeline"`
}

func runShowConfig(cmd *cobra.Command, args []string) error {
	cfg, err := apiClient.GetPipelineConfig()
	if err != nil {
		return fmt.Errorf("failed to get pipeline configuration: %w", err)
	}

	var f pipelineConfigFile
	f.Pipeline.AggregateToolCallResults = cfg.AggregateToolCallResults
	f.Pipeline.ExternalClient = cfg.ExternalClient
	f.Pipeline.GummieID = cfg.GummieID
	f.Pipeline.RestrictedTools = cfg.RestrictedTools

	out, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	cmd.Print(string(out))
	return nil
}
