// Package config loads and validates the configuration of a toolgate server.
//
// Configuration is resolved once, when the server is constructed, from (lowest to highest
// precedence) built-in defaults, an optional YAML file and environment variables.
// The resulting Config is never modified afterwards and is safe to share between requests.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/afero"
	"github.com/spf13/cast"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	AggregateToolCallResultsEnvVar = "AGGREGATE_TOOL_CALL_RESULTS"
	ExternalClientEnvVar           = "EXTERNAL_CLIENT"
	GummieIDEnvVar                 = "GUMMIE_ID"
	RestrictedToolsEnvVar          = "RESTRICTED_TOOLS"

	LogLevelEnvVar      = "LOG_LEVEL"
	RedactDomainsEnvVar = "REDACT_DOMAINS"
)

// DefaultRedactDomain is the sensitive domain redacted from logs when none is configured.
const DefaultRedactDomain = "mcp.gumloop.com"

// Pipeline holds the options consulted by the tool policy pipeline.
// The zero value turns every policy off.
type Pipeline struct {
	// AggregateToolCallResults combines multi-item tool results into a single JSON text item.
	AggregateToolCallResults bool `json:"aggregate_tool_call_results" mapstructure:"aggregate_tool_call_results"`

	// ExternalClient marks the connected client as outside the first-party boundary.
	// Tool descriptors and tool results are stripped of internal details for such clients.
	ExternalClient bool `json:"external_client" mapstructure:"external_client"`

	// GummieID identifies the client. An empty string means no identity was supplied.
	GummieID string `json:"gummie_id,omitempty" mapstructure:"gummie_id"`

	// RestrictedTools are hidden from discovery and refused on invocation.
	RestrictedTools []string `json:"restricted_tools,omitempty" mapstructure:"restricted_tools"`
}

// Clone returns a copy of p that shares no memory with it.
func (p Pipeline) Clone() Pipeline {
	p.RestrictedTools = slices.Clone(p.RestrictedTools)
	return p
}

// IsRestricted reports whether the named tool may not be listed or called.
func (p Pipeline) IsRestricted(name string) bool {
	return slices.Contains(p.RestrictedTools, name)
}

// HasGummieID reports whether a client identity marker is configured.
func (p Pipeline) HasGummieID() bool {
	return p.GummieID != ""
}

// Logging configures the process logger.
type Logging struct {
	Level       string `json:"level" mapstructure:"level"`
	Development bool   `json:"development" mapstructure:"development"`

	// RedactDomains lists the root domains whose URLs are reduced to scheme://host in logs.
	RedactDomains []string `json:"redact_domains" mapstructure:"redact_domains"`
}

// Config is the complete toolgate server configuration.
type Config struct {
	Pipeline Pipeline `json:"pipeline" mapstructure:"pipeline"`
	Logging  Logging  `json:"logging" mapstructure:"logging"`
}

// Default returns a configuration with every pipeline policy off.
func Default() *Config {
	return &Config{
		Logging: Logging{
			Level:         "info",
			RedactDomains: []string{DefaultRedactDomain},
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if path is non-empty)
// and the process environment, then validates it.
func Load(fs afero.Fs, path string) (*Config, error) {
	c := Default()
	if path != "" {
		if err := c.mergeFile(fs, path); err != nil {
			return nil, err
		}
	}
	if err := c.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) mergeFile(fs afero.Fs, path string) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if raw == nil {
		// empty file
		return nil
	}
	if err := decode(raw, c); err != nil {
		return fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return nil
}

// DecodePipeline converts a loosely-typed option mapping (as found in embedding applications)
// into a Pipeline. Unknown keys are rejected.
func DecodePipeline(m map[string]any) (Pipeline, error) {
	var p Pipeline
	if err := decode(m, &p); err != nil {
		return Pipeline{}, err
	}
	if err := p.Validate(); err != nil {
		return Pipeline{}, err
	}
	return p, nil
}

func decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// ApplyEnv overrides configuration values with the environment variables that are set.
// getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	boolVars := []struct {
		name string
		dst  *bool
	}{
		{AggregateToolCallResultsEnvVar, &c.Pipeline.AggregateToolCallResults},
		{ExternalClientEnvVar, &c.Pipeline.ExternalClient},
	}
	for _, v := range boolVars {
		s := strings.TrimSpace(getenv(v.name))
		if s == "" {
			continue
		}
		b, err := cast.ToBoolE(s)
		if err != nil {
			return fmt.Errorf("invalid value for %s environment variable: '%s', valid values are 'true' or 'false'", v.name, s)
		}
		*v.dst = b
	}

	if s := getenv(GummieIDEnvVar); s != "" {
		c.Pipeline.GummieID = s
	}
	if s := getenv(RestrictedToolsEnvVar); s != "" {
		c.Pipeline.RestrictedTools = splitList(s)
	}
	if s := getenv(LogLevelEnvVar); s != "" {
		c.Logging.Level = s
	}
	if s := getenv(RedactDomainsEnvVar); s != "" {
		c.Logging.RedactDomains = splitList(s)
	}
	return nil
}

// splitList splits a comma-separated list, dropping blank entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var validDomain = regexp.MustCompile(`^[a-zA-Z0-9-]+(\.[a-zA-Z0-9-]+)+$`)

// Validate checks the configuration and normalizes list values (trimming and de-duplication).
func (c *Config) Validate() error {
	if err := c.Pipeline.Validate(); err != nil {
		return err
	}

	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level '%s': %w", c.Logging.Level, err)
	}

	domains, err := normalizeList(c.Logging.RedactDomains)
	if err != nil {
		return fmt.Errorf("invalid redact_domains: %w", err)
	}
	for _, d := range domains {
		if !validDomain.MatchString(d) {
			return fmt.Errorf("invalid redact_domains: '%s' is not a bare domain name", d)
		}
	}
	c.Logging.RedactDomains = domains
	return nil
}

// Validate checks the pipeline options and normalizes the restricted tool names.
func (p *Pipeline) Validate() error {
	if p.GummieID != "" && strings.TrimSpace(p.GummieID) == "" {
		return errors.New("invalid gummie_id: must not be blank")
	}
	tools, err := normalizeList(p.RestrictedTools)
	if err != nil {
		return fmt.Errorf("invalid restricted_tools: %w", err)
	}
	p.RestrictedTools = tools
	return nil
}

func normalizeList(in []string) ([]string, error) {
	var out []string
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, errors.New("entries must not be empty")
		}
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out, nil
}
