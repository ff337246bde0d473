package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Tool represents a tool provided by an upstream MCP server.
type Tool struct {
	gorm.Model

	// Name is just the name of the tool, without the server name prefix.
	// A tool name is unique only within the context of a server.
	Name string `json:"name" gorm:"not null"`

	// Enabled indicates whether the tool is enabled or not.
	// A disabled tool is neither listed nor callable through the MCP proxy.
	Enabled bool `json:"enabled" gorm:"default:true"`

	Description string `json:"description"`

	// InputSchema is a JSON schema that describes the input parameters for the tool.
	InputSchema datatypes.JSON `json:"input_schema" gorm:"type:jsonb"`

	// OutputSchema is the optional JSON schema of the tool's structured output.
	OutputSchema datatypes.JSON `json:"output_schema" gorm:"type:jsonb"`

	// Annotations stores tool annotation hints from the upstream MCP server.
	Annotations datatypes.JSON `json:"annotations" gorm:"type:jsonb"`

	// RequiredScopes is a JSON array of the scopes a caller needs to use the tool.
	RequiredScopes datatypes.JSON `json:"required_scopes" gorm:"type:jsonb"`

	// CreditCost is the optional number of credits charged per call.
	CreditCost *int `json:"credit_cost"`

	// Deprecated tools stay callable but are hidden from tool discovery.
	Deprecated bool `json:"deprecated" gorm:"not null;default:false"`

	// ServerID is the ID of the MCP server that provides this tool.
	ServerID uint      `json:"-" gorm:"not null"`
	Server   McpServer `json:"-" gorm:"foreignKey:ServerID;references:ID"`
}
