package internal

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mcpjungle/toolgate/internal/config"
	"github.com/mcpjungle/toolgate/internal/mcpconv"
	"github.com/mcpjungle/toolgate/internal/migrations"
	"github.com/mcpjungle/toolgate/internal/model"
	"github.com/mcpjungle/toolgate/internal/pipeline"
	"github.com/mcpjungle/toolgate/internal/registry"
	"github.com/mcpjungle/toolgate/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestPipelineIntegration wires a registry loaded from the database, the pipeline and the
// MCP server together, and checks what an MCP client sees.
func TestPipelineIntegration(t *testing.T) {
	ctx := context.Background()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migrations.Migrate(db))

	// Seed a server and its tools as a previous run would have left them
	github, err := model.NewStdioServer(
		"github",
		"GitHub MCP server",
		"npx",
		[]string{"-y", "@modelcontextprotocol/server-github"},
		map[string]string{},
	)
	require.NoError(t, err)
	require.NoError(t, db.Create(github).Error)

	scopes, _ := json.Marshal([]string{"repo"})
	cost := 3
	tools := []model.Tool{
		{
			Name:        "create_issue",
			Enabled:     true,
			Description: "Create an issue",
			InputSchema: []byte(`{"type":"object","properties":{
				"title":{"type":"string"},
				"labels":{"type":"array","deprecated":true}
			},"required":["title","labels"]}`),
			RequiredScopes: scopes,
			CreditCost:     &cost,
			ServerID:       github.ID,
		},
		{
			Name:        "search_code",
			Enabled:     true,
			Description: "Old search",
			InputSchema: []byte(`{"type":"object"}`),
			Deprecated:  true,
			ServerID:    github.ID,
		},
		{
			Name:        "delete_repo",
			Enabled:     true,
			Description: "Delete a repository",
			InputSchema: []byte(`{"type":"object"}`),
			ServerID:    github.ID,
		},
	}
	for i := range tools {
		require.NoError(t, db.Create(&tools[i]).Error)
	}

	reg, err := registry.New(&registry.Config{DB: db})
	require.NoError(t, err)

	require.NoError(t, reg.RegisterNativeTool(
		types.Tool{Name: "whoami", Description: "Current user"},
		func(context.Context, map[string]any) ([]mcp.Content, error) {
			return nil, types.NewAuthError("credentials_not_found", "Auth required", "github", 401)
		},
	))

	p, err := pipeline.New(reg, pipeline.Options{Config: config.Pipeline{
		ExternalClient:  true,
		RestrictedTools: []string{"github__delete_repo"},
	}})
	require.NoError(t, err)

	mcpServer := pipeline.NewMCPServer(p, "toolgate", "test")
	toolSync, err := p.Attach(ctx, mcpServer)
	require.NoError(t, err)
	reg.SetToolAdditionCallback(toolSync.Add)
	reg.SetToolDeletionCallback(toolSync.Delete)

	c, err := client.NewInProcessClient(mcpServer)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Start(ctx))
	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "integration-test", Version: "1.0.0"}
	_, err = c.Initialize(ctx, initReq)
	require.NoError(t, err)

	listed := func() map[string]mcp.Tool {
		res, err := c.ListTools(ctx, mcp.ListToolsRequest{})
		require.NoError(t, err)
		out := make(map[string]mcp.Tool, len(res.Tools))
		for _, tool := range res.Tools {
			out[tool.Name] = tool
		}
		return out
	}

	// deprecated and restricted tools are hidden
	visible := listed()
	assert.Len(t, visible, 2)
	require.Contains(t, visible, "github__create_issue")
	require.Contains(t, visible, "whoami")

	// deprecated params are gone and external clients see no internal fields
	issue := visible["github__create_issue"]
	assert.Nil(t, issue.Meta)
	issueTool, err := mcpconv.ToolFromMCP(issue)
	require.NoError(t, err)
	assert.Equal(t, []string{"title"}, issueTool.InputSchema.PropertyNames())
	assert.Equal(t, []string{"title"}, issueTool.InputSchema.Required)
	assert.Nil(t, issueTool.CreditCost)

	// the registry itself still has everything
	raw, err := reg.ListRegisteredTools(ctx)
	require.NoError(t, err)
	assert.Len(t, raw, 4)

	// restricted tools are refused before reaching the registry
	callReq := mcp.CallToolRequest{}
	callReq.Params.Name = "github__delete_repo"
	res, err := c.CallTool(ctx, callReq)
	require.NoError(t, err)
	assert.True(t, res.IsError)

	// auth failures are data
	callReq.Params.Name = "whoami"
	res, err = c.CallTool(ctx, callReq)
	require.NoError(t, err)
	assert.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.JSONEq(t,
		`{"error":"credentials_not_found","message":"Auth required","service":"github","error_status":401}`,
		text.Text,
	)

	// disabling a tool in the registry removes it from the MCP server
	affected, err := reg.DisableTools("github__create_issue")
	require.NoError(t, err)
	assert.Equal(t, []string{"github__create_issue"}, affected)
	assert.NotContains(t, listed(), "github__create_issue")

	affected, err = reg.EnableTools("github")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"github__create_issue"}, affected)
	assert.Contains(t, listed(), "github__create_issue")
}
