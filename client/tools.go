package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mcpjungle/toolgate/pkg/types"
)

// ListTools returns the tools the toolgate pipeline exposes to clients
func (c *Client) ListTools() ([]*types.Tool, error) {
	u, _ := c.constructAPIEndpoint("/tools")

	req, err := c.newRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request to %s: %w", u, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var tools []*types.Tool
	if err := json.NewDecoder(resp.Body).Decode(&tools); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return tools, nil
}

// GetTool fetches a single tool by its name
func (c *Client) GetTool(name string) (*types.Tool, error) {
	u, _ := c.constructAPIEndpoint("/tool")
	u += "?" + url.Values{"name": {name}}.Encode()

	req, err := c.newRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request to %s: %w", u, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var tool types.Tool
	if err := json.NewDecoder(resp.Body).Decode(&tool); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &tool, nil
}

// InvokeTool calls a tool through toolgate.
// A failing tool is not an error here: check IsError of the returned result.
func (c *Client) InvokeTool(name string, input map[string]any) (*types.ToolInvokeResult, error) {
	u, _ := c.constructAPIEndpoint("/tools/invoke")

	body, err := json.Marshal(&types.ToolInvokeRequest{Name: name, Input: input})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := c.newRequest(http.MethodPost, u, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request to %s: %w", u, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var result types.ToolInvokeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// EnableTools enables a tool, or all tools of a server when entity is a server name
func (c *Client) EnableTools(entity string) ([]string, error) {
	return c.setToolsEnabled("/tools/enable", entity)
}

// DisableTools disables a tool, or all tools of a server when entity is a server name
func (c *Client) DisableTools(entity string) ([]string, error) {
	return c.setToolsEnabled("/tools/disable", entity)
}

func (c *Client) setToolsEnabled(path, entity string) ([]string, error) {
	u, _ := c.constructAPIEndpoint(path)

	body, err := json.Marshal(&types.EnableDisableToolsInput{Entity: entity})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := c.newRequest(http.MethodPost, u, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request to %s: %w", u, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var result types.EnableDisableToolsResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return result.ToolsAffected, nil
}
