package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mcpjungle/toolgate/internal/mcpconv"
	"github.com/mcpjungle/toolgate/pkg/types"
)

// listToolsHandler returns the tool catalog as the pipeline advertises it to clients.
func (s *Server) listToolsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tools, err := s.pipeline.ListTools(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, tools)
	}
}

func (s *Server) getToolHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Query("name")
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing 'name' query parameter"})
			return
		}

		tool, ok, err := s.pipeline.GetTool(c.Request.Context(), name)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("tool %s not found", name)})
			return
		}
		c.JSON(http.StatusOK, tool)
	}
}

// invokeToolHandler calls a tool through the pipeline.
// Tool failures are reported inside the result, so the response status is 200 whenever the
// request itself was valid.
func (s *Server) invokeToolHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.ToolInvokeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tool name is required"})
			return
		}

		res := s.pipeline.CallTool(c.Request.Context(), req.Name, req.Input)

		content, err := mcpconv.ContentToMaps(res.Content)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, &types.ToolInvokeResult{
			IsError:           res.IsError,
			Content:           content,
			StructuredContent: res.StructuredContent,
		})
	}
}

func (s *Server) enableToolsHandler() gin.HandlerFunc {
	return s.setToolsEnabledHandler(s.registry.EnableTools)
}

func (s *Server) disableToolsHandler() gin.HandlerFunc {
	return s.setToolsEnabledHandler(s.registry.DisableTools)
}

func (s *Server) setToolsEnabledHandler(apply func(entity string) ([]string, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input types.EnableDisableToolsInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if input.Entity == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "entity is required"})
			return
		}

		affected, err := apply(input.Entity)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if affected == nil {
			affected = []string{}
		}
		c.JSON(http.StatusOK, &types.EnableDisableToolsResult{ToolsAffected: affected})
	}
}
