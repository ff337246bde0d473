package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcpjungle/toolgate/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterServer registers an upstream MCP server and all the tools it currently offers.
// The server is contacted before anything is persisted; if it cannot be reached, nothing is registered.
func (r *Registry) RegisterServer(ctx context.Context, s *model.McpServer) error {
	if err := validateServerName(s.Name); err != nil {
		return err
	}

	var existing model.McpServer
	err := r.db.Where("name = ?", s.Name).First(&existing).Error
	if err == nil {
		return fmt.Errorf("MCP server %s already exists", s.Name)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up MCP server %s: %w", s.Name, err)
	}

	c, err := r.dial(ctx, s)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := r.db.Create(s).Error; err != nil {
		return fmt.Errorf("failed to register MCP server %s in DB: %w", s.Name, err)
	}

	if err := r.registerServerTools(ctx, s, c); err != nil {
		// leave no half-registered server behind
		if delErr := r.db.Unscoped().Delete(s).Error; delErr != nil {
			r.logger.Error("failed to roll back server registration",
				zap.String("server", s.Name), zap.Error(delErr))
		}
		return err
	}

	r.logger.Info("registered MCP server", zap.String("server", s.Name), zap.String("transport", string(s.Transport)))
	return nil
}

// GetServer returns the registered MCP server with the given name.
func (r *Registry) GetServer(name string) (*model.McpServer, error) {
	var s model.McpServer
	if err := r.db.Where("name = ?", name).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("MCP server %s not found", name)
		}
		return nil, fmt.Errorf("failed to get MCP server %s: %w", name, err)
	}
	return &s, nil
}

// ListServers returns all registered MCP servers.
func (r *Registry) ListServers() ([]model.McpServer, error) {
	var servers []model.McpServer
	if err := r.db.Order("name").Find(&servers).Error; err != nil {
		return nil, fmt.Errorf("failed to list MCP servers: %w", err)
	}
	return servers, nil
}

// DeregisterServer removes an MCP server and all of its tools from toolgate.
func (r *Registry) DeregisterServer(name string) error {
	s, err := r.GetServer(name)
	if err != nil {
		return err
	}
	if err := r.deregisterServerTools(s); err != nil {
		return err
	}
	if err := r.db.Unscoped().Delete(s).Error; err != nil {
		return fmt.Errorf("failed to delete MCP server %s: %w", name, err)
	}
	r.logger.Info("deregistered MCP server", zap.String("server", name))
	return nil
}
