// Package registry keeps track of the tools toolgate can serve.
//
// Tools come from upstream MCP servers, whose descriptors are persisted in the database,
// and from native tools registered in-process. The registry produces the raw tool catalog
// and performs raw tool invocations; it applies no client-facing policy.
package registry

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mcpjungle/toolgate/internal/model"
	"github.com/mcpjungle/toolgate/internal/telemetry"
	"github.com/mcpjungle/toolgate/pkg/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Config holds the collaborators of a Registry.
type Config struct {
	DB *gorm.DB

	// Logger defaults to a no-op logger.
	Logger *zap.Logger

	// Metrics defaults to a no-op implementation.
	Metrics telemetry.CustomMetrics

	// McpServerInitReqTimeout is the number of seconds to wait for an upstream server
	// to answer the initialization request. Zero means 10 seconds.
	McpServerInitReqTimeout int
}

// Registry coordinates the registry database, the in-memory tool index and upstream MCP servers.
type Registry struct {
	db      *gorm.DB
	logger  *zap.Logger
	metrics telemetry.CustomMetrics

	initReqTimeout time.Duration
	dial           upstreamDialer

	// tools indexes the enabled upstream tools by canonical name.
	tools map[string]types.Tool
	// native holds the in-process tools by name.
	native map[string]nativeTool
	mu     sync.RWMutex

	toolAdditionCallback ToolAdditionCallback
	toolDeletionCallback ToolDeletionCallback
}

// New creates a Registry and loads the enabled tools of every registered server from the database.
func New(c *Config) (*Registry, error) {
	if c.DB == nil {
		return nil, errors.New("registry requires a database connection")
	}
	r := &Registry{
		db:             c.DB,
		logger:         c.Logger,
		metrics:        c.Metrics,
		initReqTimeout: time.Duration(c.McpServerInitReqTimeout) * time.Second,

		tools:  make(map[string]types.Tool),
		native: make(map[string]nativeTool),

		toolAdditionCallback: func(types.Tool) error { return nil },
		toolDeletionCallback: func(...string) {},
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.metrics == nil {
		r.metrics = telemetry.NewNoopCustomMetrics()
	}
	if r.initReqTimeout <= 0 {
		r.initReqTimeout = defaultInitReqTimeout
	}
	r.dial = r.dialUpstream

	if err := r.loadTools(); err != nil {
		return nil, fmt.Errorf("failed to load tools from the registry database: %w", err)
	}
	return r, nil
}

// loadTools fills the in-memory index from the database.
// A tool whose record cannot be decoded is logged and skipped.
func (r *Registry) loadTools() error {
	var servers []model.McpServer
	if err := r.db.Find(&servers).Error; err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range servers {
		var tools []model.Tool
		if err := r.db.Where("server_id = ? AND enabled = ?", s.ID, true).Find(&tools).Error; err != nil {
			return fmt.Errorf("failed to get tools for server %s: %w", s.Name, err)
		}
		for i := range tools {
			name := mergeServerToolNames(s.Name, tools[i].Name)
			t, err := toolTypeFromModel(&tools[i], name, r.logger)
			if err != nil {
				r.logger.Error("skipping tool with a corrupt record", zap.String("tool", name), zap.Error(err))
				continue
			}
			r.tools[name] = t
		}
	}
	r.logger.Info("loaded tools from the registry database",
		zap.Int("servers", len(servers)), zap.Int("tools", len(r.tools)))
	return nil
}
