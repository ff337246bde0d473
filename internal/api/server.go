// Package api provides HTTP API functionality for the toolgate server.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mcpjungle/toolgate/internal/logging"
	"github.com/mcpjungle/toolgate/internal/pipeline"
	"github.com/mcpjungle/toolgate/internal/registry"
	"github.com/mcpjungle/toolgate/internal/telemetry"
	"github.com/mcpjungle/toolgate/pkg/types"
	"github.com/mcpjungle/toolgate/pkg/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const (
	V0PathPrefix    = "/v0"
	V0ApiPathPrefix = "/api" + V0PathPrefix
)

const shutdownTimeout = 10 * time.Second

type ServerOptions struct {
	// Port is the HTTP port to bind the server to
	Port string

	// MCPServer is the MCP server exposing the pipeline-filtered tools on /mcp and /sse.
	MCPServer *server.MCPServer

	Pipeline *pipeline.Pipeline
	Registry *registry.Registry

	Logger        *zap.Logger
	OtelProviders *telemetry.Providers
}

// Server serves the toolgate MCP endpoints and the management API
type Server struct {
	port   string
	router *gin.Engine
	logger *zap.Logger

	mcpServer *server.MCPServer
	pipeline  *pipeline.Pipeline
	registry  *registry.Registry

	otelProviders *telemetry.Providers
}

// NewServer initializes a new Gin server for the toolgate API and MCP endpoints
func NewServer(opts *ServerOptions) (*Server, error) {
	if opts.MCPServer == nil || opts.Pipeline == nil || opts.Registry == nil {
		return nil, errors.New("api server requires an MCP server, a pipeline and a registry")
	}
	s := &Server{
		port:          opts.Port,
		logger:        opts.Logger,
		mcpServer:     opts.MCPServer,
		pipeline:      opts.Pipeline,
		registry:      opts.Registry,
		otelProviders: opts.OtelProviders,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	r, err := s.setupRouter()
	if err != nil {
		return nil, err
	}
	s.router = r

	return s, nil
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP requests until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("toolgate server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to run the server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down the server: %w", err)
	}
	return nil
}

// setupRouter sets up the Gin router with the MCP endpoints and API endpoints.
func (s *Server) setupRouter() (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), logging.GinMiddleware(s.logger))

	// if otel is enabled, setup prometheus metrics endpoint
	if s.otelProviders != nil && s.otelProviders.IsEnabled() {
		r.Use(otelgin.Middleware(s.otelProviders.ServiceName()))
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.GET(
		"/health",
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		},
	)

	r.GET(
		"/metadata",
		func(c *gin.Context) {
			m := &types.ServerMetadata{
				Version: version.GetVersion(),
			}
			c.JSON(http.StatusOK, m)
		},
	)

	streamableHTTPServer := server.NewStreamableHTTPServer(s.mcpServer)
	r.Any("/mcp", gin.WrapH(streamableHTTPServer))

	sseServer := server.NewSSEServer(s.mcpServer)
	r.Any("/sse", gin.WrapH(sseServer.SSEHandler()))
	r.Any("/message", gin.WrapH(sseServer.MessageHandler()))

	apiV0 := r.Group(V0ApiPathPrefix)
	{
		apiV0.GET("/tools", s.listToolsHandler())
		apiV0.GET("/tool", s.getToolHandler())
		apiV0.POST("/tools/invoke", s.invokeToolHandler())
		apiV0.POST("/tools/enable", s.enableToolsHandler())
		apiV0.POST("/tools/disable", s.disableToolsHandler())

		apiV0.GET("/servers", s.listServersHandler())
		apiV0.POST("/servers", s.registerServerHandler())
		apiV0.DELETE("/servers/:name", s.deregisterServerHandler())

		apiV0.GET("/config/pipeline", s.getPipelineConfigHandler())
	}

	return r, nil
}

func (s *Server) getPipelineConfigHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, s.pipeline.Config())
	}
}
