// Package logging builds the process logger for toolgate.
//
// Every logger built here redacts URLs on sensitive domains from the message, the textual
// fields and the errors of each entry, so that credentials embedded in upstream MCP server
// URLs never reach the log output.
package logging

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New.
type Options struct {
	// Level is a zap level name. Empty means "info".
	Level string

	// Development selects the human-friendly console encoder.
	Development bool

	// RedactDomains lists the sensitive root domains.
	RedactDomains []string
}

// New builds a redacting zap logger.
func New(opts Options) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if opts.Development {
		zc = zap.NewDevelopmentConfig()
	}

	if opts.Level != "" {
		lvl, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level '%s': %w", opts.Level, err)
		}
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return RedactURLLogs(l, NewRedactor(opts.RedactDomains...)), nil
}

// GinMiddleware logs one entry per HTTP request through logger.
// It replaces gin's default stdout logger so that request paths are redacted as well.
func GinMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		fields := []zapcore.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.Error("request", fields...)
		case c.Writer.Status() >= 400:
			logger.Warn("request", fields...)
		default:
			logger.Debug("request", fields...)
		}
	}
}
