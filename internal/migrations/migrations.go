// Package migrations keeps the registry database schema up to date.
package migrations

import (
	"fmt"

	"github.com/mcpjungle/toolgate/internal/model"
	"gorm.io/gorm"
)

// Migrate creates or updates the tables of every registry model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.McpServer{},
		&model.Tool{},
	); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	return nil
}
