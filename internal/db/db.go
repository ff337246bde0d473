// Package db opens the toolgate registry database.
package db

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultSQLiteFile is used when no DSN is supplied.
const DefaultSQLiteFile = "toolgate.db"

// NewDBConnection opens a connection to the database identified by dsn.
// Postgres DSNs (postgres:// or postgresql://) use the postgres driver; anything else
// is treated as a SQLite file path. An empty dsn opens DefaultSQLiteFile.
func NewDBConnection(dsn string) (*gorm.DB, error) {
	conf := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	var dialector gorm.Dialector
	switch {
	case dsn == "":
		dialector = sqlite.Open(DefaultSQLiteFile)
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		dialector = postgres.Open(dsn)
	default:
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
