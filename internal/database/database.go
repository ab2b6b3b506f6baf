package database

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/petermazzocco/prompt-image-app/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to Postgres when dsn looks like a Postgres URL or keyword
// DSN, and to a SQLite file otherwise. The schema is auto-migrated.
func Open(dsn string) (*gorm.DB, error) {
	dialector := dialectorFor(dsn)

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to %s database: %w", dialector.Name(), err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Prompt{}); err != nil {
		return nil, fmt.Errorf("auto migrating models: %w", err)
	}

	slog.Info("database ready", "dialect", dialector.Name())
	return db, nil
}

func dialectorFor(dsn string) gorm.Dialector {
	if isPostgres(dsn) {
		return postgres.Open(dsn)
	}
	return sqlite.Open(sqliteDSN(dsn))
}

// sqliteDSN turns on foreign keys for every pooled connection.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}
