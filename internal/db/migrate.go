package db

import (
	"battlezone/internal/config" // Configuration
	"battlezone/internal/domain" // Importing domain models
	"battlezone/internal/store"  // Catalog seeding
	"context"                    // Seeding context
	"fmt"                        // Error formatting

	"github.com/sirupsen/logrus"     // Logging library
	"gorm.io/driver/mysql"           // MySQL driver for GORM
	"gorm.io/driver/postgres"        // Postgres driver for GORM
	"gorm.io/gorm"                   // GORM ORM library
	gormlogger "gorm.io/gorm/logger" // GORM logger
)

// Models lists every table the service owns, in dependency order
var Models = []any{
	&domain.Game{},
	&domain.User{},
	&domain.Tournament{},
	&domain.Participant{},
	&domain.Reward{},
	&domain.LedgerEntry{},
	&domain.Transfer{},
	&domain.RejectedTransfer{},
}

// Open connects to the SQL database named by cfg
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverMySQL:
		dialector = mysql.Open(cfg.DSN()) // MySQL connection
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN()) // Postgres connection
	default:
		return nil, fmt.Errorf("driver %q has no SQL database", cfg.DBDriver)
	}
	level := gormlogger.Warn // Only slow queries and errors
	if !cfg.IsProd {
		level = gormlogger.Info
	}
	return gorm.Open(dialector, &gorm.Config{
		TranslateError: true,                              // Surface duplicate keys as gorm.ErrDuplicatedKey
		Logger:         gormlogger.Default.LogMode(level), // SQL logging
	})
}

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if err := store.SeedGames(context.Background(), store.NewGormStore(db)); err != nil {
		return fmt.Errorf("seeding games failed: %w", err)
	}
	logrus.WithField("tables", len(Models)).Info("Migration completed.") // Log successful migration
	return nil
}
