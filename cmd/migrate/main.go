package main

import (
	"battlezone/internal/config" // Custom import path (Config)
	"battlezone/internal/db"     // Custom import path (Database)
	"os"                         // Process arguments

	"github.com/sirupsen/logrus" // Logging library
	"github.com/spf13/pflag"     // Command line flags
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration

	flagSet := pflag.NewFlagSet("migrate", pflag.ExitOnError)
	flagSet.StringVar(&cfg.DBDriver, "driver", cfg.DBDriver, "database driver: mysql or postgres (default from DB_DRIVER)")
	flagSet.StringVar(&cfg.DBHost, "host", cfg.DBHost, "database host (default from DB_HOST)")
	flagSet.StringVar(&cfg.DBName, "database", cfg.DBName, "database name (default from DB_NAME)")
	_ = flagSet.Parse(os.Args[1:])

	conn, err := db.Open(cfg) // Connect using the configured driver
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		logrus.Fatal(err)
	}
}
