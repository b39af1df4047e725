package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/laundrybox/reconciler/internal/config"
	"github.com/laundrybox/reconciler/internal/logger"
	"github.com/laundrybox/reconciler/migrations"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

func main() {
	// Parse command line flags
	dryRun := flag.Bool("dry-run", false, "Print migration status without applying anything")
	down := flag.Bool("down", false, "Roll back the most recent migration")
	flag.Parse()

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	dsn := cfg.Postgres.GetDSN()
	logger.Infow("Connecting to database", "host", cfg.Postgres.Host)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		logger.Fatalw("Failed to connect to postgres", "error", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		logger.Fatalw("Failed to set goose dialect", "error", err)
	}

	switch {
	case *dryRun:
		logger.Info("Dry run mode - printing migration status without applying")
		if err := goose.Status(db.DB, "."); err != nil {
			logger.Fatalw("Failed to read migration status", "error", err)
		}
	case *down:
		logger.Info("Rolling back the latest migration...")
		if err := goose.Down(db.DB, "."); err != nil {
			logger.Fatalw("Failed to roll back migration", "error", err)
		}
	default:
		logger.Info("Running database migrations...")
		if err := goose.Up(db.DB, "."); err != nil {
			logger.Fatalw("Failed to apply migrations", "error", err)
		}
		logger.Info("Migration completed successfully")
	}

	fmt.Println("Migration process completed")
}
