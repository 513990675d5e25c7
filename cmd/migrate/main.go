package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mentorlog/mentorlog-api/config"
	"github.com/mentorlog/mentorlog-api/pkg/db"
	"github.com/mentorlog/mentorlog-api/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	down := flag.Int("down", 0, "roll back this many migrations instead of migrating up")
	version := flag.Bool("version", false, "print the current schema version and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: "mentorlog-migrate",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	source := "file://" + cfg.Database.MigrationsPath
	fields := []zap.Field{zap.String("database", db.MaskURL(cfg.Database.URL)), zap.String("source", source)}

	switch {
	case *version:
		v, dirty, verr := db.MigrationVersion(cfg.Database.URL, source)
		if verr != nil {
			logger.Error("Failed to read migration version", append(fields, zap.Error(verr))...)
			os.Exit(1)
		}
		logger.Info("Current schema version", append(fields, zap.Uint("version", v), zap.Bool("dirty", dirty))...)

	case *down > 0:
		logger.Info("Rolling back migrations", append(fields, zap.Int("steps", *down))...)
		if rerr := db.RollbackMigrations(cfg.Database.URL, source, *down); rerr != nil {
			logger.Error("Failed to roll back migrations", zap.Error(rerr))
			os.Exit(1)
		}
		logger.Info("Rollback completed")

	default:
		logger.Info("Starting database migrations", fields...)
		if merr := db.RunMigrations(cfg.Database.URL, source); merr != nil {
			logger.Error("Failed to run migrations", zap.Error(merr))
			os.Exit(1)
		}
		logger.Info("Database migrations completed successfully")
	}
}
