package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/example/schemaflow/internal/config"
	"github.com/example/schemaflow/internal/database"
	"github.com/example/schemaflow/internal/migration"
	"github.com/example/schemaflow/internal/utils"
)

const version = "v0.1.0"

func main() {
	var (
		configPath     = flag.String("config", "", "Path to configuration file")
		dir            = flag.String("dir", "", "Migrations directory (overrides config)")
		testMigrations = flag.Bool("test-migrations", false, "Also run test-marked migrations")
		logLevel       = flag.String("log-level", "", "Log level (overrides config)")
	)
	flag.Parse()

	cfg, err := loadConfiguration(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Flags win over config file and environment
	if *dir != "" {
		cfg.Migrations.Directory = *dir
	}
	if *testMigrations {
		cfg.Migrations.RunTestMigrations = true
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	logger := setupLogging(cfg)
	logger.Info().
		Str("version", version).
		Str("driver", cfg.Database.Driver).
		Str("directory", cfg.Migrations.Directory).
		Bool("test_migrations", cfg.Migrations.RunTestMigrations).
		Msg("Starting migration run")

	db := database.New(cfg)
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}()

	runner := migration.NewRunner(db, logger, migration.Options{
		Directory:         cfg.Migrations.Directory,
		RunTestMigrations: cfg.Migrations.RunTestMigrations,
	})

	report, err := runner.Run(context.Background())
	if report != nil {
		printReport(report)
	}
	if err != nil {
		logger.Error().Err(err).Msg("Migration run failed")
		os.Exit(1)
	}
	if report.Failed() > 0 {
		os.Exit(1)
	}
}

// loadConfiguration loads the application configuration
func loadConfiguration(configPath string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		// Fall back to defaults when no usable config exists
		cfg = config.NewDefault()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// setupLogging configures the application logger
func setupLogging(cfg *config.Config) zerolog.Logger {
	logConfig := utils.LoggerConfig{
		Level:   cfg.Log.Level,
		Pretty:  cfg.Log.Pretty,
		LogFile: cfg.Log.File,
	}

	utils.SetupGlobalLogger(logConfig)
	return utils.NewLogger(logConfig)
}

// printReport writes the per-file outcomes to stdout
func printReport(report *migration.Report) {
	for _, result := range report.Results {
		switch result.Outcome {
		case migration.OutcomeFailed:
			fmt.Printf("%-8s %s: %v\n", result.Outcome, result.Name, result.Err)
		default:
			fmt.Printf("%-8s %s\n", result.Outcome, result.Name)
		}
	}
	fmt.Printf("applied %d, skipped %d, failed %d\n",
		report.Applied(), report.Skipped(), report.Failed())
}
