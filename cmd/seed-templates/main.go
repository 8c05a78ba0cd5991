// Package main provides a CLI tool to provision the system evaluation templates.
// Usage: go run cmd/seed-templates/main.go -env .env
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/secinto/hrms_backend/internal/config"
	"github.com/secinto/hrms_backend/internal/logger"
	"github.com/secinto/hrms_backend/internal/seed"
	"github.com/secinto/hrms_backend/internal/services"
	"github.com/secinto/hrms_backend/internal/storage"
)

// databaseSettings is the part of the server configuration this tool needs
// #IMPLEMENTATION_DECISION: Reads only database settings so JWT keys are not required for seeding
type databaseSettings struct {
	DatabaseDriver       string `envconfig:"DATABASE_DRIVER" default:"mongo"`
	DatabaseURI          string `envconfig:"DATABASE_URI" default:"mongodb://localhost:27017"`
	DatabaseName         string `envconfig:"DATABASE_NAME" default:"hrms"`
	PostgresDSN          string `envconfig:"POSTGRES_DSN" default:"host=localhost port=5432 user=hrms password=hrms dbname=hrms sslmode=disable"`
	PostgresMaxOpenConns int    `envconfig:"POSTGRES_MAX_OPEN_CONNS" default:"5"`
	PostgresMaxIdleConns int    `envconfig:"POSTGRES_MAX_IDLE_CONNS" default:"1"`
	LogLevel             string `envconfig:"LOG_LEVEL" default:"info"`
}

func main() {
	envFile := flag.String("env", "", "Path to .env file (defaults to .env in current dir or backend dir)")
	dryRun := flag.Bool("dry-run", false, "Print the templates without writing to the database")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Creates the system evaluation templates that do not exist yet.\n\n")
		fmt.Fprintf(os.Stderr, "Configuration is loaded from .env file and/or environment variables.\n")
		fmt.Fprintf(os.Stderr, "Environment variables take precedence over .env file values.\n\n")
		fmt.Fprintf(os.Stderr, "Config (via .env or environment):\n")
		fmt.Fprintf(os.Stderr, "  HRMS_DATABASE_DRIVER  mongo, postgres or memory (default: mongo)\n")
		fmt.Fprintf(os.Stderr, "  HRMS_DATABASE_URI     MongoDB connection URI\n")
		fmt.Fprintf(os.Stderr, "  HRMS_DATABASE_NAME    Database name (default: hrms)\n")
		fmt.Fprintf(os.Stderr, "  HRMS_POSTGRES_DSN     PostgreSQL DSN\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -env /path/to/.env -dry-run\n", os.Args[0])
	}

	flag.Parse()

	// Load .env file
	loadEnvFile(*envFile)

	templates := seed.SystemTemplates()
	fmt.Println("=== System Templates ===")
	for _, t := range templates {
		fmt.Printf("  %-28s %d questions\n", t.Title, len(t.Questions))
	}
	fmt.Println()

	if *dryRun {
		fmt.Println("[DRY RUN] No changes made to database")
		return
	}

	var settings databaseSettings
	if err := envconfig.Process(config.Prefix, &settings); err != nil {
		log.Fatalf("Error: invalid configuration: %v", err)
	}

	appLogger, err := logger.New(settings.LogLevel, "console")
	if err != nil {
		log.Fatalf("Error: failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	store, err := storage.Open(ctx, &config.Config{
		DatabaseDriver:       settings.DatabaseDriver,
		DatabaseURI:          settings.DatabaseURI,
		DatabaseName:         settings.DatabaseName,
		PostgresDSN:          settings.PostgresDSN,
		PostgresMaxOpenConns: settings.PostgresMaxOpenConns,
		PostgresMaxIdleConns: settings.PostgresMaxIdleConns,
	}, appLogger)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		if closeErr := store.Close(ctx); closeErr != nil {
			log.Printf("Error closing database connection: %v", closeErr)
		}
	}()

	seeder := seed.NewSeeder(services.NewQuestionnaireService(store.Repos, appLogger), appLogger)
	result, err := seeder.SeedTemplates(ctx)
	if err != nil {
		log.Printf("Failed to seed templates: %v", err)
		return
	}

	for _, title := range result.Created {
		fmt.Printf("✓ Created template: %s\n", title)
	}
	if len(result.Skipped) > 0 {
		fmt.Printf("Skipped existing: %s\n", strings.Join(result.Skipped, ", "))
	}
	fmt.Println()
	fmt.Println("Template seeding complete!")
}

func loadEnvFile(path string) {
	if path == "" {
		// Try to find .env in current dir or backend dir
		cwd, _ := os.Getwd()
		if _, err := os.Stat(filepath.Join(cwd, ".env")); err == nil {
			path = ".env"
		} else if _, err := os.Stat(filepath.Join(cwd, "backend", ".env")); err == nil {
			path = filepath.Join(cwd, "backend", ".env")
		}
	}

	if path != "" {
		if err := godotenv.Load(path); err != nil {
			log.Printf("Error loading .env file: %v", err)
		}
	}
}
