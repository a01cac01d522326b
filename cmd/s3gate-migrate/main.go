// Package main runs the embedded schema migrations for s3gate's sqlite or
// postgres credential store. Both credsource/sqlite.NewDB and
// credsource/postgres.NewDB apply their embedded migrations.*.sql files as
// part of connecting, so this tool's job is simply to open the configured
// store and report the outcome.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/harborlane/s3gate/internal/config"
	"github.com/harborlane/s3gate/internal/credsource/postgres"
	"github.com/harborlane/s3gate/internal/credsource/sqlite"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("s3gate Migration Tool\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "up":
		runMigrations()

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`s3gate Migration Tool

Usage:
  s3gate-migrate <command>

Commands:
  up        Apply the credential store's embedded schema migrations
  version   Print version information
  help      Show this help message

s3gate-migrate reads the same configuration as s3gate-server
(credential_source.driver); running "up" opens that store once, which
applies any pending migrations, then closes it.`)
}

func runMigrations() {
	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	switch cfg.CredSource.Driver {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.CredSource.SQLitePath), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating database directory: %v\n", err)
			os.Exit(1)
		}
		db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(cfg.CredSource.SQLitePath), logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error applying sqlite migrations: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()
		fmt.Printf("sqlite credential store at %s is up to date.\n", cfg.CredSource.SQLitePath)

	case "postgres":
		db, err := postgres.NewDB(ctx, postgres.Config{
			Host:     cfg.CredSource.PostgresHost,
			Port:     cfg.CredSource.PostgresPort,
			Database: cfg.CredSource.PostgresDatabase,
			User:     cfg.CredSource.PostgresUser,
			Password: cfg.CredSource.PostgresPassword,
			SSLMode:  cfg.CredSource.PostgresSSLMode,
		}, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error applying postgres migrations: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()
		fmt.Printf("postgres credential store %s is up to date.\n", cfg.CredSource.PostgresDatabase)

	default:
		fmt.Printf("credential_source.driver %q has no schema to migrate.\n", cfg.CredSource.Driver)
	}
}
