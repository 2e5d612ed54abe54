// Package main applies the embedded schema migrations to the credential and
// audit database named by AUTH_DB_URL.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/pressly/goose/v3"

	"vertical/internal/platform/database"
	"vertical/migrations"
)

type migrator interface {
	Up(ctx context.Context) ([]*goose.MigrationResult, error)
	Down(ctx context.Context) (*goose.MigrationResult, error)
	Status(ctx context.Context) ([]*goose.MigrationStatus, error)
	GetDBVersion(ctx context.Context) (int64, error)
}

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}
	if os.Args[1] == "help" || os.Args[1] == "-h" || os.Args[1] == "--help" {
		printUsage(os.Stdout)
		return
	}

	cfg := database.DefaultConfig()
	cfg.URL = os.Getenv("AUTH_DB_URL")
	if cfg.URL == "" {
		fmt.Fprintln(os.Stderr, "AUTH_DB_URL is required")
		os.Exit(1)
	}
	pool, err := database.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close() //nolint:errcheck // process exit

	provider, err := migrations.NewProvider(pool.DB())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, provider, os.Args[1], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, m migrator, command string, out io.Writer) error {
	switch command {
	case "up":
		results, err := m.Up(ctx)
		for _, r := range results {
			fmt.Fprintf(out, "applied %s (%s)\n", r.Source.Path, r.Duration)
		}
		if err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
		if len(results) == 0 {
			fmt.Fprintln(out, "no pending migrations")
		}
		return nil
	case "down":
		r, err := m.Down(ctx)
		if err != nil {
			return fmt.Errorf("migrate down: %w", err)
		}
		fmt.Fprintf(out, "rolled back %s (%s)\n", r.Source.Path, r.Duration)
		return nil
	case "status":
		statuses, err := m.Status(ctx)
		if err != nil {
			return fmt.Errorf("migration status: %w", err)
		}
		for _, s := range statuses {
			applied := "pending"
			if s.State == goose.StateApplied {
				applied = s.AppliedAt.UTC().Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(out, "%-45s %s\n", s.Source.Path, applied)
		}
		return nil
	case "version":
		v, err := m.GetDBVersion(ctx)
		if err != nil {
			return fmt.Errorf("migration version: %w", err)
		}
		fmt.Fprintf(out, "version %d\n", v)
		return nil
	default:
		printUsage(out)
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, `migrate - Apply schema migrations

Requires AUTH_DB_URL.

Usage:
  migrate <command>

Commands:
  up       Apply all pending migrations
  down     Roll back the most recent migration
  status   List migrations and when they were applied
  version  Print the current schema version`)
}
