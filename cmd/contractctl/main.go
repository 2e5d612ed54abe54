// Package main provides a CLI for provisioning and retiring client contracts.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"vertical/internal/auth/models"
	authservice "vertical/internal/auth/service"
	contractstore "vertical/internal/auth/store/contract"
	identstore "vertical/internal/auth/store/identification"
	"vertical/internal/platform/database"
	"vertical/internal/platform/logger"
)

const timeLayout = authservice.TimestampLayout

type contractOutput struct {
	ClientID   string `json:"client_id,omitempty"`
	ClientName string `json:"client_name,omitempty"`
	ContractID string `json:"contract_id"`
	Token      string `json:"token"`
	CreatedAt  string `json:"created_at"`
	ExpiredAt  string `json:"expired_at,omitempty"`
	RevokedAt  string `json:"revoked_at,omitempty"`
}

// ContractAdmin is the part of the auth service this tool drives.
type ContractAdmin interface {
	Provision(ctx context.Context, name string) (*models.Client, *models.Contract, error)
	Revoke(ctx context.Context, token string, at time.Time) (*models.Contract, error)
	Expire(ctx context.Context, token string, at time.Time) (*models.Contract, error)
}

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}
	switch os.Args[1] {
	case "help", "-h", "--help":
		printUsage(os.Stdout)
		return
	}

	dsn := os.Getenv("AUTH_DB_URL")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "AUTH_DB_URL is required")
		os.Exit(1)
	}
	cfg := database.DefaultConfig()
	cfg.URL = dsn
	pool, err := database.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close() //nolint:errcheck // process exit

	svc := authservice.New(
		contractstore.NewPostgres(pool.DB(), pool.OpTimeout()),
		identstore.NewPostgres(pool.DB(), pool.OpTimeout()),
		authservice.WithLogger(logger.Named(logger.New(os.Getenv("LOG_LEVEL")), logger.Auth)),
	)

	if err := run(context.Background(), svc, os.Args[1:], os.Stdout, time.Now); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, svc ContractAdmin, args []string, out io.Writer, now func() time.Time) error {
	provisionCmd := flag.NewFlagSet("provision", flag.ContinueOnError)
	provisionName := provisionCmd.String("name", "", "Client name (unique, up to 64 characters)")
	provisionJSON := provisionCmd.Bool("json", false, "Output as JSON")

	revokeCmd := flag.NewFlagSet("revoke", flag.ContinueOnError)
	revokeToken := revokeCmd.String("token", "", "Contract token")
	revokeAt := revokeCmd.String("at", "", "Revocation time, UTC '"+timeLayout+"' (default now)")
	revokeJSON := revokeCmd.Bool("json", false, "Output as JSON")

	expireCmd := flag.NewFlagSet("expire", flag.ContinueOnError)
	expireToken := expireCmd.String("token", "", "Contract token")
	expireAt := expireCmd.String("at", "", "Expiry time, UTC '"+timeLayout+"' (default now)")
	expireJSON := expireCmd.Bool("json", false, "Output as JSON")

	switch args[0] {
	case "provision":
		if err := provisionCmd.Parse(args[1:]); err != nil {
			return err
		}
		client, contract, err := svc.Provision(ctx, *provisionName)
		if err != nil {
			return err
		}
		return printContract(out, client, contract, *provisionJSON)
	case "revoke":
		if err := revokeCmd.Parse(args[1:]); err != nil {
			return err
		}
		at, err := parseAt(*revokeAt, now)
		if err != nil {
			return err
		}
		contract, err := svc.Revoke(ctx, *revokeToken, at)
		if err != nil {
			return err
		}
		return printContract(out, nil, contract, *revokeJSON)
	case "expire":
		if err := expireCmd.Parse(args[1:]); err != nil {
			return err
		}
		at, err := parseAt(*expireAt, now)
		if err != nil {
			return err
		}
		contract, err := svc.Expire(ctx, *expireToken, at)
		if err != nil {
			return err
		}
		return printContract(out, nil, contract, *expireJSON)
	default:
		printUsage(out)
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func parseAt(raw string, now func() time.Time) (time.Time, error) {
	if raw == "" {
		return now().UTC(), nil
	}
	at, err := time.ParseInLocation(timeLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, errors.New("invalid -at, expected " + timeLayout)
	}
	return at, nil
}

func printContract(out io.Writer, client *models.Client, contract *models.Contract, jsonOutput bool) error {
	o := contractOutput{
		ContractID: contract.ID.String(),
		Token:      contract.Token,
		CreatedAt:  contract.CreatedAt.UTC().Format(timeLayout),
		ExpiredAt:  formatOptional(contract.ExpiredAt),
		RevokedAt:  formatOptional(contract.RevokedAt),
	}
	if client != nil {
		o.ClientID = client.ID.String()
		o.ClientName = client.Name
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(o)
	}

	fmt.Fprintln(out, "Contract")
	fmt.Fprintln(out, "========")
	if client != nil {
		fmt.Fprintf(out, "Client:      %s (%s)\n", o.ClientName, o.ClientID)
	}
	fmt.Fprintf(out, "Contract ID: %s\n", o.ContractID)
	fmt.Fprintf(out, "Created At:  %s\n", o.CreatedAt)
	if o.ExpiredAt != "" {
		fmt.Fprintf(out, "Expired At:  %s\n", o.ExpiredAt)
	}
	if o.RevokedAt != "" {
		fmt.Fprintf(out, "Revoked At:  %s\n", o.RevokedAt)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Token:")
	fmt.Fprintln(out, o.Token)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, `  curl -H "Authorization: Bearer <token>" -H "Content-Type: application/json" http://localhost:8080/...`)
	return nil
}

func formatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, `contractctl - Manage client contracts

Requires AUTH_DB_URL.

Usage:
  contractctl <command> [flags]

Commands:
  provision  Create a client and issue its first contract token
  revoke     Revoke a contract by token
  expire     Expire a contract by token

Examples:
  # Register a partner and print its bearer token
  contractctl provision -name "acme"

  # Revoke immediately
  contractctl revoke -token "<token>"

  # Schedule expiry
  contractctl expire -token "<token>" -at "2025.01.01 00:00:00"

  # Output as JSON
  contractctl provision -name "acme" -json

Use "contractctl <command> -h" for more information about a command.`)
}
