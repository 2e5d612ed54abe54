//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"vertical/migrations"
	id "vertical/pkg/domain"
)

const (
	HunterSchema = "yavert"
	HunterTable  = "hundata"
)

// PostgresContainer wraps a testcontainers Postgres instance holding both the
// migrated credential/audit schema and a submissions table fixture.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// NewPostgresContainer starts a new Postgres container with migrations applied.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("vertical_test"),
		postgres.WithUsername("vertical"),
		postgres.WithPassword("vertical_test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to connect to postgres: %v", err)
	}

	pc := &PostgresContainer{
		Container: container,
		DSN:       dsn,
		DB:        db,
	}

	if err := migrations.Up(ctx, db); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to run migrations: %v", err)
	}
	if err := pc.createSubmissionsTable(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to create submissions fixture: %v", err)
	}

	// The container is shared through Manager; Ryuk removes it when the
	// test process exits.
	return pc
}

// createSubmissionsTable mirrors the externally owned history table.
func (p *PostgresContainer) createSubmissionsTable(ctx context.Context) error {
	table := pgx.Identifier{HunterSchema, HunterTable}.Sanitize()
	stmts := []string{
		`CREATE SCHEMA IF NOT EXISTS ` + pgx.Identifier{HunterSchema}.Sanitize(),
		`CREATE TABLE IF NOT EXISTS ` + table + ` (
			sub_no            VARCHAR(10) PRIMARY KEY,
			creation_datetime DATE NOT NULL,
			tel               VARCHAR(64) NOT NULL,
			phk1              VARCHAR(64) NOT NULL,
			dob               VARCHAR(64) NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_hundata_tel ON ` + table + ` (tel)`,
	}
	for _, stmt := range stmts {
		if _, err := p.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return nil
}

// TruncateTables clears all data from the specified tables.
// Use between tests to ensure isolation without restarting the container.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		_, err := p.DB.ExecContext(ctx, "TRUNCATE TABLE "+table+" CASCADE")
		if err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	return nil
}

// TruncateAll clears every table the service writes to plus the submissions fixture.
func (p *PostgresContainer) TruncateAll(ctx context.Context) error {
	return p.TruncateTables(ctx,
		"identifications",
		"responses",
		"requests",
		"contracts",
		"clients",
		pgx.Identifier{HunterSchema, HunterTable}.Sanitize(),
	)
}

// Exec runs a SQL statement and returns the result.
func (p *PostgresContainer) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return p.DB.ExecContext(ctx, query, args...)
}

// QueryRow runs a SQL query expected to return a single row.
func (p *PostgresContainer) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return p.DB.QueryRowContext(ctx, query, args...)
}

// CreateTestContract inserts a client and a contract carrying token.
// Fails the test if insertion fails.
func (p *PostgresContainer) CreateTestContract(ctx context.Context, t testing.TB, token string, expiredAt, revokedAt *time.Time) id.ContractID {
	t.Helper()
	clientID := uuid.New()
	contractID := uuid.New()
	if _, err := p.Exec(ctx,
		`INSERT INTO clients (client_id, name) VALUES ($1, $2)`,
		clientID, "client-"+clientID.String()[:8],
	); err != nil {
		t.Fatalf("CreateTestContract client: %v", err)
	}
	if _, err := p.Exec(ctx, `
		INSERT INTO contracts (contract_id, client_id, token, expired_at, revoked_at)
		VALUES ($1, $2, $3, $4, $5)
	`, contractID, clientID, token, expiredAt, revokedAt); err != nil {
		t.Fatalf("CreateTestContract contract: %v", err)
	}
	return id.ContractID(contractID)
}

// InsertSubmission adds a row to the submissions fixture.
func (p *PostgresContainer) InsertSubmission(ctx context.Context, t testing.TB, subNo string, date time.Time, tel, name, dob string) {
	t.Helper()
	table := pgx.Identifier{HunterSchema, HunterTable}.Sanitize()
	if _, err := p.Exec(ctx,
		`INSERT INTO `+table+` (sub_no, creation_datetime, tel, phk1, dob) VALUES ($1, $2, $3, $4, $5)`,
		subNo, date, tel, name, dob,
	); err != nil {
		t.Fatalf("InsertSubmission: %v", err)
	}
}
