package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vertical/internal/audit/models"
	"vertical/internal/platform/database"
	"vertical/pkg/platform/sentinel"
)

// PostgresStore persists request and response records in PostgreSQL.
type PostgresStore struct {
	db      *sql.DB
	timeout time.Duration
}

// NewPostgres constructs a PostgreSQL-backed audit store.
func NewPostgres(db *sql.DB, timeout time.Duration) *PostgresStore {
	return &PostgresStore{db: db, timeout: timeout}
}

// SaveRequest inserts the request row. A correlation id can be recorded once.
func (s *PostgresStore) SaveRequest(ctx context.Context, req *models.Request) error {
	if req == nil {
		return fmt.Errorf("request record is required")
	}
	ctx, cancel := database.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := `
		INSERT INTO requests (request_id, remote, method, path, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(req.ID),
		nullString(models.TruncateRemoteAddr(req.RemoteAddr)),
		req.Method,
		req.Path,
		jsonb(req.Body),
		req.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("request %s already recorded: %w", req.ID, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

// SaveResponse inserts the response row for a previously recorded request.
func (s *PostgresStore) SaveResponse(ctx context.Context, resp *models.Response) error {
	if resp == nil {
		return fmt.Errorf("response record is required")
	}
	ctx, cancel := database.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := `
		INSERT INTO responses (request_id, body, code, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(resp.RequestID),
		jsonb(resp.Body),
		resp.StatusCode,
		resp.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("response for %s already recorded: %w", resp.RequestID, sentinel.ErrAlreadyUsed)
		}
		if database.IsForeignKeyViolation(err) {
			return fmt.Errorf("request %s not recorded: %w", resp.RequestID, sentinel.ErrNotFound)
		}
		return fmt.Errorf("insert response: %w", err)
	}
	return nil
}

// jsonb renders a body for a jsonb column: NULL when empty, the raw document
// when valid, and a JSON string otherwise.
func jsonb(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		return string(body)
	}
	quoted, err := json.Marshal(string(body))
	if err != nil {
		return nil
	}
	return string(quoted)
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
