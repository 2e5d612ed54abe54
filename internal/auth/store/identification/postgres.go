package identification

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vertical/internal/auth/models"
	"vertical/internal/platform/database"
	"vertical/pkg/platform/sentinel"
)

// PostgresStore persists request-to-contract links in PostgreSQL.
type PostgresStore struct {
	db      *sql.DB
	timeout time.Duration
}

// NewPostgres constructs a PostgreSQL-backed identification store.
func NewPostgres(db *sql.DB, timeout time.Duration) *PostgresStore {
	return &PostgresStore{db: db, timeout: timeout}
}

// Create links a recorded request to a contract. The pair is unique and both
// sides must already exist.
func (s *PostgresStore) Create(ctx context.Context, ident *models.Identification) error {
	if ident == nil {
		return fmt.Errorf("identification is required")
	}
	ctx, cancel := database.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := `
		INSERT INTO identifications (identification_id, request_id, contract_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(ident.ID),
		uuid.UUID(ident.RequestID),
		uuid.UUID(ident.ContractID),
		ident.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("request already identified: %w", sentinel.ErrAlreadyUsed)
		}
		if database.IsForeignKeyViolation(err) {
			return fmt.Errorf("request or contract not recorded: %w", sentinel.ErrNotFound)
		}
		return fmt.Errorf("create identification: %w", err)
	}
	return nil
}
