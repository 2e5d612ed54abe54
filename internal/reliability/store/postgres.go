package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"vertical/internal/platform/database"
	"vertical/internal/reliability/models"
)

// PostgresStore reads aggregates from the submissions table. The table is
// owned by another system and only ever queried.
type PostgresStore struct {
	db      *sql.DB
	table   string
	timeout time.Duration
}

// NewPostgres builds a store over schema.table. Both names are quoted, so they
// cannot inject SQL.
func NewPostgres(db *sql.DB, schema, table string, timeout time.Duration) *PostgresStore {
	ident := pgx.Identifier{table}
	if schema != "" {
		ident = pgx.Identifier{schema, table}
	}
	return &PostgresStore{db: db, table: ident.Sanitize(), timeout: timeout}
}

// FetchPeriod returns the earliest and latest submission dates for phoneHash,
// or nil when there are none.
func (s *PostgresStore) FetchPeriod(ctx context.Context, phoneHash string) (*models.Period, error) {
	ctx, cancel := database.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT MIN(creation_datetime), MAX(creation_datetime)
		FROM %s
		WHERE tel = $1
	`, s.table)

	var first, last sql.NullTime
	if err := s.db.QueryRowContext(ctx, query, phoneHash).Scan(&first, &last); err != nil {
		return nil, fmt.Errorf("fetch period: %w", err)
	}
	if !first.Valid || !last.Valid {
		return nil, nil
	}
	return &models.Period{RegisteredAt: first.Time, UpdatedAt: last.Time}, nil
}

// HasLongLivedGroup reports whether any person-key group for phoneHash spans
// strictly more than days.
func (s *PostgresStore) HasLongLivedGroup(ctx context.Context, phoneHash string, days int) (bool, error) {
	ctx, cancel := database.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1
			FROM %s
			WHERE tel = $1
			GROUP BY phk1 || dob
			HAVING MAX(creation_datetime) - MIN(creation_datetime) > $2
		)
	`, s.table)

	var found bool
	if err := s.db.QueryRowContext(ctx, query, phoneHash, days).Scan(&found); err != nil {
		return false, fmt.Errorf("check long-lived group: %w", err)
	}
	return found, nil
}

// Ping checks that the submissions table is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	ctx, cancel := database.WithTimeout(ctx, s.timeout)
	defer cancel()

	var one int
	query := fmt.Sprintf(`SELECT 1 FROM %s LIMIT 1`, s.table)
	err := s.db.QueryRowContext(ctx, query).Scan(&one)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("ping submissions: %w", err)
	}
	return nil
}
