package contract

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vertical/internal/auth/models"
	"vertical/internal/platform/database"
	id "vertical/pkg/domain"
	"vertical/pkg/platform/sentinel"
)

// PostgresStore persists clients and their contracts in PostgreSQL.
type PostgresStore struct {
	db      *sql.DB
	timeout time.Duration
}

// NewPostgres constructs a PostgreSQL-backed contract store. Each call is
// bounded by timeout; zero leaves it to the caller's context.
func NewPostgres(db *sql.DB, timeout time.Duration) *PostgresStore {
	return &PostgresStore{db: db, timeout: timeout}
}

const contractColumns = `contract_id, client_id, token, created_at, expired_at, revoked_at`

// CreateWithClient inserts a new client and its first contract in one transaction.
func (s *PostgresStore) CreateWithClient(ctx context.Context, client *models.Client, contract *models.Contract) (err error) {
	if client == nil || contract == nil {
		return fmt.Errorf("client and contract are required")
	}
	ctx, cancel := database.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin provisioning: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback() //nolint:errcheck // original error wins
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO clients (client_id, name, created_at) VALUES ($1, $2, $3)`,
		uuid.UUID(client.ID), client.Name, client.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("client name already taken: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create client: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO contracts (`+contractColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.UUID(contract.ID), uuid.UUID(contract.ClientID), contract.Token,
		contract.CreatedAt, contract.ExpiredAt, contract.RevokedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("contract token collision: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create contract: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit provisioning: %w", err)
	}
	return nil
}

// FindByToken retrieves the contract issued with token.
func (s *PostgresStore) FindByToken(ctx context.Context, token string) (*models.Contract, error) {
	ctx, cancel := database.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := `SELECT ` + contractColumns + ` FROM contracts WHERE token = $1 LIMIT 1`
	contract, err := scanContract(s.db.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find contract by token: %w", err)
	}
	return contract, nil
}

// Revoke sets revoked_at once. A contract that is already revoked yields sentinel.ErrAlreadyUsed.
func (s *PostgresStore) Revoke(ctx context.Context, token string, at time.Time) (*models.Contract, error) {
	return s.setOnce(ctx, `
		UPDATE contracts SET revoked_at = $2
		WHERE token = $1 AND revoked_at IS NULL
		RETURNING `+contractColumns, token, at, "revoke")
}

// Expire sets expired_at once. A contract that already has an expiry yields sentinel.ErrAlreadyUsed.
func (s *PostgresStore) Expire(ctx context.Context, token string, at time.Time) (*models.Contract, error) {
	return s.setOnce(ctx, `
		UPDATE contracts SET expired_at = $2
		WHERE token = $1 AND expired_at IS NULL
		RETURNING `+contractColumns, token, at, "expire")
}

func (s *PostgresStore) setOnce(ctx context.Context, query, token string, at time.Time, op string) (*models.Contract, error) {
	tctx, cancel := database.WithTimeout(ctx, s.timeout)
	defer cancel()

	contract, err := scanContract(s.db.QueryRowContext(tctx, query, token, at))
	if err == nil {
		return contract, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s contract: %w", op, err)
	}
	if _, err := s.FindByToken(ctx, token); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%s contract: timestamp already set: %w", op, sentinel.ErrAlreadyUsed)
}

// Ping round-trips a trivial query through the pool.
func (s *PostgresStore) Ping(ctx context.Context) error {
	ctx, cancel := database.WithTimeout(ctx, s.timeout)
	defer cancel()

	var ok bool
	if err := s.db.QueryRowContext(ctx, `SELECT TRUE`).Scan(&ok); err != nil {
		return fmt.Errorf("ping credential store: %w", err)
	}
	return nil
}

type contractRow interface {
	Scan(dest ...any) error
}

func scanContract(row contractRow) (*models.Contract, error) {
	var (
		contractID, clientID uuid.UUID
		expiredAt, revokedAt sql.NullTime
		contract             models.Contract
	)
	if err := row.Scan(&contractID, &clientID, &contract.Token, &contract.CreatedAt, &expiredAt, &revokedAt); err != nil {
		return nil, err
	}
	contract.ID = id.ContractID(contractID)
	contract.ClientID = id.ClientID(clientID)
	contract.ExpiredAt = timePtr(expiredAt)
	contract.RevokedAt = timePtr(revokedAt)
	return &contract, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
