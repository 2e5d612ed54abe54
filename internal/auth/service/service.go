package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks ContractStore,IdentificationStore

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	authmetrics "vertical/internal/auth/metrics"
	"vertical/internal/auth/models"
	id "vertical/pkg/domain"
	dErrors "vertical/pkg/domain-errors"
	"vertical/pkg/platform/middleware/requesttime"
	"vertical/pkg/platform/sentinel"
	"vertical/pkg/requestcontext"
	"vertical/pkg/secrets"
	"vertical/pkg/validation"
)

// BearerScheme is the only accepted authorization scheme.
const BearerScheme = "Bearer"

// MaxClientNameLength matches the clients.name column.
const MaxClientNameLength = 64

type ContractStore interface {
	CreateWithClient(ctx context.Context, client *models.Client, contract *models.Contract) error
	FindByToken(ctx context.Context, token string) (*models.Contract, error)
	Revoke(ctx context.Context, token string, at time.Time) (*models.Contract, error)
	Expire(ctx context.Context, token string, at time.Time) (*models.Contract, error)
	Ping(ctx context.Context) error
}

type IdentificationStore interface {
	Create(ctx context.Context, ident *models.Identification) error
}

// Service authorizes bearer tokens against contracts and manages contract lifecycle.
type Service struct {
	contracts       ContractStore
	identifications IdentificationStore
	logger          *slog.Logger
	metrics         *authmetrics.Metrics
	newToken        func() (string, error)
}

func New(contracts ContractStore, identifications IdentificationStore, opts ...Option) *Service {
	s := &Service{
		contracts:       contracts,
		identifications: identifications,
		logger:          slog.Default(),
		newToken:        secrets.Generate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Authorize resolves the Authorization header value to a contract, checks the
// contract is neither expired nor revoked at request time, and links the current
// request to it. Every rejection is an unauthorized domain error wrapping *AuthError.
func (s *Service) Authorize(ctx context.Context, authorization string) (*models.Identification, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveAuthorizeDuration(float64(time.Since(start).Milliseconds()))
		}
	}()

	if authorization == "" {
		return nil, s.reject(ctx, AuthHeaderNotRecognized, time.Time{}, "")
	}
	parts := strings.Fields(authorization)
	if len(parts) != 2 {
		return nil, s.reject(ctx, InvalidAuthScheme, time.Time{}, "")
	}
	scheme, token := parts[0], parts[1]
	if scheme != BearerScheme {
		return nil, s.reject(ctx, BearerExpected, time.Time{}, "")
	}

	contract, err := s.contracts.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, s.reject(ctx, InvalidAccessToken, time.Time{}, secrets.Fingerprint(token))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up contract")
	}

	now := requesttime.Now(ctx)
	if contract.IsExpired(now) {
		return nil, s.reject(ctx, ContractExpired, *contract.ExpiredAt, contract.ID.String())
	}
	if contract.IsRevoked(now) {
		return nil, s.reject(ctx, ContractRevoked, *contract.RevokedAt, contract.ID.String())
	}

	requestID := requestcontext.RequestID(ctx)
	if requestID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInternal, "request id missing from context")
	}

	ident := &models.Identification{
		ID:         id.IdentificationID(uuid.New()),
		RequestID:  requestID,
		ContractID: contract.ID,
		CreatedAt:  now,
	}
	if err := s.identifications.Create(ctx, ident); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record identification")
	}

	if s.metrics != nil {
		s.metrics.IncrementIdentifications()
	}
	s.logger.DebugContext(ctx, "contract identified",
		"contract_id", contract.ID.String(),
		"client_id", contract.ClientID.String(),
		"request_id", requestID.String(),
	)
	return ident, nil
}

func (s *Service) reject(ctx context.Context, kind AuthErrorKind, at time.Time, subject string) error {
	if s.metrics != nil {
		s.metrics.IncrementAuthFailure(string(kind))
	}
	attrs := []any{"reason", string(kind), "request_id", requestcontext.RequestIDString(ctx)}
	if subject != "" {
		attrs = append(attrs, "subject", subject)
	}
	s.logger.InfoContext(ctx, "authorization rejected", attrs...)
	return unauthorized(kind, at)
}

// Ping checks the credential store round trip.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.contracts.Ping(ctx); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "credential store unavailable")
	}
	return nil
}

// Provision registers a new client under a unique name and issues its first
// contract with a fresh random token. The token is only ever returned here.
func (s *Service) Provision(ctx context.Context, name string) (*models.Client, *models.Contract, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil, validation.NewFieldError("name", "Field may not be blank.")
	}
	if len(name) > MaxClientNameLength {
		return nil, nil, validation.NewFieldError("name", "Longer than maximum length 64.")
	}

	token, err := s.newToken()
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate token")
	}

	now := requesttime.Now(ctx)
	client := &models.Client{ID: id.ClientID(uuid.New()), Name: name, CreatedAt: now}
	contract := &models.Contract{
		ID:        id.ContractID(uuid.New()),
		ClientID:  client.ID,
		Token:     token,
		CreatedAt: now,
	}
	if err := s.contracts.CreateWithClient(ctx, client, contract); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, nil, dErrors.Wrap(err, dErrors.CodeConflict, "client name already taken")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to provision contract")
	}

	s.logger.InfoContext(ctx, "contract provisioned",
		"client_id", client.ID.String(),
		"contract_id", contract.ID.String(),
		"client_name", client.Name,
	)
	return client, contract, nil
}

// Revoke marks the contract revoked from at onwards. Revocation is permanent:
// a contract that already carries a revocation instant is left untouched.
func (s *Service) Revoke(ctx context.Context, token string, at time.Time) (*models.Contract, error) {
	contract, err := s.contracts.Revoke(ctx, token, at)
	if err != nil {
		return nil, lifecycleError(err, "contract already revoked", "failed to revoke contract")
	}
	s.logger.InfoContext(ctx, "contract revoked",
		"contract_id", contract.ID.String(),
		"revoked_at", at.UTC().Format(TimestampLayout),
	)
	return contract, nil
}

// Expire schedules the contract expiry at the given instant, once.
func (s *Service) Expire(ctx context.Context, token string, at time.Time) (*models.Contract, error) {
	contract, err := s.contracts.Expire(ctx, token, at)
	if err != nil {
		return nil, lifecycleError(err, "contract expiry already set", "failed to expire contract")
	}
	s.logger.InfoContext(ctx, "contract expiry set",
		"contract_id", contract.ID.String(),
		"expired_at", at.UTC().Format(TimestampLayout),
	)
	return contract, nil
}

func lifecycleError(err error, conflictMsg, internalMsg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "contract not found")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.Wrap(err, dErrors.CodeConflict, conflictMsg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, internalMsg)
	}
}
