//go:build integration

package contract_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"vertical/internal/auth/models"
	"vertical/internal/auth/store/contract"
	"vertical/internal/auth/store/identification"
	id "vertical/pkg/domain"
	"vertical/pkg/platform/sentinel"
	"vertical/pkg/testutil"
	"vertical/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *contract.PostgresStore
	idents   *identification.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = contract.NewPostgres(s.postgres.DB, 5*time.Second)
	s.idents = identification.NewPostgres(s.postgres.DB, 5*time.Second)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(context.Background()))
}

func (s *PostgresStoreSuite) provision(token string) *models.Contract {
	c := testutil.NewContractBuilder().WithToken(token).Build()
	client := &models.Client{ID: c.ClientID, Name: "client-" + token, CreatedAt: c.CreatedAt}
	s.Require().NoError(s.store.CreateWithClient(context.Background(), client, c))
	return c
}

func (s *PostgresStoreSuite) TestProvisionAndFind() {
	ctx := context.Background()
	created := s.provision("tok-find")

	found, err := s.store.FindByToken(ctx, "tok-find")
	s.Require().NoError(err)
	s.Equal(created.ID, found.ID)
	s.Equal(created.ClientID, found.ClientID)
	s.Nil(found.ExpiredAt)
	s.Nil(found.RevokedAt)

	_, err = s.store.FindByToken(ctx, "tok-missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDuplicateTokenRollsBackClient() {
	ctx := context.Background()
	s.provision("tok-dup")

	dup := testutil.NewContractBuilder().WithToken("tok-dup").Build()
	err := s.store.CreateWithClient(ctx, &models.Client{ID: dup.ClientID, Name: "other"}, dup)
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)

	var clients int
	s.Require().NoError(s.postgres.QueryRow(ctx, `SELECT COUNT(*) FROM clients`).Scan(&clients))
	s.Equal(1, clients)
}

func (s *PostgresStoreSuite) TestRevokeIsSetOnce() {
	ctx := context.Background()
	s.provision("tok-revoke")
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	revoked, err := s.store.Revoke(ctx, "tok-revoke", at)
	s.Require().NoError(err)
	s.Require().NotNil(revoked.RevokedAt)
	s.True(revoked.RevokedAt.Equal(at))

	_, err = s.store.Revoke(ctx, "tok-revoke", at.Add(time.Hour))
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)

	_, err = s.store.Expire(ctx, "tok-missing", at)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestConcurrentExpireSetsOnce() {
	ctx := context.Background()
	s.provision("tok-race")
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	result := testutil.RunConcurrentCtx(ctx, 20, func(ctx context.Context, idx int) error {
		_, err := s.store.Expire(ctx, "tok-race", base.Add(time.Duration(idx)*time.Minute))
		return err
	})

	s.Equal(int32(1), result.Successes)
	s.Equal(int32(19), result.Conflicts)
	s.Zero(result.Errors)
}

func (s *PostgresStoreSuite) TestIdentificationRequiresRecordedRequest() {
	ctx := context.Background()
	c := s.provision("tok-ident")

	ident := &models.Identification{
		ID:         id.IdentificationID(uuid.New()),
		RequestID:  id.NewRequestID(),
		ContractID: c.ID,
		CreatedAt:  time.Now().UTC(),
	}
	s.ErrorIs(s.idents.Create(ctx, ident), sentinel.ErrNotFound)

	_, err := s.postgres.Exec(ctx,
		`INSERT INTO requests (request_id, method, path) VALUES ($1, 'POST', '/health')`,
		uuid.UUID(ident.RequestID))
	s.Require().NoError(err)

	s.Require().NoError(s.idents.Create(ctx, ident))
	ident.ID = id.IdentificationID(uuid.New())
	s.ErrorIs(s.idents.Create(ctx, ident), sentinel.ErrAlreadyUsed)
}

func (s *PostgresStoreSuite) TestPing() {
	s.NoError(s.store.Ping(context.Background()))
}

func (s *PostgresStoreSuite) TestFindSeededRevokedContract() {
	ctx := context.Background()
	revokedAt := time.Date(2021, 2, 3, 4, 5, 6, 0, time.UTC)
	contractID := s.postgres.CreateTestContract(ctx, s.T(), "tok-seeded", nil, &revokedAt)

	found, err := s.store.FindByToken(ctx, "tok-seeded")
	s.Require().NoError(err)
	s.Equal(contractID, found.ID)
	s.Require().NotNil(found.RevokedAt)
	s.True(found.IsRevoked(revokedAt))
	s.False(found.IsRevoked(revokedAt.Add(-time.Second)))
}
