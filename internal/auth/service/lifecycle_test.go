package service

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/mock/gomock"

	"vertical/internal/auth/models"
	dErrors "vertical/pkg/domain-errors"
	"vertical/pkg/platform/sentinel"
)

func (s *ServiceSuite) TestProvision() {
	s.Run("creates client and contract", func() {
		var gotClient *models.Client
		var gotContract *models.Contract
		s.mockContracts.EXPECT().CreateWithClient(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, client *models.Client, contract *models.Contract) error {
				gotClient, gotContract = client, contract
				return nil
			})

		client, contract, err := s.service.Provision(s.ctx, "  partner  ")
		s.Require().NoError(err)
		s.Equal("partner", client.Name)
		s.Equal(client.ID, contract.ClientID)
		s.Equal("generated-token", contract.Token)
		s.Equal(s.now, contract.CreatedAt)
		s.Nil(contract.ExpiredAt)
		s.Nil(contract.RevokedAt)
		s.Equal(gotClient, client)
		s.Equal(gotContract, contract)
	})

	s.Run("blank name", func() {
		_, _, err := s.service.Provision(s.ctx, "   ")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("name too long", func() {
		_, _, err := s.service.Provision(s.ctx, fmt.Sprintf("%065d", 0))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("duplicate name", func() {
		s.mockContracts.EXPECT().CreateWithClient(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(fmt.Errorf("client name already taken: %w", sentinel.ErrAlreadyUsed))

		_, _, err := s.service.Provision(s.ctx, "partner")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *ServiceSuite) TestProvisionTokenFailure() {
	svc := New(s.mockContracts, s.mockIdentifications,
		WithTokenGenerator(func() (string, error) { return "", errors.New("entropy exhausted") }))

	_, _, err := svc.Provision(s.ctx, "partner")
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestRevoke() {
	at := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	s.Run("sets revocation", func() {
		contract := s.newContract("tok")
		contract.RevokedAt = timeRef(at)
		s.mockContracts.EXPECT().Revoke(gomock.Any(), "tok", at).Return(contract, nil)

		got, err := s.service.Revoke(s.ctx, "tok", at)
		s.Require().NoError(err)
		s.Equal(at, *got.RevokedAt)
	})

	s.Run("already revoked", func() {
		s.mockContracts.EXPECT().Revoke(gomock.Any(), "tok", at).
			Return(nil, fmt.Errorf("revoke contract: %w", sentinel.ErrAlreadyUsed))

		_, err := s.service.Revoke(s.ctx, "tok", at)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal("contract already revoked", err.Error())
	})

	s.Run("unknown token", func() {
		s.mockContracts.EXPECT().Revoke(gomock.Any(), "nope", at).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.Revoke(s.ctx, "nope", at)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestExpire() {
	at := time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)

	s.Run("sets expiry", func() {
		contract := s.newContract("tok")
		contract.ExpiredAt = timeRef(at)
		s.mockContracts.EXPECT().Expire(gomock.Any(), "tok", at).Return(contract, nil)

		got, err := s.service.Expire(s.ctx, "tok", at)
		s.Require().NoError(err)
		s.Equal(at, *got.ExpiredAt)
	})

	s.Run("store failure", func() {
		s.mockContracts.EXPECT().Expire(gomock.Any(), "tok", at).Return(nil, errors.New("db down"))

		_, err := s.service.Expire(s.ctx, "tok", at)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestPing() {
	s.mockContracts.EXPECT().Ping(gomock.Any()).Return(nil)
	s.NoError(s.service.Ping(s.ctx))

	s.mockContracts.EXPECT().Ping(gomock.Any()).Return(errors.New("db down"))
	s.True(dErrors.HasCode(s.service.Ping(s.ctx), dErrors.CodeUnavailable))
}
