package service

import (
	"errors"
	"time"

	"go.uber.org/mock/gomock"

	"vertical/internal/auth/models"
	id "vertical/pkg/domain"
	dErrors "vertical/pkg/domain-errors"
	"vertical/pkg/platform/sentinel"
	"vertical/pkg/requestcontext"
)

func (s *ServiceSuite) assertAuthError(err error, kind AuthErrorKind, message string) {
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	var ae *AuthError
	s.Require().True(errors.As(err, &ae))
	s.Equal(kind, ae.Kind)
	s.Equal(message, err.Error())
}

func (s *ServiceSuite) TestAuthorizeHeaderShape() {
	tests := []struct {
		name    string
		header  string
		kind    AuthErrorKind
		message string
	}{
		{"missing header", "", AuthHeaderNotRecognized, "Authorization header not recognized"},
		{"single word", "Bearer", InvalidAuthScheme, "Invalid authorization scheme"},
		{"three words", "Bearer abc def", InvalidAuthScheme, "Invalid authorization scheme"},
		{"whitespace only", "   ", InvalidAuthScheme, "Invalid authorization scheme"},
		{"basic scheme", "Basic dXNlcjpwYXNz", BearerExpected, "Expected Bearer token type"},
		{"lowercase bearer", "bearer abc", BearerExpected, "Expected Bearer token type"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.Authorize(s.ctx, tt.header)
			s.assertAuthError(err, tt.kind, tt.message)
		})
	}
}

func (s *ServiceSuite) TestAuthorizeUnknownToken() {
	s.mockContracts.EXPECT().FindByToken(gomock.Any(), "missing").Return(nil, sentinel.ErrNotFound)

	_, err := s.service.Authorize(s.ctx, "Bearer missing")
	s.assertAuthError(err, InvalidAccessToken, "Invalid access token")
}

func (s *ServiceSuite) TestAuthorizeStoreFailureIsInternal() {
	s.mockContracts.EXPECT().FindByToken(gomock.Any(), "tok").Return(nil, errors.New("db down"))

	_, err := s.service.Authorize(s.ctx, "Bearer tok")
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	var ae *AuthError
	s.False(errors.As(err, &ae))
}

func (s *ServiceSuite) TestAuthorizeExpiredContract() {
	contract := s.newContract("tok")
	contract.ExpiredAt = timeRef(s.now.Add(-24 * time.Hour))
	s.mockContracts.EXPECT().FindByToken(gomock.Any(), "tok").Return(contract, nil)

	_, err := s.service.Authorize(s.ctx, "Bearer tok")
	s.assertAuthError(err, ContractExpired, "Your contract was expired on 2024.03.14 09:30:00")
}

func (s *ServiceSuite) TestAuthorizeExpiryAtExactlyNow() {
	contract := s.newContract("tok")
	contract.ExpiredAt = timeRef(s.now)
	s.mockContracts.EXPECT().FindByToken(gomock.Any(), "tok").Return(contract, nil)

	_, err := s.service.Authorize(s.ctx, "Bearer tok")
	s.assertAuthError(err, ContractExpired, "Your contract was expired on 2024.03.15 09:30:00")
}

func (s *ServiceSuite) TestAuthorizeRevokedContract() {
	contract := s.newContract("tok")
	contract.RevokedAt = timeRef(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	s.mockContracts.EXPECT().FindByToken(gomock.Any(), "tok").Return(contract, nil)

	_, err := s.service.Authorize(s.ctx, "Bearer tok")
	s.assertAuthError(err, ContractRevoked, "Your contract was revoked on 2024.01.02 03:04:05")
}

func (s *ServiceSuite) TestAuthorizeExpiryTakesPrecedenceOverRevocation() {
	contract := s.newContract("tok")
	contract.ExpiredAt = timeRef(s.now.Add(-time.Hour))
	contract.RevokedAt = timeRef(s.now.Add(-2 * time.Hour))
	s.mockContracts.EXPECT().FindByToken(gomock.Any(), "tok").Return(contract, nil)

	_, err := s.service.Authorize(s.ctx, "Bearer tok")
	var ae *AuthError
	s.Require().True(errors.As(err, &ae))
	s.Equal(ContractExpired, ae.Kind)
}

func (s *ServiceSuite) TestAuthorizeFutureTimestampsAreStillValid() {
	contract := s.newContract("tok")
	contract.ExpiredAt = timeRef(s.now.Add(time.Second))
	contract.RevokedAt = timeRef(s.now.Add(time.Hour))
	s.mockContracts.EXPECT().FindByToken(gomock.Any(), "tok").Return(contract, nil)
	s.mockIdentifications.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	ident, err := s.service.Authorize(s.ctx, "Bearer tok")
	s.Require().NoError(err)
	s.Equal(contract.ID, ident.ContractID)
}

func (s *ServiceSuite) TestAuthorizeRecordsIdentification() {
	contract := s.newContract("tok")
	s.mockContracts.EXPECT().FindByToken(gomock.Any(), "tok").Return(contract, nil)

	var stored *models.Identification
	s.mockIdentifications.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, ident *models.Identification) error {
			stored = ident
			return nil
		})

	ident, err := s.service.Authorize(s.ctx, "Bearer   tok ")
	s.Require().NoError(err)
	s.Require().NotNil(stored)
	s.Equal(stored, ident)
	s.Equal(s.requestID, ident.RequestID)
	s.Equal(contract.ID, ident.ContractID)
	s.Equal(s.now, ident.CreatedAt)
	s.False(ident.ID.IsNil())
}

func (s *ServiceSuite) TestAuthorizeRequiresRequestID() {
	contract := s.newContract("tok")
	s.mockContracts.EXPECT().FindByToken(gomock.Any(), "tok").Return(contract, nil)

	ctx := requestcontext.WithRequestID(s.ctx, id.RequestID{})
	_, err := s.service.Authorize(ctx, "Bearer tok")
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestAuthorizeIdentificationFailureIsInternal() {
	s.mockContracts.EXPECT().FindByToken(gomock.Any(), "tok").Return(s.newContract("tok"), nil)
	s.mockIdentifications.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sentinel.ErrNotFound)

	_, err := s.service.Authorize(s.ctx, "Bearer tok")
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
