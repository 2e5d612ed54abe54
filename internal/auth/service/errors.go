package service

import (
	"fmt"
	"time"

	dErrors "vertical/pkg/domain-errors"
)

// TimestampLayout renders contract expiry and revocation instants.
const TimestampLayout = "2006.01.02 15:04:05"

// AuthErrorKind names one terminal authorization failure.
type AuthErrorKind string

const (
	AuthHeaderNotRecognized AuthErrorKind = "auth_header_not_recognized"
	InvalidAuthScheme       AuthErrorKind = "invalid_auth_scheme"
	BearerExpected          AuthErrorKind = "bearer_expected"
	InvalidAccessToken      AuthErrorKind = "invalid_access_token"
	ContractExpired         AuthErrorKind = "contract_expired"
	ContractRevoked         AuthErrorKind = "contract_revoked"
)

// AuthError is the tagged result of a failed authorization. At carries the
// contract instant for ContractExpired and ContractRevoked.
type AuthError struct {
	Kind AuthErrorKind
	At   time.Time
}

func (e *AuthError) Error() string {
	switch e.Kind {
	case AuthHeaderNotRecognized:
		return "Authorization header not recognized"
	case InvalidAuthScheme:
		return "Invalid authorization scheme"
	case BearerExpected:
		return "Expected Bearer token type"
	case InvalidAccessToken:
		return "Invalid access token"
	case ContractExpired:
		return fmt.Sprintf("Your contract was expired on %s", e.At.UTC().Format(TimestampLayout))
	case ContractRevoked:
		return fmt.Sprintf("Your contract was revoked on %s", e.At.UTC().Format(TimestampLayout))
	default:
		return "Unauthorized"
	}
}

// unauthorized wraps an AuthError into the unauthorized domain error exactly once.
func unauthorized(kind AuthErrorKind, at time.Time) error {
	ae := &AuthError{Kind: kind, At: at}
	return &dErrors.Error{Code: dErrors.CodeUnauthorized, Message: ae.Error(), Err: ae}
}
