// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "vertical/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing ClientID where ContractID is expected.
type (
	ClientID         uuid.UUID
	ContractID       uuid.UUID
	RequestID        uuid.UUID
	IdentificationID uuid.UUID
)

// NewRequestID generates a server-side correlation id.
func NewRequestID() RequestID {
	return RequestID(uuid.New())
}

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseClientID(s string) (ClientID, error) {
	id, err := parseUUID(s, "client ID")
	return ClientID(id), err
}

func ParseContractID(s string) (ContractID, error) {
	id, err := parseUUID(s, "contract ID")
	return ContractID(id), err
}

// ParseRequestID accepts only the canonical lowercase hyphenated form, so the
// header value a caller sent is byte-identical to the id echoed back and audited.
func ParseRequestID(s string) (RequestID, error) {
	id, err := parseUUID(s, "request ID")
	if err != nil {
		return RequestID{}, err
	}
	if id.String() != s {
		return RequestID{}, dErrors.New(dErrors.CodeBadRequest, "request ID must be a canonical UUID")
	}
	return RequestID(id), nil
}

// String methods - for logging and debugging.

func (id ClientID) String() string         { return uuid.UUID(id).String() }
func (id ContractID) String() string       { return uuid.UUID(id).String() }
func (id RequestID) String() string        { return uuid.UUID(id).String() }
func (id IdentificationID) String() string { return uuid.UUID(id).String() }

// IsNil checks - used for service-layer validation.

func (id ClientID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id ContractID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id RequestID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id IdentificationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "invalid "+label+" format")
	}
	return id, nil
}
