package models

import (
	"time"

	id "vertical/pkg/domain"
)

// Client is a partner organisation that holds contracts.
type Client struct {
	ID        id.ClientID
	Name      string
	CreatedAt time.Time
}

// Contract binds a bearer token to a client for a bounded period.
// ExpiredAt and RevokedAt are nil until an administrator sets them, and are
// never unset afterwards.
type Contract struct {
	ID        id.ContractID
	ClientID  id.ClientID
	Token     string
	CreatedAt time.Time
	ExpiredAt *time.Time
	RevokedAt *time.Time
}

// IsExpired reports whether the expiry instant is set and not after now.
func (c *Contract) IsExpired(now time.Time) bool {
	return reached(c.ExpiredAt, now)
}

// IsRevoked reports whether the revocation instant is set and not after now.
func (c *Contract) IsRevoked(now time.Time) bool {
	return reached(c.RevokedAt, now)
}

func reached(at *time.Time, now time.Time) bool {
	return at != nil && !at.After(now)
}

// Identification links an authorized request to the contract that authorized it.
type Identification struct {
	ID         id.IdentificationID
	RequestID  id.RequestID
	ContractID id.ContractID
	CreatedAt  time.Time
}
