package contract

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vertical/internal/auth/models"
	id "vertical/pkg/domain"
	"vertical/pkg/platform/sentinel"
)

// InMemory stores clients and contracts in memory for tests and local runs.
// Maintains a token index for O(1) authorization lookups.
type InMemory struct {
	mu        sync.RWMutex
	clients   map[id.ClientID]*models.Client
	names     map[string]id.ClientID
	contracts map[id.ContractID]*models.Contract
	byToken   map[string]id.ContractID
}

// NewInMemory creates an empty in-memory contract store.
func NewInMemory() *InMemory {
	return &InMemory{
		clients:   make(map[id.ClientID]*models.Client),
		names:     make(map[string]id.ClientID),
		contracts: make(map[id.ContractID]*models.Contract),
		byToken:   make(map[string]id.ContractID),
	}
}

// CreateWithClient stores a client and its first contract.
func (s *InMemory) CreateWithClient(_ context.Context, client *models.Client, contract *models.Contract) error {
	if client == nil || contract == nil {
		return fmt.Errorf("client and contract are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.names[client.Name]; taken {
		return fmt.Errorf("client name already taken: %w", sentinel.ErrAlreadyUsed)
	}
	if _, taken := s.byToken[contract.Token]; taken {
		return fmt.Errorf("contract token collision: %w", sentinel.ErrAlreadyUsed)
	}
	c := *client
	k := *contract
	s.clients[c.ID] = &c
	s.names[c.Name] = c.ID
	s.contracts[k.ID] = &k
	s.byToken[k.Token] = k.ID
	return nil
}

// FindByToken returns a copy of the contract issued with token.
func (s *InMemory) FindByToken(_ context.Context, token string) (*models.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contractID, ok := s.byToken[token]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *s.contracts[contractID]
	return &c, nil
}

// Revoke sets revoked_at once.
func (s *InMemory) Revoke(_ context.Context, token string, at time.Time) (*models.Contract, error) {
	return s.setOnce(token, "revoke", func(c *models.Contract) **time.Time { return &c.RevokedAt }, at)
}

// Expire sets expired_at once.
func (s *InMemory) Expire(_ context.Context, token string, at time.Time) (*models.Contract, error) {
	return s.setOnce(token, "expire", func(c *models.Contract) **time.Time { return &c.ExpiredAt }, at)
}

func (s *InMemory) setOnce(token, op string, field func(*models.Contract) **time.Time, at time.Time) (*models.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contractID, ok := s.byToken[token]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	stored := s.contracts[contractID]
	slot := field(stored)
	if *slot != nil {
		return nil, fmt.Errorf("%s contract: timestamp already set: %w", op, sentinel.ErrAlreadyUsed)
	}
	v := at
	*slot = &v
	c := *stored
	return &c, nil
}

// Ping always succeeds.
func (s *InMemory) Ping(context.Context) error {
	return nil
}

// Put stores a contract directly, creating a placeholder client when needed.
// Used by tests to seed expired or revoked contracts.
func (s *InMemory) Put(contract *models.Contract) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[contract.ClientID]; !ok {
		name := "client-" + contract.ClientID.String()
		s.clients[contract.ClientID] = &models.Client{ID: contract.ClientID, Name: name, CreatedAt: contract.CreatedAt}
		s.names[name] = contract.ClientID
	}
	c := *contract
	s.contracts[c.ID] = &c
	s.byToken[c.Token] = c.ID
}
