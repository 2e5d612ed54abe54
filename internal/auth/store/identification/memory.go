package identification

import (
	"context"
	"fmt"
	"sync"

	"vertical/internal/auth/models"
	id "vertical/pkg/domain"
	"vertical/pkg/platform/sentinel"
)

type pairKey struct {
	request  id.RequestID
	contract id.ContractID
}

// InMemory stores identifications in memory for tests.
type InMemory struct {
	mu    sync.RWMutex
	items []models.Identification
	pairs map[pairKey]struct{}
}

// NewInMemory creates an empty in-memory identification store.
func NewInMemory() *InMemory {
	return &InMemory{pairs: make(map[pairKey]struct{})}
}

// Create appends an identification; a repeated (request, contract) pair is rejected.
func (s *InMemory) Create(_ context.Context, ident *models.Identification) error {
	if ident == nil {
		return fmt.Errorf("identification is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{request: ident.RequestID, contract: ident.ContractID}
	if _, ok := s.pairs[key]; ok {
		return fmt.Errorf("request already identified: %w", sentinel.ErrAlreadyUsed)
	}
	s.pairs[key] = struct{}{}
	s.items = append(s.items, *ident)
	return nil
}

// ListByRequest returns identifications recorded for a request.
func (s *InMemory) ListByRequest(requestID id.RequestID) []models.Identification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Identification
	for _, item := range s.items {
		if item.RequestID == requestID {
			out = append(out, item)
		}
	}
	return out
}

// Count returns the number of stored identifications.
func (s *InMemory) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
