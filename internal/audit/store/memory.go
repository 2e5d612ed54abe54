package store

import (
	"context"
	"fmt"
	"sync"

	"vertical/internal/audit/models"
	id "vertical/pkg/domain"
	"vertical/pkg/platform/sentinel"
)

// InMemory keeps audit records in memory for tests and local runs.
type InMemory struct {
	mu        sync.RWMutex
	requests  map[id.RequestID]models.Request
	responses map[id.RequestID]models.Response
	order     []id.RequestID
}

func NewInMemory() *InMemory {
	return &InMemory{
		requests:  make(map[id.RequestID]models.Request),
		responses: make(map[id.RequestID]models.Response),
	}
}

func (s *InMemory) SaveRequest(_ context.Context, req *models.Request) error {
	if req == nil {
		return fmt.Errorf("request record is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[req.ID]; ok {
		return fmt.Errorf("request %s already recorded: %w", req.ID, sentinel.ErrAlreadyUsed)
	}
	stored := *req
	stored.RemoteAddr = models.TruncateRemoteAddr(stored.RemoteAddr)
	s.requests[req.ID] = stored
	s.order = append(s.order, req.ID)
	return nil
}

func (s *InMemory) SaveResponse(_ context.Context, resp *models.Response) error {
	if resp == nil {
		return fmt.Errorf("response record is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[resp.RequestID]; !ok {
		return fmt.Errorf("request %s not recorded: %w", resp.RequestID, sentinel.ErrNotFound)
	}
	if _, ok := s.responses[resp.RequestID]; ok {
		return fmt.Errorf("response for %s already recorded: %w", resp.RequestID, sentinel.ErrAlreadyUsed)
	}
	s.responses[resp.RequestID] = *resp
	return nil
}

// Request returns the recorded request for requestID.
func (s *InMemory) Request(requestID id.RequestID) (models.Request, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[requestID]
	return r, ok
}

// Response returns the recorded response for requestID.
func (s *InMemory) Response(requestID id.RequestID) (models.Response, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.responses[requestID]
	return r, ok
}

// Requests lists recorded requests in insertion order.
func (s *InMemory) Requests() []models.Request {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Request, 0, len(s.order))
	for _, rid := range s.order {
		out = append(out, s.requests[rid])
	}
	return out
}

// ResponseCount returns how many responses have been recorded.
func (s *InMemory) ResponseCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.responses)
}
