package store

import (
	"context"
	"sync"

	"vertical/internal/reliability/models"
)

// InMemory answers the same aggregates over an in-memory slice of submissions.
type InMemory struct {
	mu          sync.RWMutex
	submissions []models.Submission
}

func NewInMemory(subs ...models.Submission) *InMemory {
	return &InMemory{submissions: append([]models.Submission(nil), subs...)}
}

// Add appends submissions.
func (s *InMemory) Add(subs ...models.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions = append(s.submissions, subs...)
}

func (s *InMemory) FetchPeriod(_ context.Context, phoneHash string) (*models.Period, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var period *models.Period
	for _, sub := range s.submissions {
		if sub.PhoneHash != phoneHash {
			continue
		}
		if period == nil {
			period = &models.Period{RegisteredAt: sub.Date, UpdatedAt: sub.Date}
			continue
		}
		if sub.Date.Before(period.RegisteredAt) {
			period.RegisteredAt = sub.Date
		}
		if sub.Date.After(period.UpdatedAt) {
			period.UpdatedAt = sub.Date
		}
	}
	return period, nil
}

func (s *InMemory) HasLongLivedGroup(_ context.Context, phoneHash string, days int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make(map[string]*models.Period)
	for _, sub := range s.submissions {
		if sub.PhoneHash != phoneHash {
			continue
		}
		key := sub.PersonKey()
		g, ok := groups[key]
		if !ok {
			groups[key] = &models.Period{RegisteredAt: sub.Date, UpdatedAt: sub.Date}
			continue
		}
		if sub.Date.Before(g.RegisteredAt) {
			g.RegisteredAt = sub.Date
		}
		if sub.Date.After(g.UpdatedAt) {
			g.UpdatedAt = sub.Date
		}
	}
	for _, g := range groups {
		if g.Days() > days {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemory) Ping(context.Context) error { return nil }
